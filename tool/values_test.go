package tool

import (
	"reflect"
	"testing"
)

func fixtureSpec() Spec {
	return Spec{
		Name:   "Image Resizer",
		Mode:   ModeModule,
		Target: "tools.resize:main",
		Parameters: []Parameter{
			{Name: "input", Kind: KindFilePath, Required: true},
			{Name: "width", Kind: KindInteger, Default: 800},
			{Name: "quality", Kind: KindFloat, Default: "0.9"},
			{Name: "verbose", Kind: KindBoolean, Default: "yes"},
			{Name: "tags", Kind: KindList, Default: "a,b"},
		},
	}
}

func TestNewValueBagSeedsDefaultsInDeclarationOrder(t *testing.T) {
	bag, err := NewValueBag(fixtureSpec(), nil)
	if err != nil {
		t.Fatalf("NewValueBag() error = %v", err)
	}

	wantNames := []string{"input", "width", "quality", "verbose", "tags"}
	if got := bag.Names(); !reflect.DeepEqual(got, wantNames) {
		t.Fatalf("Names() = %v, want %v", got, wantNames)
	}

	if v, _ := bag.Get("width"); v != int64(800) {
		t.Fatalf("width = %v (%T), want 800 (int64)", v, v)
	}
	if v, _ := bag.Get("quality"); v != float64(0.9) {
		t.Fatalf("quality = %v, want 0.9", v)
	}
	if v, _ := bag.Get("verbose"); v != true {
		t.Fatalf("verbose = %v, want true", v)
	}
	if v, _ := bag.Get("tags"); !reflect.DeepEqual(v, []string{"a", "b"}) {
		t.Fatalf("tags = %v, want [a b]", v)
	}
}

func TestNewValueBagAppliesOverridesWithCoercion(t *testing.T) {
	bag, err := NewValueBag(fixtureSpec(), map[string]any{
		"width":   "1024",
		"verbose": "no",
		"input":   "/tmp/in.png",
	})
	if err != nil {
		t.Fatalf("NewValueBag() error = %v", err)
	}
	if v, _ := bag.Get("width"); v != int64(1024) {
		t.Fatalf("width = %v, want 1024", v)
	}
	if v, _ := bag.Get("verbose"); v != false {
		t.Fatalf("verbose = %v, want false", v)
	}
}

func TestNewValueBagRejectsUndeclaredOverride(t *testing.T) {
	_, err := NewValueBag(fixtureSpec(), map[string]any{"bogus": "x"})
	if err == nil {
		t.Fatal("NewValueBag() error = nil, want error")
	}
}

func TestCheckRequired(t *testing.T) {
	spec := fixtureSpec()
	bag, err := NewValueBag(spec, nil)
	if err != nil {
		t.Fatalf("NewValueBag() error = %v", err)
	}

	err = bag.CheckRequired(spec)
	if err == nil {
		t.Fatal("CheckRequired() error = nil, want missing input")
	}
	if code := ErrorCode(err); code != ErrorCodeMissingRequired {
		t.Fatalf("ErrorCode = %q, want %q", code, ErrorCodeMissingRequired)
	}

	bag.Set("input", "/tmp/in.png")
	if err := bag.CheckRequired(spec); err != nil {
		t.Fatalf("CheckRequired() error = %v, want nil", err)
	}
}

func TestOutputDirIsSeparateFromEntries(t *testing.T) {
	bag, err := NewValueBag(fixtureSpec(), nil)
	if err != nil {
		t.Fatalf("NewValueBag() error = %v", err)
	}
	bag.SetOutputDir("/tmp/out")
	if got := bag.OutputDir(); got != "/tmp/out" {
		t.Fatalf("OutputDir() = %q, want /tmp/out", got)
	}
	if bag.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", bag.Len())
	}
}
