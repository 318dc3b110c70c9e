package record

import (
	"reflect"
	"testing"
	"time"

	"github.com/plarhq/plar/tool"
)

func recordSpec() tool.Spec {
	return tool.Spec{
		Name:   "Resizer",
		Mode:   tool.ModeModule,
		Target: "tools.resize:main",
		Script: "/opt/resize.py",
		Parameters: []tool.Parameter{
			{Name: "input", Kind: tool.KindFilePath},
			{Name: "width", Kind: tool.KindInteger, Default: 800},
			{Name: "verbose", Kind: tool.KindBoolean, Default: false},
			{Name: "tags", Kind: tool.KindList},
		},
	}
}

func TestExportExcludesReservedKeyAndFillsMeta(t *testing.T) {
	spec := recordSpec()
	bag, err := tool.NewValueBag(spec, map[string]any{"input": "/tmp/in.png", "verbose": true})
	if err != nil {
		t.Fatalf("NewValueBag() error = %v", err)
	}
	bag.SetOutputDir("/tmp/out")

	now := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	rec := Export(spec, bag, now)

	if _, ok := rec.Values["_output_dir"]; ok {
		t.Fatal("Values contains reserved _output_dir key")
	}
	if len(rec.Values) != 4 {
		t.Fatalf("len(Values) = %d, want 4", len(rec.Values))
	}
	if rec.Meta.Tool != "Resizer" || rec.Meta.RunnerMode != tool.ModeModule {
		t.Fatalf("Meta = %+v, want tool/runner_mode filled", rec.Meta)
	}
	if rec.Meta.Timestamp != "2026-03-01 12:30:00" {
		t.Fatalf("Timestamp = %q, want 2026-03-01 12:30:00", rec.Meta.Timestamp)
	}
	if rec.Meta.App != AppName || rec.Meta.Version != FormatVersion {
		t.Fatalf("Meta app/version = %q/%d", rec.Meta.App, rec.Meta.Version)
	}
}

func TestRoundTripKindAwareEquality(t *testing.T) {
	spec := recordSpec()
	bag, err := tool.NewValueBag(spec, map[string]any{
		"input":   "/tmp/in.png",
		"width":   1024,
		"verbose": true,
		"tags":    "a,b,c",
	})
	if err != nil {
		t.Fatalf("NewValueBag() error = %v", err)
	}

	data, err := Export(spec, bag, time.Now()).Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	fresh, err := tool.NewValueBag(spec, nil)
	if err != nil {
		t.Fatalf("NewValueBag() error = %v", err)
	}
	if err := Apply(decoded, spec, fresh); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	// Booleans compare as booleans and integers as integers, not as
	// their string forms.
	if v, _ := fresh.Get("verbose"); v != true {
		t.Fatalf("verbose = %v (%T), want true (bool)", v, v)
	}
	if v, _ := fresh.Get("width"); v != int64(1024) {
		t.Fatalf("width = %v (%T), want 1024 (int64)", v, v)
	}
	if v, _ := fresh.Get("tags"); !reflect.DeepEqual(v, []string{"a", "b", "c"}) {
		t.Fatalf("tags = %v, want [a b c]", v)
	}
	if v, _ := fresh.Get("input"); v != "/tmp/in.png" {
		t.Fatalf("input = %v, want /tmp/in.png", v)
	}
}

func TestDecodeAcceptsBareValuesObject(t *testing.T) {
	rec, err := Decode([]byte(`{"width": 640, "verbose": "yes"}`))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if rec.Meta.Tool != "" {
		t.Fatalf("Meta.Tool = %q, want empty", rec.Meta.Tool)
	}
	if len(rec.Values) != 2 {
		t.Fatalf("len(Values) = %d, want 2", len(rec.Values))
	}
}

func TestApplyIgnoresUnmatchedKeys(t *testing.T) {
	spec := recordSpec()
	bag, err := tool.NewValueBag(spec, nil)
	if err != nil {
		t.Fatalf("NewValueBag() error = %v", err)
	}

	rec := Record{Values: map[string]any{"width": "640", "legacy_field": "ignored"}}
	if err := Apply(rec, spec, bag); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if v, _ := bag.Get("width"); v != int64(640) {
		t.Fatalf("width = %v, want 640", v)
	}
	if _, ok := bag.Get("legacy_field"); ok {
		t.Fatal("legacy_field applied, want ignored")
	}
}

func TestApplyCoerceFailureLeavesBagUntouched(t *testing.T) {
	spec := recordSpec()
	bag, err := tool.NewValueBag(spec, nil)
	if err != nil {
		t.Fatalf("NewValueBag() error = %v", err)
	}

	rec := Record{Values: map[string]any{"verbose": true, "width": "not a number"}}
	if err := Apply(rec, spec, bag); err == nil {
		t.Fatal("Apply() error = nil, want coerce failure")
	}
	if v, _ := bag.Get("width"); v != int64(800) {
		t.Fatalf("width = %v, want default 800", v)
	}
	if v, _ := bag.Get("verbose"); v != false {
		t.Fatalf("verbose = %v, want default false", v)
	}
}

func TestMismatchSurfacesDifferentTool(t *testing.T) {
	spec := recordSpec()

	rec := Record{Meta: Meta{Tool: "Other Tool"}}
	saved, mismatch := rec.Mismatch(spec)
	if !mismatch || saved != "Other Tool" {
		t.Fatalf("Mismatch() = (%q, %v), want (Other Tool, true)", saved, mismatch)
	}

	rec.Meta.Tool = "Resizer"
	if _, mismatch := rec.Mismatch(spec); mismatch {
		t.Fatal("Mismatch() = true for matching tool")
	}

	rec.Meta.Tool = ""
	if _, mismatch := rec.Mismatch(spec); mismatch {
		t.Fatal("Mismatch() = true for blank recorded tool")
	}
}
