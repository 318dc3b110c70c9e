package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/plarhq/plar/tool"
)

func testStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "tools.json"))
}

func sampleSpec(name string) tool.Spec {
	return tool.Spec{
		Name:   name,
		Mode:   tool.ModeModule,
		Target: "tools.sample:main",
		Parameters: []tool.Parameter{
			{Name: "input", Kind: tool.KindFilePath, Required: true},
		},
	}
}

func TestFileStoreListEmptyWhenMissing(t *testing.T) {
	specs, err := testStore(t).List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(specs) != 0 {
		t.Fatalf("len(List()) = %d, want 0", len(specs))
	}
}

func TestFileStoreUpsertGetDeleteRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	if err := s.Upsert(ctx, sampleSpec("resize")); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}
	if err := s.Upsert(ctx, sampleSpec("archive")); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	specs, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(specs) != 2 || specs[0].Name != "archive" || specs[1].Name != "resize" {
		t.Fatalf("List() = %v, want name-sorted [archive resize]", specs)
	}

	got, ok, err := s.Get(ctx, "resize")
	if err != nil || !ok {
		t.Fatalf("Get() = (%v, %v, %v), want spec", got, ok, err)
	}
	if got.Target != "tools.sample:main" {
		t.Fatalf("Target = %q, want tools.sample:main", got.Target)
	}

	replaced := sampleSpec("resize")
	replaced.Notes = "v2"
	if err := s.Upsert(ctx, replaced); err != nil {
		t.Fatalf("Upsert(replace) error = %v", err)
	}
	got, _, _ = s.Get(ctx, "resize")
	if got.Notes != "v2" {
		t.Fatalf("Notes = %q, want v2 (whole-object replacement)", got.Notes)
	}

	if err := s.Delete(ctx, "resize"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := s.Get(ctx, "resize"); ok {
		t.Fatal("Get() after delete ok = true, want false")
	}
	if err := s.Delete(ctx, "never-existed"); err != nil {
		t.Fatalf("Delete(missing) error = %v, want nil", err)
	}
}

func TestFileStoreAcceptsBareArrayPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tools.json")
	payload := `[
  {"name": "legacy", "invocation_mode": "command", "invocation_target": "echo hi",
   "output_dir_optional": true, "unknown_field": 7}
]`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	specs, err := NewFileStore(path).List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(specs) != 1 || specs[0].Name != "legacy" {
		t.Fatalf("List() = %v, want the legacy tool", specs)
	}
	// Unknown/legacy fields were dropped silently, not rejected.
	if specs[0].Target != "echo hi" {
		t.Fatalf("Target = %q, want echo hi", specs[0].Target)
	}
}

func TestFileStoreRequiresName(t *testing.T) {
	if err := testStore(t).Upsert(context.Background(), tool.Spec{}); err == nil {
		t.Fatal("Upsert() error = nil, want name required error")
	}
}
