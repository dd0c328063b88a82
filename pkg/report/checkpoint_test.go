package report

import (
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ckpt.gob")
	want := &Checkpoint{
		Results: []Result{{Path: "a.bin", Severity: SeverityClean}},
		Done:    map[string]bool{"a.bin": true},
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.Results) != 1 || got.Results[0].Path != "a.bin" {
		t.Errorf("Results = %+v, want one result for a.bin", got.Results)
	}
	if !got.Done["a.bin"] {
		t.Error("Done[\"a.bin\"] = false, want true")
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.gob")); err == nil {
		t.Fatal("expected an error loading a nonexistent checkpoint")
	}
}
