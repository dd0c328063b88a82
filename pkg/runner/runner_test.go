package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/andrz/sim8086/pkg/fields"
	"github.com/andrz/sim8086/pkg/instruction"
	"github.com/andrz/sim8086/pkg/report"
)

func TestRoundTripReportsDecodeFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bin")
	// 0xF0 alone is a bare LOCK prefix with no following opcode.
	if err := os.WriteFile(path, []byte{0xF0}, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	r := roundTrip(Config{}, path)
	if r.Severity != report.SeverityFailed {
		t.Errorf("Severity = %v, want SeverityFailed", r.Severity)
	}
	if r.Bytes != 1 {
		t.Errorf("Bytes = %d, want 1", r.Bytes)
	}
}

func TestRoundTripReportsMissingFile(t *testing.T) {
	r := roundTrip(Config{}, filepath.Join(t.TempDir(), "missing.bin"))
	if r.Severity != report.SeverityFailed {
		t.Errorf("Severity = %v, want SeverityFailed", r.Severity)
	}
	if r.Detail == "" {
		t.Error("expected a non-empty detail for a missing file")
	}
}

func TestFirstUnimplementedFindsUncoveredOperation(t *testing.T) {
	covered := &instruction.Instruction{Operation: fields.MOV}
	uncovered := &instruction.Instruction{Operation: fields.AAM}
	if got := firstUnimplemented([]*instruction.Instruction{covered}); got != "" {
		t.Errorf("expected no unimplemented instruction, got %q", got)
	}
	if got := firstUnimplemented([]*instruction.Instruction{covered, uncovered}); got == "" {
		t.Error("expected AAM to be reported as unimplemented")
	}
}
