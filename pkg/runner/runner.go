// Package runner fans a corpus of raw 8086 binaries out across a
// worker pool, round-tripping each one through decode -> emit ->
// external assembler -> byte-compare, the way the teacher's
// pkg/search/worker.go fanned candidate sequences out across workers
// for (enumerate, simulate, compare) instead.
package runner

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/andrz/sim8086/pkg/cpu"
	"github.com/andrz/sim8086/pkg/decoder"
	"github.com/andrz/sim8086/pkg/disasm"
	"github.com/andrz/sim8086/pkg/instruction"
	"github.com/andrz/sim8086/pkg/report"
)

// Config controls a corpus run.
type Config struct {
	NumWorkers int    // 0 means runtime.NumCPU()
	NasmPath   string // path to a NASM-compatible assembler binary
	Verbose    bool
}

// Run decodes, emits, and round-trip-assembles every file in paths,
// returning a populated report.Table. Workers process files
// concurrently; Table.Add is safe for that.
func Run(cfg Config, paths []string) *report.Table {
	numWorkers := cfg.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	table := report.NewTable()
	ch := make(chan string, len(paths))
	for _, p := range paths {
		ch <- p
	}
	close(ch)

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range ch {
				r := roundTrip(cfg, path)
				if cfg.Verbose {
					fmt.Printf("  %s: %s\n", path, severityLabel(r.Severity))
				}
				table.Add(r)
			}
		}()
	}
	wg.Wait()
	return table
}

// roundTrip decodes one file, re-emits it as NASM source, assembles
// that source back to bytes with an external assembler, and compares
// the result to the original input.
func roundTrip(cfg Config, path string) report.Result {
	data, err := os.ReadFile(path)
	if err != nil {
		return report.Result{Path: path, Severity: report.SeverityFailed, Detail: err.Error()}
	}

	ins, err := decoder.Decode(data)
	if err != nil {
		return report.Result{Path: path, Severity: report.SeverityFailed, Detail: err.Error(), Bytes: len(data)}
	}

	text := disasm.Emit(ins)
	result := report.Result{Path: path, Bytes: len(data), Instructions: len(ins)}

	if unimpl := firstUnimplemented(ins); unimpl != "" {
		result.Severity = report.SeverityUnimplemented
		result.Detail = unimpl
	}

	assembled, err := assemble(cfg.NasmPath, text)
	if err != nil {
		result.Severity = report.SeverityFailed
		result.Detail = err.Error()
		return result
	}

	if !bytes.Equal(assembled, data) {
		result.Severity = report.SeverityMismatch
		result.Detail = fmt.Sprintf("round-trip produced %d bytes, want %d", len(assembled), len(data))
		return result
	}

	return result
}

// assemble writes src to a temp .asm file, invokes nasmPath to produce
// a flat binary, and returns the assembled bytes.
func assemble(nasmPath, src string) ([]byte, error) {
	if nasmPath == "" {
		nasmPath = "nasm"
	}
	dir, err := os.MkdirTemp("", "sim8086-roundtrip")
	if err != nil {
		return nil, fmt.Errorf("runner: temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	asmPath := filepath.Join(dir, "round.asm")
	outPath := filepath.Join(dir, "round.bin")
	if err := os.WriteFile(asmPath, []byte(src), 0o644); err != nil {
		return nil, fmt.Errorf("runner: write source: %w", err)
	}

	cmd := exec.Command(nasmPath, "-f", "bin", "-o", outPath, asmPath)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("runner: assemble: %w: %s", err, stderr.String())
	}

	return os.ReadFile(outPath)
}

// firstUnimplemented returns a description of the first instruction
// with no simulator coverage, or "" if cpu.Supported reports every
// instruction in ins as covered.
func firstUnimplemented(ins []*instruction.Instruction) string {
	for i, in := range ins {
		if !cpu.Supported(in.Operation) {
			return fmt.Sprintf("instruction %d (%s) has no simulator coverage", i, in.Operation)
		}
	}
	return ""
}

func severityLabel(s report.Severity) string {
	switch s {
	case report.SeverityClean:
		return "clean"
	case report.SeverityUnimplemented:
		return "unimplemented"
	case report.SeverityMismatch:
		return "mismatch"
	default:
		return "failed"
	}
}
