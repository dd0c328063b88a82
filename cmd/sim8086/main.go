package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"

	"github.com/andrz/sim8086/pkg/config"
	"github.com/andrz/sim8086/pkg/decoder"
	"github.com/andrz/sim8086/pkg/disasm"
	"github.com/andrz/sim8086/pkg/fields"
	"github.com/andrz/sim8086/pkg/report"
	"github.com/andrz/sim8086/pkg/runner"
	"github.com/andrz/sim8086/pkg/sim"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	rootCmd := &cobra.Command{
		Use:   "sim8086",
		Short: "Decode, re-emit and simulate a subset of the 8086/8088 instruction set",
	}

	rootCmd.AddCommand(newDecodeCmd(cfg), newRunCmd(cfg), newCorpusCmd(cfg))
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newDecodeCmd implements `sim8086 decode <file>`: decode + emit,
// writing <name>.8086.decoded into the output directory (cfg.OutputDir
// by default, or --output-dir when given).
func newDecodeCmd(cfg config.Config) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Decode a binary instruction stream and emit NASM-syntax source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputDir == "" {
				outputDir = cfg.OutputDir
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				statusLine(cfg, false, "%s: %v", path, err)
				return err
			}

			ins, err := decoder.Decode(data)
			if err != nil {
				statusLine(cfg, false, "%s: %v", path, err)
				return err
			}

			text := disasm.Emit(ins)
			outPath := filepath.Join(outputDir, filepath.Base(path)+".8086.decoded")
			if err := os.WriteFile(outPath, []byte(text), 0o644); err != nil {
				statusLine(cfg, false, "%s: %v", path, err)
				return err
			}

			statusLine(cfg, true, "%s -> %s (%d instructions)", path, outPath, len(ins))
			return nil
		},
	}
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory .8086.decoded files are written to (default from config)")
	return cmd
}

// newRunCmd implements `sim8086 run <file>`: decode + simulate,
// printing final register/flag state and clock totals.
func newRunCmd(cfg config.Config) *cobra.Command {
	var dumpMemoryPath string
	var cpuVariant string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Decode and simulate a binary instruction stream",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cpuVariant == "" {
				cpuVariant = cfg.CPU
			}
			if cpuVariant != "8086" && cpuVariant != "8088" {
				return fmt.Errorf("--cpu must be \"8086\" or \"8088\", got %q", cpuVariant)
			}

			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				statusLine(cfg, false, "%s: %v", path, err)
				return err
			}

			ins, err := decoder.Decode(data)
			if err != nil {
				statusLine(cfg, false, "%s: %v", path, err)
				return err
			}

			log := logr.Discard()
			if verbose {
				log = funcr.New(func(prefix, args string) {
					fmt.Fprintln(os.Stderr, prefix, args)
				}, funcr.Options{Verbosity: 1})
			}

			prog := disasm.New(ins)
			s := sim.New(prog, log)
			steps, err := s.Run()
			if err != nil {
				statusLine(cfg, false, "%s: %v", path, err)
				return err
			}

			printFinalState(s, steps, cpuVariant)

			if dumpMemoryPath != "" {
				f, err := os.Create(dumpMemoryPath)
				if err != nil {
					return err
				}
				defer f.Close()
				if err := s.DumpMemory(f); err != nil {
					return err
				}
			}
			statusLine(cfg, true, "%s: %d instructions executed", path, steps)
			return nil
		},
	}
	cmd.Flags().StringVar(&dumpMemoryPath, "dump-memory", "", "Write the final 64 KiB memory image to this file")
	cmd.Flags().StringVar(&cpuVariant, "cpu", "", "Which clock column to emphasize: 8086 or 8088 (default from config)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Trace each decode/execute step")
	return cmd
}

func printFinalState(s *sim.Simulator, steps int, cpuVariant string) {
	regs := []fields.Register{fields.AX, fields.BX, fields.CX, fields.DX, fields.SP, fields.BP, fields.SI, fields.DI}
	var parts []string
	for _, r := range regs {
		parts = append(parts, fmt.Sprintf("%s:0x%04x", r, s.Reg(r)))
	}
	fmt.Println(strings.Join(parts, " "))

	f := s.Flags()
	fmt.Printf("flags: Z=%v S=%v P=%v C=%v A=%v O=%v\n", f.Z, f.S, f.P, f.C, f.A, f.O)

	clocks := s.Clocks86
	if cpuVariant == "8088" {
		clocks = s.Clocks88
	}
	fmt.Printf("ip:0x%04x instructions:%d clocks(%s):%d\n", s.IP(), steps, cpuVariant, clocks)
}

// newCorpusCmd implements `sim8086 corpus <dir>`: batch round-trip
// verification of every file in dir against an external assembler.
func newCorpusCmd(cfg config.Config) *cobra.Command {
	var checkpointPath string
	var nasmPath string
	var verbose bool
	var resume bool

	cmd := &cobra.Command{
		Use:   "corpus <dir>",
		Short: "Round-trip decode+emit+assemble every file in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := args[0]
			entries, err := os.ReadDir(dir)
			if err != nil {
				return err
			}
			var paths []string
			for _, e := range entries {
				if !e.IsDir() {
					paths = append(paths, filepath.Join(dir, e.Name()))
				}
			}

			var prior []report.Result
			done := make(map[string]bool)
			if resume {
				if checkpointPath == "" {
					return fmt.Errorf("--resume requires --checkpoint")
				}
				ckpt, err := report.Load(checkpointPath)
				if err != nil {
					return err
				}
				prior = ckpt.Results
				done = ckpt.Done
				var remaining []string
				for _, p := range paths {
					if !done[p] {
						remaining = append(remaining, p)
					}
				}
				paths = remaining
			}

			table := runner.Run(runner.Config{NasmPath: nasmPath, Verbose: verbose}, paths)
			for _, r := range prior {
				table.Add(r)
			}

			clean, unimpl, mismatch, failed := table.Summary()
			for _, r := range table.Results() {
				printResultLine(cfg, r)
			}
			fmt.Printf("\n%d clean, %d unimplemented, %d mismatched, %d failed (of %d)\n",
				clean, unimpl, mismatch, failed, table.Len())

			if checkpointPath != "" {
				results := table.Results()
				for _, r := range results {
					done[r.Path] = true
				}
				ckpt := &report.Checkpoint{Results: results, Done: done}
				if err := report.Save(checkpointPath, ckpt); err != nil {
					return err
				}
			}

			if mismatch > 0 || failed > 0 {
				return fmt.Errorf("%d files failed round-trip verification", mismatch+failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&checkpointPath, "checkpoint", "", "Read/write a resumable gob checkpoint at this path")
	cmd.Flags().BoolVar(&resume, "resume", false, "Skip paths already recorded done in --checkpoint and merge in its results")
	cmd.Flags().StringVar(&nasmPath, "nasm", "", "Path to a NASM-compatible assembler (default: nasm on PATH)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print each file's result as it completes")
	return cmd
}

func printResultLine(cfg config.Config, r report.Result) {
	line := fmt.Sprintf("  %-40s %s", r.Path, severityWord(r.Severity))
	if r.Detail != "" {
		line += " (" + r.Detail + ")"
	}
	if !cfg.Color {
		fmt.Println(line)
		return
	}
	switch r.Severity {
	case report.SeverityClean:
		color.Green(line)
	case report.SeverityUnimplemented:
		color.Yellow(line)
	default:
		color.Red(line)
	}
}

func severityWord(s report.Severity) string {
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

func statusLine(cfg config.Config, ok bool, format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	if !cfg.Color {
		fmt.Println(line)
		return
	}
	if ok {
		color.Green(line)
	} else {
		color.Red(line)
	}
}
