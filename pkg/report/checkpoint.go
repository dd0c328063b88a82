package report

import (
	"encoding/gob"
	"fmt"
	"os"
)

// Checkpoint holds state for resuming a corpus run: every result
// recorded so far, plus the set of paths already processed so the
// runner can skip them on resume.
type Checkpoint struct {
	Results []Result
	Done    map[string]bool
}

func init() {
	gob.Register(Result{})
}

// Save writes the checkpoint to path, replacing any existing file.
func Save(path string, ckpt *Checkpoint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report: save checkpoint: %w", err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(ckpt); err != nil {
		return fmt.Errorf("report: save checkpoint: %w", err)
	}
	return nil
}

// Load reads a checkpoint previously written by Save.
func Load(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("report: load checkpoint: %w", err)
	}
	defer f.Close()
	var ckpt Checkpoint
	if err := gob.NewDecoder(f).Decode(&ckpt); err != nil {
		return nil, fmt.Errorf("report: load checkpoint: %w", err)
	}
	if ckpt.Done == nil {
		ckpt.Done = make(map[string]bool)
	}
	return &ckpt, nil
}
