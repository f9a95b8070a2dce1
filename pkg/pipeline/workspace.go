package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kamanufred/reBLAST/logger"
	"go.uber.org/zap"
)

// removeAll is swapped in tests to make Release fail.
var removeAll = os.RemoveAll

// Workspace is the scratch directory of one run: BLAST databases, raw
// search output and the tool log. Release removes it.
type Workspace struct {
	Dir  string
	keep bool
}

// NewWorkspace creates <parent>/reblast-<runID>, replacing any leftover
// directory of the same name. An empty parent means os.TempDir().
func NewWorkspace(parent, runID string, keep bool) (*Workspace, error) {
	if parent == "" {
		parent = os.TempDir()
	}
	dir := filepath.Join(parent, "reblast-"+runID)

	if err := os.RemoveAll(dir); err != nil {
		return nil, fmt.Errorf("failed to clear workspace %s: %w", dir, err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "blastdb"), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create workspace %s: %w", dir, err)
	}
	return &Workspace{Dir: dir, keep: keep}, nil
}

// BlastDB is the database prefix handed to makeblastdb -out and -db.
func (w *Workspace) BlastDB(name string) string {
	return filepath.Join(w.Dir, "blastdb", name)
}

func (w *Workspace) SearchOutput(name string) string {
	return filepath.Join(w.Dir, name+".xml")
}

func (w *Workspace) LogPath() string {
	return filepath.Join(w.Dir, "blast.log")
}

func (w *Workspace) Release() error {
	if w.keep {
		logger.Info("Keeping workspace", zap.String("dir", w.Dir))
		return nil
	}
	if err := removeAll(w.Dir); err != nil {
		return fmt.Errorf("failed to remove workspace %s: %w", w.Dir, err)
	}
	logger.Debug("Removed workspace", zap.String("dir", w.Dir))
	return nil
}
