package blast

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"

	"github.com/kamanufred/reBLAST/logger"
	"github.com/kamanufred/reBLAST/pkg/model"
	"go.uber.org/zap"
)

var ErrToolNotFound = errors.New("BLAST+ program not found")

const makeBlastDB = "makeblastdb"

// SearchParams are the knobs passed to blastn/blastp.
type SearchParams struct {
	EValue        float64 `toml:"evalue"`
	MaxTargetSeqs int     `toml:"max_target_seqs"`
	Threads       int     `toml:"num_threads"`
}

// DefaultSearchParams match what the pipeline has always used.
var DefaultSearchParams = SearchParams{
	EValue:        0.001,
	MaxTargetSeqs: 5,
	Threads:       2,
}

// Tools locates and runs the BLAST+ programs.
type Tools struct {
	Runner Runner
	// BinDir holds the BLAST+ programs; PATH is used when empty.
	BinDir string
}

func (t Tools) path(program string) string {
	if t.BinDir != "" {
		return filepath.Join(t.BinDir, program)
	}
	return program
}

// Preflight checks that makeblastdb and the search program for molType
// can be found before any work starts.
func (t Tools) Preflight(molType model.MolType) error {
	for _, program := range []string{makeBlastDB, molType.SearchProgram()} {
		resolved, err := exec.LookPath(t.path(program))
		if err != nil {
			return fmt.Errorf("%w: %s (is BLAST+ installed and on PATH?)", ErrToolNotFound, program)
		}
		logger.Debug("Found BLAST+ program", zap.String("program", program), zap.String("path", resolved))
	}
	return nil
}

// MakeDB builds a BLAST database named out from the FASTA file in.
func (t Tools) MakeDB(ctx context.Context, in string, molType model.MolType, out string) error {
	args := []string{"-in", in, "-dbtype", string(molType), "-out", out}
	if err := t.Runner.Run(ctx, t.path(makeBlastDB), args...); err != nil {
		return fmt.Errorf("failed to build BLAST database from %s: %w", in, err)
	}
	return nil
}

// Search runs query against db and writes BLAST XML (-outfmt 5) to out.
func (t Tools) Search(ctx context.Context, molType model.MolType, query, db, out string, params SearchParams) error {
	program := molType.SearchProgram()
	args := []string{
		"-query", query,
		"-db", db,
		"-out", out,
		"-outfmt", "5",
		"-evalue", strconv.FormatFloat(params.EValue, 'g', -1, 64),
		"-max_target_seqs", strconv.Itoa(params.MaxTargetSeqs),
		"-num_threads", strconv.Itoa(params.Threads),
	}
	if err := t.Runner.Run(ctx, t.path(program), args...); err != nil {
		return fmt.Errorf("failed to search %s against %s: %w", query, db, err)
	}
	return nil
}
