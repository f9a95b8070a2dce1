// Package pipeline runs the two-way BLAST comparison of two genomes and
// turns the results into a list of reciprocal best hits.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kamanufred/reBLAST/logger"
	"github.com/kamanufred/reBLAST/pkg/blast"
	"github.com/kamanufred/reBLAST/pkg/config"
	"github.com/kamanufred/reBLAST/pkg/db"
	"github.com/kamanufred/reBLAST/pkg/model"
)

// RunRecorder persists a finished run. *db.RunStore satisfies it.
type RunRecorder interface {
	SaveRun(ctx context.Context, run db.Run, orthologs model.OrthologSet) error
}

type Result struct {
	RunID     string
	Orthologs model.OrthologSet
	Output    string
}

// direction is one of the two searches: query genome against the other
// genome's database.
type direction struct {
	label string
	query string
	db    string
	out   string
}

// Run builds both BLAST databases, searches each genome against the other,
// keeps the reciprocal best hits and writes the report to cfg.Output.
// The report is written only when every step succeeded. recorder may be nil.
func Run(ctx context.Context, cfg config.Config, tools blast.Tools, recorder RunRecorder) (res *Result, err error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.CheckInputs(); err != nil {
		return nil, err
	}
	if err := tools.Preflight(cfg.MolType); err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	ws, err := NewWorkspace(cfg.WorkDir, runID, cfg.KeepWorkDir)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := ws.Release(); releaseErr != nil {
			if err == nil {
				res, err = nil, releaseErr
				return
			}
			// Keep the error that actually stopped the run.
			logger.Warn("Workspace cleanup failed", zap.Error(releaseErr))
		}
	}()

	logger.Info("Start run",
		zap.String("run_id", runID),
		zap.String("genome1", cfg.Genome1),
		zap.String("genome2", cfg.Genome2),
		zap.String("mol_type", string(cfg.MolType)),
		zap.String("workspace", ws.Dir))

	if tools.Runner == nil {
		logFile, err := os.Create(ws.LogPath())
		if err != nil {
			return nil, fmt.Errorf("failed to create tool log: %w", err)
		}
		defer logFile.Close()
		tools.Runner = blast.ExecRunner{Log: logFile}
	}

	dbA, dbB := ws.BlastDB("a"), ws.BlastDB("b")
	if err := buildDatabases(ctx, cfg, tools, dbA, dbB); err != nil {
		return nil, err
	}

	aToB, bToA, err := searchBothWays(ctx, cfg, tools, []direction{
		{label: "a vs b", query: cfg.Genome1, db: dbB, out: ws.SearchOutput("blastout1")},
		{label: "b vs a", query: cfg.Genome2, db: dbA, out: ws.SearchOutput("blastout2")},
	})
	if err != nil {
		return nil, err
	}

	orthologs := model.ComputeReciprocalBestHits(aToB, bToA)
	logger.Info("Reciprocal best hits",
		zap.Int("a_to_b", aToB.Len()),
		zap.Int("b_to_a", bToA.Len()),
		zap.Int("orthologs", len(orthologs)))

	if err := writeReportFile(cfg.Output, orthologs); err != nil {
		return nil, err
	}

	if recorder != nil {
		run := db.Run{
			ID:            runID,
			Genome1:       cfg.Genome1,
			Genome2:       cfg.Genome2,
			MolType:       string(cfg.MolType),
			EValue:        cfg.Search.EValue,
			MaxTargetSeqs: cfg.Search.MaxTargetSeqs,
			Threads:       cfg.Search.Threads,
			CreatedAt:     time.Now(),
		}
		if err := recorder.SaveRun(ctx, run, orthologs); err != nil {
			return nil, fmt.Errorf("failed to record run %s: %w", runID, err)
		}
	}

	logger.Info("Final results written", zap.String("output", cfg.Output), zap.Int("pairs", len(orthologs)))

	return &Result{RunID: runID, Orthologs: orthologs, Output: cfg.Output}, nil
}

func buildDatabases(ctx context.Context, cfg config.Config, tools blast.Tools, dbA, dbB string) error {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return tools.MakeDB(gctx, cfg.Genome1, cfg.MolType, dbA)
	})
	g.Go(func() error {
		return tools.MakeDB(gctx, cfg.Genome2, cfg.MolType, dbB)
	})
	return g.Wait()
}

// searchBothWays runs the two directions concurrently and returns their
// best-hit mappings in the order given.
func searchBothWays(ctx context.Context, cfg config.Config, tools blast.Tools, dirs []direction) (*model.BestHitMapping, *model.BestHitMapping, error) {
	mappings := make([]*model.BestHitMapping, len(dirs))

	g, gctx := errgroup.WithContext(ctx)
	for i, d := range dirs {
		i, d := i, d
		g.Go(func() error {
			logger.Info(fmt.Sprintf("Running %s %s ...", d.label, cfg.MolType.SearchProgram()))
			if err := tools.Search(gctx, cfg.MolType, d.query, d.db, d.out, cfg.Search); err != nil {
				return err
			}
			m, err := extractFile(d.out)
			if err != nil {
				return fmt.Errorf("%s: %w", d.label, err)
			}
			mappings[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return mappings[0], mappings[1], nil
}

func extractFile(path string) (*model.BestHitMapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open search output: %w", err)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil {
		logger.Info("Parsing BLAST XML", zap.String("file", filepath.Base(path)), zap.String("size", humanize.Bytes(uint64(info.Size()))))
	}

	results, err := blast.DecodeResults(f)
	if err != nil {
		return nil, err
	}
	return model.ExtractBestHits(results)
}

// writeReportFile writes to a temporary file next to path and renames it
// into place, so path never holds a partial report.
func writeReportFile(path string, orthologs model.OrthologSet) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".reblast-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := model.WriteReport(tmp, orthologs); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to set report permissions: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close report: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move report into place: %w", err)
	}
	return nil
}
