package handler

// DI for all handlers.

import (
	"context"

	"github.com/kamanufred/reBLAST/pkg/db"
	"github.com/kamanufred/reBLAST/pkg/model"
)

// RunReader is the read side of the run store.
type RunReader interface {
	ListRuns(ctx context.Context) ([]db.Run, error)
	GetRun(ctx context.Context, runID string) (*db.Run, error)
	GetOrthologs(ctx context.Context, runID string) (model.OrthologSet, error)
}

type RunContext struct {
	Store RunReader
}
