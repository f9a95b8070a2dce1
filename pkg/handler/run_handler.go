package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kamanufred/reBLAST/logger"
	"github.com/kamanufred/reBLAST/pkg/db"
	"github.com/kamanufred/reBLAST/pkg/model"
	"go.uber.org/zap"
)

type OrthologsResponse struct {
	RunID     string             `json:"run_id"`
	Orthologs model.OrthologSet `json:"orthologs"`
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Failed to encode response", zap.Error(err))
	}
}

// storeError maps store errors to HTTP statuses.
func storeError(w http.ResponseWriter, runID string, err error) {
	if errors.Is(err, db.ErrRunNotFound) {
		http.Error(w, "Run not found", http.StatusNotFound)
		return
	}
	logger.Error("Run store failed", zap.String("run_id", runID), zap.Error(err))
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

func (rc *RunContext) ListRunsHandler(w http.ResponseWriter, r *http.Request) {
	runs, err := rc.Store.ListRuns(r.Context())
	if err != nil {
		storeError(w, "", err)
		return
	}
	writeJSON(w, runs)
}

func (rc *RunContext) GetRunHandler(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("run_id")

	run, err := rc.Store.GetRun(r.Context(), runID)
	if err != nil {
		storeError(w, runID, err)
		return
	}
	writeJSON(w, run)
}

// GetOrthologsHandler serves the pairs of a run, as the same TSV the CLI
// writes unless ?format=json is given.
func (rc *RunContext) GetOrthologsHandler(w http.ResponseWriter, r *http.Request) {
	runID := r.PathValue("run_id")

	orthologs, err := rc.Store.GetOrthologs(r.Context(), runID)
	if err != nil {
		storeError(w, runID, err)
		return
	}

	switch r.URL.Query().Get("format") {
	case "", "tsv":
		w.Header().Set("Content-Type", "text/tab-separated-values; charset=utf-8")
		if err := model.WriteReport(w, orthologs); err != nil {
			logger.Error("Failed to write report", zap.String("run_id", runID), zap.Error(err))
		}
	case "json":
		writeJSON(w, OrthologsResponse{RunID: runID, Orthologs: orthologs})
	default:
		http.Error(w, "Invalid format, use tsv or json", http.StatusBadRequest)
	}
}
