package main

import (
	"net/http"

	"github.com/kamanufred/reBLAST/pkg/handler"
)

func NewRouter(rc *handler.RunContext) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/v1/health", handler.HealthCheck)
	mux.HandleFunc("GET /api/v1/runs", rc.ListRunsHandler)
	mux.HandleFunc("GET /api/v1/runs/{run_id}", rc.GetRunHandler)
	mux.HandleFunc("GET /api/v1/runs/{run_id}/orthologs", rc.GetOrthologsHandler)

	return mux
}
