// cmd/server/server.go
package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/Shamsear/ssleague-sub005/internal/api"
	"github.com/Shamsear/ssleague-sub005/internal/api/rounds"
	"github.com/Shamsear/ssleague-sub005/internal/auction"
	"github.com/Shamsear/ssleague-sub005/internal/config"
)

func newServer(cfg *config.Config, engine *auction.Engine, locks *auction.LockManager) *http.Server {
	router := http.NewServeMux()

	// Setup middleware chain
	handler := api.ChainMiddleware(
		router,
		api.WithLogging,
		api.WithRecovery,
		api.WithRequestID,
	)

	rounds.InitHandlers(engine, locks)
	registerRoutes(router)

	return &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Round finalization routes
	mux.HandleFunc("POST /api/v1/rounds/{id}/expire", rounds.HandleExpire)
	mux.HandleFunc("POST /api/v1/rounds/{id}/preview-finalization", rounds.HandlePreviewFinalization)
	mux.HandleFunc("POST /api/v1/rounds/{id}/apply-pending-allocations", rounds.HandleApplyPendingAllocations)
	mux.HandleFunc("GET /api/v1/rounds/{id}/pending-allocations", rounds.HandlePendingAllocations)
	mux.HandleFunc("DELETE /api/v1/rounds/{id}/pending-allocations", rounds.HandleCancelPendingAllocations)
}
