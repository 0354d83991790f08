// Package http exposes the ledger over a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"bilancio/internal/middleware/trace"
	"bilancio/internal/services"
)

type Server struct {
	http.Server

	ledger    *services.Ledger
	closer    *services.MonthCloser
	expander  *services.Expander
	evaluator *services.Evaluator
	registry  *services.Registry
	reporter  *services.Reporter

	shutdownOnce sync.Once
}

// NewServer configures routes and returns a ready-to-run http.Server.
func NewServer(addr string, ledger *services.Ledger, closer *services.MonthCloser,
	expander *services.Expander, evaluator *services.Evaluator,
	registry *services.Registry, reporter *services.Reporter) *Server {

	mux := http.NewServeMux()

	s := &Server{
		ledger:    ledger,
		closer:    closer,
		expander:  expander,
		evaluator: evaluator,
		registry:  registry,
		reporter:  reporter,
	}
	s.Server = http.Server{
		Addr:              addr,
		Handler:           trace.Middleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /bootstrap", s.handleBootstrap)

	mux.HandleFunc("GET /months", s.handleListMonths)
	mux.HandleFunc("GET /months/current", s.handleCurrentMonth)
	mux.HandleFunc("GET /months/{id}", s.handleMonthReport)
	mux.HandleFunc("POST /months/{id}/close", s.handleCloseMonth)
	mux.HandleFunc("GET /months/{id}/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /months/{id}/expand", s.handleExpand)
	mux.HandleFunc("GET /months/{id}/expand", s.handleExpandPreview)
	mux.HandleFunc("GET /months/{id}/objectives", s.handleEvaluateObjectives)

	mux.HandleFunc("POST /transactions", s.handleRecordTransaction)

	mux.HandleFunc("GET /accounts", s.handleListAccounts)
	mux.HandleFunc("POST /accounts", s.handleCreateAccount)
	mux.HandleFunc("POST /accounts/{id}/retire", s.handleRetireAccount)

	mux.HandleFunc("GET /cards", s.handleListCards)
	mux.HandleFunc("POST /cards", s.handleCreateCard)
	mux.HandleFunc("PUT /cards/{id}/cycle", s.handleConfigureCardCycle)
	mux.HandleFunc("POST /cards/{id}/retire", s.handleRetireCard)

	mux.HandleFunc("GET /templates", s.handleListTemplates)
	mux.HandleFunc("POST /templates", s.handleUpsertTemplate)
	mux.HandleFunc("POST /templates/{id}/retire", s.handleRetireTemplate)

	mux.HandleFunc("GET /objectives", s.handleListObjectives)
	mux.HandleFunc("POST /objectives", s.handleSetObjective)
	mux.HandleFunc("POST /objectives/{id}/retire", s.handleRetireObjective)

	return s
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
