package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/specialistvlad/gridflow/internal/ctxlog"
)

// stackFrame is the JSON shape of one execution stack frame.
type stackFrame struct {
	Component    string    `json:"component"`
	Kind         string    `json:"kind"`
	InvocationID string    `json:"invocation_id"`
	Origin       string    `json:"origin"`
	Entered      time.Time `json:"entered"`
}

// healthHandler reports that the process is alive.
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Health check endpoint hit.", "remote_addr", r.RemoteAddr, "path", r.URL.Path)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

// stackHandler writes the components currently executing, outermost first.
func (a *App) stackHandler(w http.ResponseWriter, r *http.Request) {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Stack endpoint hit.", "remote_addr", r.RemoteAddr)

	frames := a.session.Stack().Snapshot()
	out := make([]stackFrame, 0, len(frames))
	for _, f := range frames {
		out = append(out, stackFrame{
			Component:    f.Definition.Label(),
			Kind:         string(f.Definition.Kind()),
			InvocationID: f.InvocationID,
			Origin:       f.Definition.Origin().String(),
			Entered:      f.Entered,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		logger.Error("Failed to encode stack snapshot.", "error", err)
	}
}

func (a *App) diagnosticsMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", a.healthHandler)
	mux.HandleFunc("/stack", a.stackHandler)
	return mux
}

// diagnosticsServer starts the diagnostics HTTP server when a port is set.
func (a *App) diagnosticsServer() {
	logger := ctxlog.FromContext(a.ctx)
	logger.Debug("Configuring diagnostics server.")
	if a.config.DiagnosticsPort <= 0 {
		logger.Debug("Diagnostics server not started: disabled")
		return
	}

	addr := fmt.Sprintf(":%d", a.config.DiagnosticsPort)
	a.httpServer = &http.Server{
		Addr:              addr,
		Handler:           a.diagnosticsMux(),
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return a.ctx },
	}

	go func() {
		logger.Info("🩺 Diagnostics server starting", "address", fmt.Sprintf("http://localhost%s/health", addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Diagnostics server failed unexpectedly", "error", err)
		}
	}()
}

func (a *App) closeDiagnosticsServer() error {
	logger := ctxlog.FromContext(a.ctx)
	if a.httpServer == nil {
		logger.Debug("Diagnostics server was not running.")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(a.ctx), 5*time.Second)
	defer cancel()

	logger.Info("🩺 Shutting down diagnostics server...")
	if err := a.httpServer.Shutdown(ctx); err != nil {
		logger.Error("Diagnostics server shutdown failed", "error", err)
		return err
	}
	a.httpServer = nil
	return nil
}
