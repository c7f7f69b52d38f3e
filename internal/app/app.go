package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/specialistvlad/gridflow/internal/component"
	"github.com/specialistvlad/gridflow/internal/ctxlog"
	"github.com/specialistvlad/gridflow/internal/publish"
	"github.com/specialistvlad/gridflow/internal/script"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	ctx    context.Context
	logger *slog.Logger
	config *Config
	router *publish.Router

	session    *script.Session
	httpServer *http.Server
}

// NewApp is the constructor for the main application. It returns an App
// with its own isolated logger and publish backends. outW is shared by both
// and needs no synchronization of its own.
func NewApp(outW io.Writer, cfg *Config) (*App, error) {
	outW = &lockedWriter{w: outW}
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	router, err := newRouter(outW, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to configure publishers: %w", err)
	}
	logger.Debug("Publishers configured.", "available", router.Names(), "default", cfg.Publisher)

	return &App{
		outW:   outW,
		ctx:    ctx,
		logger: logger,
		config: cfg,
		router: router,
	}, nil
}

func newRouter(outW io.Writer, cfg *Config) (*publish.Router, error) {
	backends := []publish.Backend{
		publish.LogPublisher{},
		publish.NewPrintPublisher(outW),
	}
	if cfg.PublishDir != "" {
		backends = append(backends, publish.NewDirPublisher(cfg.PublishDir))
	}
	if cfg.PublishURL != "" {
		backends = append(backends, publish.NewHTTPPublisher(cfg.PublishURL, 0))
	}
	if cfg.SocketIOURL != "" {
		sio, err := publish.NewSocketIOPublisher(publish.SocketIOConfig{
			URL:       cfg.SocketIOURL,
			Namespace: cfg.SocketIONamespace,
		})
		if err != nil {
			return nil, err
		}
		backends = append(backends, sio)
	}
	return publish.NewRouter(cfg.Publisher, backends...)
}

// entryObserver logs the lifecycle of the entry invocation.
type entryObserver struct{}

func (entryObserver) BeforeEntry(ctx context.Context, def *component.Definition) {
	ctxlog.FromContext(ctx).Info("▶️ Invoking entry component.", "component", def.Label(), "kind", def.Kind())
}

func (entryObserver) AfterEntry(ctx context.Context, def *component.Definition, err error) {
	logger := ctxlog.FromContext(ctx)
	if err != nil {
		logger.Error("Entry component failed.", "component", def.Label(), "error", err)
		return
	}
	logger.Info("Entry component returned.", "component", def.Label())
}
