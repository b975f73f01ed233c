package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	domrepo "FinChat/internal/domain/repository"
	"FinChat/pkg/config"
	xhttp "FinChat/pkg/http"
	applogger "FinChat/pkg/logger"
)

// App encapsulates the application lifecycle: serve HTTP until a signal arrives, then drain.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	queryLogs  domrepo.QueryLogStore
}

func New(cfg *config.Config, l *applogger.Logger, srv *xhttp.Server, queryLogs domrepo.QueryLogStore) *App {
	if l == nil {
		l = applogger.Nop()
	}
	return &App{cfg: cfg, log: l, httpServer: srv, queryLogs: queryLogs}
}

// Handler exposes the routed echo instance, mainly for tests.
func (a *App) Handler() http.Handler { return a.httpServer.Echo() }

// Run starts the HTTP server and blocks until ctx ends or SIGINT/SIGTERM arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if a.queryLogs != nil {
		hctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := a.queryLogs.Health(hctx)
		cancel()
		if err != nil {
			return fmt.Errorf("query log store: %w", err)
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}
	a.log.Info("finchat started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.String("querylog", a.cfg.QueryLog.Backend),
		applogger.String("cache", a.cfg.Cache.Backend),
		applogger.Bool("mock", a.cfg.Mock))

	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
	defer cancel()
	if err := a.httpServer.Stop(ctx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		return err
	}
	a.log.Info("shutdown complete")
	return nil
}
