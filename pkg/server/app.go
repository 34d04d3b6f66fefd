package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	domrepo "github.com/frontboat/agent-gmx-sub000/internal/domain/repository"
	"github.com/frontboat/agent-gmx-sub000/internal/usecase"
	"github.com/frontboat/agent-gmx-sub000/pkg/config"
	xhttp "github.com/frontboat/agent-gmx-sub000/pkg/http"
	applogger "github.com/frontboat/agent-gmx-sub000/pkg/logger"
)

// App owns the process lifecycle: the HTTP server, the optional scheduler,
// and orderly teardown of the publisher and archive on shutdown.
type App struct {
	cfg       *config.Config
	logger    *applogger.Logger
	handler   xhttp.Handler
	scheduler *usecase.Scheduler
	publisher domrepo.SignalPublisher
	archive   domrepo.OutcomeArchive

	httpServer *xhttp.Server
}

func New(
	cfg *config.Config,
	l *applogger.Logger,
	handler xhttp.Handler,
	scheduler *usecase.Scheduler,
	publisher domrepo.SignalPublisher,
	archive domrepo.OutcomeArchive,
) *App {
	return &App{
		cfg:       cfg,
		logger:    l,
		handler:   handler,
		scheduler: scheduler,
		publisher: publisher,
		archive:   archive,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.archive.Init(ctx); err != nil {
		return err
	}

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	if a.cfg.Scheduler.Enabled {
		go a.scheduler.Start(ctx)
	}

	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("engine started",
		applogger.Int("port", a.cfg.Server.Port),
		applogger.Strings("symbols", a.cfg.Symbols),
		applogger.Bool("scheduler", a.cfg.Scheduler.Enabled),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	cancel()
	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()

	var firstErr error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
		firstErr = err
	}
	if err := a.publisher.Close(); err != nil {
		a.logger.Error("publisher close error", applogger.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}
	if err := a.archive.Close(); err != nil {
		a.logger.Error("archive close error", applogger.Error(err))
		if firstErr == nil {
			firstErr = err
		}
	}
	a.logger.Info("engine stopped")
	return firstErr
}
