// Package app assembles the service from its configuration.
package app

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pricofy/translation-judge/internal/config"
	"github.com/pricofy/translation-judge/internal/dispatch"
	"github.com/pricofy/translation-judge/internal/handler"
	"github.com/pricofy/translation-judge/internal/metrics"
	"github.com/pricofy/translation-judge/internal/router"
	"github.com/pricofy/translation-judge/internal/web"
)

// App holds the wired components.
type App struct {
	Config  *config.Config
	Logger  *log.Logger
	Metrics *metrics.Recorder
	Handler *handler.Handler
	Server  *web.Server
}

// NewLogger creates a timestamped logger writing to w at the named level.
func NewLogger(w io.Writer, level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "translation-judge",
	}), nil
}

// New wires the dispatcher, handler and HTTP server for cfg.
func New(cfg *config.Config, logger *log.Logger) *App {
	rec := metrics.New()
	d := dispatch.New(cfg.Endpoint, cfg.Timeout,
		dispatch.WithLogger(logger.WithPrefix("dispatch")),
		dispatch.WithMetrics(rec),
	)
	h := handler.New(d, router.New(cfg.TranslateModel, cfg.JudgeModel), cfg.APIKey, logger.WithPrefix("handler"))

	return &App{
		Config:  cfg,
		Logger:  logger,
		Metrics: rec,
		Handler: h,
		Server:  web.New(h, logger.WithPrefix("web"), rec.Handler()),
	}
}
