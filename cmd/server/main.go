// Package main is the entry point for the translation judge web server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/pricofy/translation-judge/internal/app"
	"github.com/pricofy/translation-judge/internal/config"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "translation-judge",
		Usage: "translate text with an LLM and grade the result",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "dotenv file with MENTORPIECE_* settings",
				Value: config.DefaultEnvFile,
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "debug, info, warn or error (overrides LOG_LEVEL)",
			},
		},
		Commands: []*cli.Command{
			serveCmd,
		},
	}
}

var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "run the HTTP server",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "listen",
			Usage: "address to listen on (overrides LISTEN_ADDR)",
		},
		&cli.StringFlag{
			Name:  "endpoint",
			Usage: "MentorPiece endpoint URL (overrides MENTORPIECE_ENDPOINT)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "timeout of a single LLM call (overrides MENTORPIECE_TIMEOUT)",
		},
	},
	Action: func(cctx *cli.Context) error {
		cfg, err := config.Load(cctx.String("env-file"))
		if err != nil {
			return err
		}
		if cctx.IsSet("listen") {
			cfg.ListenAddr = cctx.String("listen")
		}
		if cctx.IsSet("endpoint") {
			cfg.Endpoint = cctx.String("endpoint")
		}
		if cctx.IsSet("timeout") {
			cfg.Timeout = cctx.Duration("timeout")
		}
		if cctx.IsSet("log-level") {
			cfg.LogLevel = cctx.String("log-level")
		}

		logger, err := app.NewLogger(os.Stderr, cfg.LogLevel)
		if err != nil {
			return err
		}
		a := app.New(cfg, logger)

		srv := &http.Server{
			Addr:              cfg.ListenAddr,
			Handler:           a.Server,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("listening", "addr", cfg.ListenAddr, "endpoint", cfg.Endpoint, "timeout", cfg.Timeout)
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	},
}
