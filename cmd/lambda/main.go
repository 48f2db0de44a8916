// Package main is the entry point for the translation judge Lambda function.
package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/charmbracelet/log"

	"github.com/pricofy/translation-judge/internal/app"
	"github.com/pricofy/translation-judge/internal/config"
	"github.com/pricofy/translation-judge/internal/domain"
	"github.com/pricofy/translation-judge/internal/handler"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal("failed to load config", "err", err)
	}
	logger, err := app.NewLogger(os.Stderr, cfg.LogLevel)
	if err != nil {
		log.Fatal("failed to create logger", "err", err)
	}
	a := app.New(cfg, logger)
	w := &warmer{invoker: newLambdaInvoker, functionName: os.Getenv("AWS_LAMBDA_FUNCTION_NAME"), logger: logger}

	lambda.Start(func(ctx context.Context, event json.RawMessage) (interface{}, error) {
		return handleEvent(ctx, a.Handler, w, event)
	})
}

func handleEvent(ctx context.Context, h *handler.Handler, w *warmer, event json.RawMessage) (interface{}, error) {
	// Warmup detection comes before any other processing
	if warmup, ok := IsWarmupEvent(event); ok {
		return w.Handle(ctx, warmup)
	}

	var req domain.Request
	if err := json.Unmarshal(event, &req); err != nil {
		return nil, err
	}

	return h.Handle(ctx, req), nil
}
