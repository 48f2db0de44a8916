package main

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"github.com/charmbracelet/log"
)

const (
	// WarmupSource identifies scheduled warmup events.
	WarmupSource = "warmup"

	// WarmupDelay keeps this instance busy long enough for the children to
	// land on separate instances.
	WarmupDelay = 75 * time.Millisecond

	// maxWarmupConcurrency bounds the self-invocations of one warmup event.
	maxWarmupConcurrency = 50
)

// WarmupEvent is the scheduled event payload.
type WarmupEvent struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

// WarmupResponse is returned for warmup events.
type WarmupResponse struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// IsWarmupEvent reports whether event is a warmup event and decodes it.
func IsWarmupEvent(event json.RawMessage) (*WarmupEvent, bool) {
	var probe struct {
		Source      *string  `json:"source"`
		Concurrency *float64 `json:"concurrency"`
	}
	if err := json.Unmarshal(event, &probe); err != nil {
		return nil, false
	}
	if probe.Source == nil || *probe.Source != WarmupSource {
		return nil, false
	}

	warmup := &WarmupEvent{Source: WarmupSource}
	if probe.Concurrency != nil && *probe.Concurrency > 0 {
		warmup.Concurrency = int(min(*probe.Concurrency, maxWarmupConcurrency))
	}
	return warmup, true
}

// invoker asynchronously invokes a Lambda function.
type invoker interface {
	Invoke(ctx context.Context, params *lambdasdk.InvokeInput, optFns ...func(*lambdasdk.Options)) (*lambdasdk.InvokeOutput, error)
}

// newLambdaInvoker builds an AWS Lambda client from the default credential chain.
func newLambdaInvoker(ctx context.Context) (invoker, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return lambdasdk.NewFromConfig(cfg), nil
}

// warmer answers warmup events, fanning out to sibling instances on request.
type warmer struct {
	invoker      func(ctx context.Context) (invoker, error)
	functionName string
	logger       *log.Logger
	delay        time.Duration
}

// Handle processes a warmup event.
func (w *warmer) Handle(ctx context.Context, warmup *WarmupEvent) (interface{}, error) {
	warmed := 1 // this instance

	if count := min(warmup.Concurrency, maxWarmupConcurrency); count > 0 {
		if err := w.selfInvoke(ctx, count); err != nil {
			w.logger.Warn("warmup fan-out failed", "concurrency", count, "err", err)
		} else {
			warmed += count
		}
	}

	delay := w.delay
	if delay == 0 {
		delay = WarmupDelay
	}
	time.Sleep(delay)

	return map[string]interface{}{
		"statusCode": 200,
		"body": WarmupResponse{
			Status:          "warm",
			InstancesWarmed: warmed,
		},
	}, nil
}

// selfInvoke invokes this function count times asynchronously. Children get
// concurrency 0 so they never fan out themselves.
func (w *warmer) selfInvoke(ctx context.Context, count int) error {
	if w.functionName == "" {
		return errors.New("AWS_LAMBDA_FUNCTION_NAME is not set")
	}
	client, err := w.invoker(ctx)
	if err != nil {
		return err
	}

	payload, err := json.Marshal(WarmupEvent{Source: WarmupSource})
	if err != nil {
		return err
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for i := 0; i < count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := client.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(w.functionName),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	return firstErr
}
