// Package pipeline orchestrates one synthesis request across every
// configured provider and persists what comes back.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Johnxjp/tts-evaluation/internal/audio"
	"github.com/Johnxjp/tts-evaluation/internal/store"
	"github.com/Johnxjp/tts-evaluation/internal/tts"
)

var tracer = otel.Tracer("github.com/Johnxjp/tts-evaluation/internal/pipeline")

type Options struct {
	Text      string
	Providers []tts.Provider
	Store     *store.Store
	// DefaultFormat is substituted when header sniffing on a successful
	// response is inconclusive. Zero value means mp3.
	DefaultFormat audio.Format
	Logger        *slog.Logger
}

// Outcome is one provider's result for a request: an artifact on disk, or
// the failure message explaining its absence. Never both.
type Outcome struct {
	Path   string
	Format audio.Format
	Err    string
}

func (o Outcome) Failed() bool { return o.Err != "" }

// Result reports a completed run. Outcomes is keyed by provider display
// name and has exactly one entry per registered provider regardless of
// completion order.
type Result struct {
	ID        string
	Text      string
	Providers []string
	Outcomes  map[string]Outcome
}

// StageError reports which pipeline stage failed.
type StageError struct {
	Stage   string
	Message string
	Err     error
}

func (e *StageError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Stage, e.Message)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Run validates the prompt, creates the durable request record, then fans
// out one synthesis call per provider. Each provider gets exactly one
// attempt; a provider's failure or timeout becomes its Outcome and never
// aborts the siblings. Persistence failures are fatal and propagate to the
// caller; a request with no durable trace is not useful.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.Text) == "" {
		return nil, &StageError{Stage: "validate", Message: "no text to synthesize"}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	defaultFormat := opts.DefaultFormat
	if defaultFormat == audio.FormatUnknown {
		defaultFormat = audio.FormatMP3
	}

	ctx, span := tracer.Start(ctx, "pipeline.run",
		trace.WithAttributes(attribute.Int("tts.providers", len(opts.Providers))))
	defer span.End()

	settings := make([]tts.Settings, 0, len(opts.Providers))
	names := make([]string, 0, len(opts.Providers))
	for _, p := range opts.Providers {
		st := p.Settings()
		settings = append(settings, st)
		names = append(names, st.Name)
	}

	req, err := opts.Store.CreateRequest(opts.Text, settings)
	if err != nil {
		return nil, &StageError{Stage: "store", Message: "failed to create request record", Err: err}
	}
	logger.Info("request created", "id", req.UUID, "providers", len(opts.Providers))

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		outcomes = make(map[string]Outcome, len(opts.Providers))
		saveErrs []error
	)

	for _, p := range opts.Providers {
		wg.Add(1)
		go func(p tts.Provider) {
			defer wg.Done()
			name := p.Settings().Name
			outcome, saveErr := synthesizeOne(ctx, p, opts.Text, req, opts.Store, defaultFormat, logger)

			mu.Lock()
			defer mu.Unlock()
			outcomes[name] = outcome
			if saveErr != nil {
				saveErrs = append(saveErrs, saveErr)
			}
		}(p)
	}
	wg.Wait()

	if len(saveErrs) > 0 {
		return nil, &StageError{Stage: "store", Message: "failed to persist artifacts", Err: errors.Join(saveErrs...)}
	}

	return &Result{ID: req.UUID, Text: opts.Text, Providers: names, Outcomes: outcomes}, nil
}

// synthesizeOne runs a single provider's attempt. The returned error is a
// persistence failure only; provider failures come back inside the Outcome.
func synthesizeOne(ctx context.Context, p tts.Provider, text string, req *store.Request, st *store.Store, defaultFormat audio.Format, logger *slog.Logger) (Outcome, error) {
	name := p.Settings().Name
	ctx, span := tracer.Start(ctx, "tts.synthesize",
		trace.WithAttributes(attribute.String("tts.provider", name)))
	defer span.End()

	start := time.Now()
	res, err := p.Synthesize(ctx, tts.Request{Text: text})
	if err != nil {
		span.RecordError(err)
		logger.Warn("synthesis failed", "provider", name, "error", err)
		return Outcome{Err: err.Error()}, nil
	}

	format := audio.Detect(res.Data)
	if format == audio.FormatUnknown {
		format = defaultFormat
	}

	path, err := st.SaveArtifact(req, name, format, res.Data)
	if err != nil {
		span.RecordError(err)
		return Outcome{Err: err.Error()}, fmt.Errorf("%s: %w", name, err)
	}

	logger.Info("synthesis complete",
		"provider", name,
		"format", string(format),
		"bytes", len(res.Data),
		"elapsed", time.Since(start).Round(time.Millisecond))
	return Outcome{Path: path, Format: format}, nil
}
