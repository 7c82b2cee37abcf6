// Package tts wraps five remote text-to-speech backends behind one
// capability interface so the rest of the tool can fan a request out
// without knowing any backend's wire format.
package tts

import (
	"context"
	"fmt"

	"github.com/Johnxjp/tts-evaluation/internal/audio"
)

// Settings is the capability snapshot of one configured adapter. It is
// fixed at construction and serialized verbatim into request records.
type Settings struct {
	Name       string       `json:"name"`
	ModelID    string       `json:"model_id"`
	Format     audio.Format `json:"format"`
	VoiceID    string       `json:"voice_id"`
	SampleRate int          `json:"sample_rate"`
}

// Request is the immutable input to one synthesize call. Model, when set,
// overrides the adapter's configured model for this call only.
type Request struct {
	Text  string
	Model string
}

// AudioResult is the output of a successful synthesis call.
type AudioResult struct {
	Data   []byte
	Format audio.Format
}

// Provider is the abstraction over one remote TTS backend.
//
// Synthesize performs exactly one outbound HTTP call with the adapter's
// API key and fixed timeout. Any failure (transport error, non-2xx
// status, undecodable or empty response) comes back as an error value;
// implementations never panic past this boundary, which the orchestrator
// relies on for failure isolation.
type Provider interface {
	Settings() Settings
	// SupportsEmotion reports whether the given model accepts emotion
	// markup. An empty model means the adapter's configured one. The
	// answer is a pure function of the model identifier.
	SupportsEmotion(model string) bool
	Synthesize(ctx context.Context, req Request) (AudioResult, error)
}

// APIError is a non-2xx response from a backend, carrying whatever status
// and body the backend returned.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}
