package tts

import (
	"fmt"
	"strings"
)

// ProviderConfig carries one backend's credential and model selection.
// An empty Model selects the backend's default.
type ProviderConfig struct {
	APIKey string
	Model  string
}

// Config names every supported backend explicitly; nothing here is read
// from the environment. A backend with an empty APIKey is simply absent
// from the registry, which is how optional credentials are expressed.
type Config struct {
	Cartesia   ProviderConfig
	Inworld    ProviderConfig
	ElevenLabs ProviderConfig
	Hume       ProviderConfig
	Speechify  ProviderConfig
}

// NewRegistry constructs one adapter per configured backend, in a fixed
// display order. Construction is idempotent: the same Config always yields
// the same adapters with identical settings.
func NewRegistry(cfg Config) []Provider {
	var providers []Provider
	if cfg.Cartesia.APIKey != "" {
		providers = append(providers, NewCartesiaProvider(cfg.Cartesia.APIKey, cfg.Cartesia.Model))
	}
	if cfg.Inworld.APIKey != "" {
		providers = append(providers, NewInworldProvider(cfg.Inworld.APIKey, cfg.Inworld.Model))
	}
	if cfg.ElevenLabs.APIKey != "" {
		providers = append(providers, NewElevenLabsProvider(cfg.ElevenLabs.APIKey, cfg.ElevenLabs.Model))
	}
	if cfg.Hume.APIKey != "" {
		providers = append(providers, NewHumeProvider(cfg.Hume.APIKey, cfg.Hume.Model))
	}
	if cfg.Speechify.APIKey != "" {
		providers = append(providers, NewSpeechifyProvider(cfg.Speechify.APIKey))
	}
	return providers
}

// modelOptions lists the selectable models per backend, default first.
var modelOptions = map[string][]string{
	"Cartesia":   {"sonic-3", "sonic-2"},
	"Inworld AI": {"inworld-tts-1", "inworld-tts-1-max"},
	"ElevenLabs": {"eleven_v3", "eleven_flash_v2_5"},
	"Hume":       {"2", "1"},
	"Speechify":  {"simba-english"},
}

// ProviderNames returns every backend display name in registry order.
func ProviderNames() []string {
	return []string{"Cartesia", "Inworld AI", "ElevenLabs", "Hume", "Speechify"}
}

// ModelOptions returns the selectable model IDs for a backend display name,
// default first. Unknown names return nil.
func ModelOptions(name string) []string { return modelOptions[name] }

// ValidateModel rejects model IDs that a backend does not offer. An empty
// model is always valid and selects the default.
func ValidateModel(name, model string) error {
	if model == "" {
		return nil
	}
	options, ok := modelOptions[name]
	if !ok {
		return fmt.Errorf("unknown TTS provider %q", name)
	}
	for _, m := range options {
		if m == model {
			return nil
		}
	}
	return fmt.Errorf("invalid model %q for %s: must be one of %s", model, name, strings.Join(options, ", "))
}
