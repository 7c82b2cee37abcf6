package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Johnxjp/tts-evaluation/internal/audio"
	"github.com/Johnxjp/tts-evaluation/internal/emotion"
)

const (
	humeEndpoint = "https://api.hume.ai/v0/tts"

	humeDefaultVersion    = "2" // Octave 2
	humeEmotionVersion    = "2"
	humeDefaultVoiceID    = "445d65ed-a87f-4140-9820-daf6d4f0a200" // Booming American Narrator
	humeDefaultSampleRate = 48000
)

type humeRequest struct {
	Utterances []humeUtterance `json:"utterances"`
	Format     humeFormat      `json:"format"`
	Version    string          `json:"version"`
}

// humeUtterance selects either a stock voice by ID or a free-text voice
// description; the API rejects requests carrying both.
type humeUtterance struct {
	Text        string     `json:"text"`
	Voice       *humeVoice `json:"voice,omitempty"`
	Description string     `json:"description,omitempty"`
}

type humeVoice struct {
	ID string `json:"id"`
}

type humeFormat struct {
	Type string `json:"type"`
}

type humeResponse struct {
	Generations []humeGeneration `json:"generations"`
}

type humeGeneration struct {
	Audio string `json:"audio"` // base64-encoded MP3
}

// HumeProvider implements Provider using the Hume TTS API. Octave models
// take no inline markup; emotion arrives as a holistic voice description
// built from the authored labels.
type HumeProvider struct {
	apiKey     string
	model      string
	endpoint   string
	encoder    describeStyle
	httpClient *http.Client
}

func NewHumeProvider(apiKey, model string) *HumeProvider {
	if model == "" {
		model = humeDefaultVersion
	}
	return &HumeProvider{
		apiKey:     apiKey,
		model:      model,
		endpoint:   humeEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *HumeProvider) Settings() Settings {
	return Settings{
		Name:       "Hume",
		ModelID:    p.model,
		Format:     audio.FormatMP3,
		VoiceID:    humeDefaultVoiceID,
		SampleRate: humeDefaultSampleRate,
	}
}

// SupportsEmotion reports emotion support, available on Octave 2 only;
// version 1 accepts stock voices without a description.
func (p *HumeProvider) SupportsEmotion(model string) bool {
	if model == "" {
		model = p.model
	}
	return model == humeEmotionVersion
}

func (p *HumeProvider) Synthesize(ctx context.Context, req Request) (AudioResult, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}

	utterance := humeUtterance{
		Text:  emotion.Strip(req.Text),
		Voice: &humeVoice{ID: humeDefaultVoiceID},
	}
	if p.SupportsEmotion(model) {
		if plain, description := p.encoder.encode(req.Text); description != "" {
			utterance = humeUtterance{Text: plain, Description: description}
		}
	}

	reqBody := humeRequest{
		Utterances: []humeUtterance{utterance},
		Format:     humeFormat{Type: audio.FormatMP3.Ext()},
		Version:    model,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return AudioResult{}, fmt.Errorf("marshal Hume request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return AudioResult{}, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("X-Hume-Api-Key", p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := p.httpClient.Do(httpReq)
	if err != nil {
		return AudioResult{}, fmt.Errorf("send Hume request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(res.Body)
		return AudioResult{}, &APIError{Provider: "Hume", StatusCode: res.StatusCode, Body: string(errBody)}
	}

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return AudioResult{}, fmt.Errorf("read Hume response: %w", err)
	}

	var resp humeResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return AudioResult{}, fmt.Errorf("parse Hume response: %w", err)
	}
	if len(resp.Generations) == 0 || resp.Generations[0].Audio == "" {
		return AudioResult{}, fmt.Errorf("Hume response contained no audio data")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Generations[0].Audio)
	if err != nil {
		return AudioResult{}, fmt.Errorf("decode Hume audio base64: %w", err)
	}

	return AudioResult{Data: data, Format: audio.FormatMP3}, nil
}
