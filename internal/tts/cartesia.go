package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Johnxjp/tts-evaluation/internal/audio"
	"github.com/Johnxjp/tts-evaluation/internal/emotion"
)

const (
	cartesiaEndpoint   = "https://api.cartesia.ai/tts/bytes"
	cartesiaAPIVersion = "2025-04-16"

	cartesiaDefaultModel      = "sonic-3"
	cartesiaDefaultVoiceID    = "c961b81c-a935-4c17-bfb3-ba2239de8c2f" // Kyle
	cartesiaDefaultSampleRate = 44100
	cartesiaBitRate           = 128000
)

type cartesiaRequest struct {
	ModelID      string               `json:"model_id"`
	Transcript   string               `json:"transcript"`
	Voice        cartesiaVoice        `json:"voice"`
	Language     string               `json:"language"`
	OutputFormat cartesiaOutputFormat `json:"output_format"`
}

type cartesiaVoice struct {
	Mode string `json:"mode"`
	ID   string `json:"id"`
}

type cartesiaOutputFormat struct {
	Container  string `json:"container"`
	BitRate    int    `json:"bit_rate"`
	SampleRate int    `json:"sample_rate"`
}

// CartesiaProvider implements Provider using the Cartesia bytes API, which
// returns raw audio in the response body.
type CartesiaProvider struct {
	apiKey     string
	model      string
	endpoint   string
	encoder    elementStyle
	httpClient *http.Client
}

func NewCartesiaProvider(apiKey, model string) *CartesiaProvider {
	if model == "" {
		model = cartesiaDefaultModel
	}
	return &CartesiaProvider{
		apiKey:     apiKey,
		model:      model,
		endpoint:   cartesiaEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *CartesiaProvider) Settings() Settings {
	return Settings{
		Name:       "Cartesia",
		ModelID:    p.model,
		Format:     audio.FormatMP3,
		VoiceID:    cartesiaDefaultVoiceID,
		SampleRate: cartesiaDefaultSampleRate,
	}
}

// SupportsEmotion reports emotion markup support, available on the sonic-3
// model family only.
func (p *CartesiaProvider) SupportsEmotion(model string) bool {
	if model == "" {
		model = p.model
	}
	return strings.HasPrefix(model, "sonic-3")
}

func (p *CartesiaProvider) Synthesize(ctx context.Context, req Request) (AudioResult, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}
	text := emotion.Strip(req.Text)
	if p.SupportsEmotion(model) {
		text = p.encoder.encode(req.Text)
	}

	reqBody := cartesiaRequest{
		ModelID:    model,
		Transcript: text,
		Voice:      cartesiaVoice{Mode: "id", ID: cartesiaDefaultVoiceID},
		Language:   "en",
		OutputFormat: cartesiaOutputFormat{
			Container:  audio.FormatMP3.Ext(),
			BitRate:    cartesiaBitRate,
			SampleRate: cartesiaDefaultSampleRate,
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return AudioResult{}, fmt.Errorf("marshal Cartesia request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return AudioResult{}, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Cartesia-Version", cartesiaAPIVersion)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := p.httpClient.Do(httpReq)
	if err != nil {
		return AudioResult{}, fmt.Errorf("send Cartesia request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(res.Body)
		return AudioResult{}, &APIError{Provider: "Cartesia", StatusCode: res.StatusCode, Body: string(errBody)}
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return AudioResult{}, fmt.Errorf("read Cartesia response: %w", err)
	}

	return AudioResult{Data: data, Format: audio.FormatMP3}, nil
}
