package tts

import (
	"bytes"
	"context"
	"encoding/base64"
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
	inworldEndpoint = "https://api.inworld.ai/tts/v1/voice"

	inworldDefaultModel      = "inworld-tts-1"
	inworldModelFamily       = "inworld-tts-1"
	inworldDefaultVoiceID    = "Alex"
	inworldDefaultSampleRate = 44100
)

type inworldRequest struct {
	Text        string             `json:"text"`
	VoiceID     string             `json:"voiceId"`
	ModelID     string             `json:"modelId"`
	AudioConfig inworldAudioConfig `json:"audioConfig"`
}

type inworldAudioConfig struct {
	AudioEncoding   string `json:"audioEncoding"`
	SampleRateHertz string `json:"sampleRateHertz"`
}

type inworldResponse struct {
	AudioContent string `json:"audioContent"` // base64-encoded MP3
}

// InworldProvider implements Provider using the Inworld AI voice API,
// which nests base64 audio inside a JSON envelope.
type InworldProvider struct {
	apiKey     string
	model      string
	endpoint   string
	encoder    spanStyle
	httpClient *http.Client
}

func NewInworldProvider(apiKey, model string) *InworldProvider {
	if model == "" {
		model = inworldDefaultModel
	}
	return &InworldProvider{
		apiKey:     apiKey,
		model:      model,
		endpoint:   inworldEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *InworldProvider) Settings() Settings {
	return Settings{
		Name:       "Inworld AI",
		ModelID:    p.model,
		Format:     audio.FormatMP3,
		VoiceID:    inworldDefaultVoiceID,
		SampleRate: inworldDefaultSampleRate,
	}
}

// SupportsEmotion reports emotion markup support; the whole inworld-tts-1
// family accepts prosody spans.
func (p *InworldProvider) SupportsEmotion(model string) bool {
	if model == "" {
		model = p.model
	}
	return strings.HasPrefix(model, inworldModelFamily)
}

func (p *InworldProvider) Synthesize(ctx context.Context, req Request) (AudioResult, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}
	text := emotion.Strip(req.Text)
	if p.SupportsEmotion(model) {
		text = p.encoder.encode(req.Text)
	}

	reqBody := inworldRequest{
		Text:    text,
		VoiceID: inworldDefaultVoiceID,
		ModelID: model,
		AudioConfig: inworldAudioConfig{
			AudioEncoding:   "MP3",
			SampleRateHertz: fmt.Sprintf("%d", inworldDefaultSampleRate),
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return AudioResult{}, fmt.Errorf("marshal Inworld request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return AudioResult{}, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Basic "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := p.httpClient.Do(httpReq)
	if err != nil {
		return AudioResult{}, fmt.Errorf("send Inworld request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(res.Body)
		return AudioResult{}, &APIError{Provider: "Inworld AI", StatusCode: res.StatusCode, Body: string(errBody)}
	}

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return AudioResult{}, fmt.Errorf("read Inworld response: %w", err)
	}

	var resp inworldResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return AudioResult{}, fmt.Errorf("parse Inworld response: %w", err)
	}
	if resp.AudioContent == "" {
		return AudioResult{}, fmt.Errorf("Inworld response contained no audio content")
	}

	data, err := base64.StdEncoding.DecodeString(resp.AudioContent)
	if err != nil {
		return AudioResult{}, fmt.Errorf("decode Inworld audio base64: %w", err)
	}

	return AudioResult{Data: data, Format: audio.FormatMP3}, nil
}
