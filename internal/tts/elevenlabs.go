package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/Johnxjp/tts-evaluation/internal/audio"
	"github.com/Johnxjp/tts-evaluation/internal/emotion"
)

const (
	elevenLabsBaseURL = "https://api.elevenlabs.io/v1/text-to-speech"

	elevenLabsDefaultModel      = "eleven_v3"
	elevenLabsEmotionModel      = "eleven_v3"
	elevenLabsDefaultVoiceID    = "1SM7GgM6IMuvQlz2BwM3" // Mark
	elevenLabsDefaultSampleRate = 44100
	elevenLabsBitRate           = 128
)

type elevenLabsRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"model_id"`
}

// ElevenLabsProvider implements Provider using the ElevenLabs TTS API,
// which returns raw audio in the response body.
type ElevenLabsProvider struct {
	apiKey     string
	model      string
	baseURL    string
	encoder    bracketStyle
	httpClient *http.Client
}

func NewElevenLabsProvider(apiKey, model string) *ElevenLabsProvider {
	if model == "" {
		model = elevenLabsDefaultModel
	}
	return &ElevenLabsProvider{
		apiKey:  apiKey,
		model:   model,
		baseURL: elevenLabsBaseURL,
		// ElevenLabs calls can take noticeably longer than the other
		// backends, hence the larger timeout.
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

func (p *ElevenLabsProvider) Settings() Settings {
	return Settings{
		Name:       "ElevenLabs",
		ModelID:    p.model,
		Format:     audio.FormatMP3,
		VoiceID:    elevenLabsDefaultVoiceID,
		SampleRate: elevenLabsDefaultSampleRate,
	}
}

// SupportsEmotion reports emotion markup support, available on eleven_v3
// only; the flash models ignore the bracket syntax.
func (p *ElevenLabsProvider) SupportsEmotion(model string) bool {
	if model == "" {
		model = p.model
	}
	return model == elevenLabsEmotionModel
}

func (p *ElevenLabsProvider) Synthesize(ctx context.Context, req Request) (AudioResult, error) {
	model := p.model
	if req.Model != "" {
		model = req.Model
	}
	text := emotion.Strip(req.Text)
	if p.SupportsEmotion(model) {
		text = p.encoder.encode(req.Text)
	}

	bodyBytes, err := json.Marshal(elevenLabsRequest{Text: text, ModelID: model})
	if err != nil {
		return AudioResult{}, fmt.Errorf("marshal ElevenLabs request: %w", err)
	}

	outputFormat := fmt.Sprintf("%s_%d_%d", audio.FormatMP3.Ext(), elevenLabsDefaultSampleRate, elevenLabsBitRate)
	url := fmt.Sprintf("%s/%s?output_format=%s", p.baseURL, elevenLabsDefaultVoiceID, outputFormat)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(bodyBytes))
	if err != nil {
		return AudioResult{}, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("xi-api-key", p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := p.httpClient.Do(httpReq)
	if err != nil {
		return AudioResult{}, fmt.Errorf("send ElevenLabs request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(res.Body)
		return AudioResult{}, &APIError{Provider: "ElevenLabs", StatusCode: res.StatusCode, Body: string(errBody)}
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return AudioResult{}, fmt.Errorf("read ElevenLabs response: %w", err)
	}

	return AudioResult{Data: data, Format: audio.FormatMP3}, nil
}
