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
	speechifyEndpoint = "https://api.sws.speechify.com/v1/audio/speech"

	speechifyDefaultModel      = "simba-english"
	speechifyDefaultVoiceID    = "oliver"
	speechifyDefaultSampleRate = 24000
)

type speechifyRequest struct {
	Input       string `json:"input"`
	VoiceID     string `json:"voice_id"`
	AudioFormat string `json:"audio_format"`
	Model       string `json:"model"`
}

type speechifyResponse struct {
	AudioData string `json:"audio_data"` // base64-encoded MP3
}

// SpeechifyProvider implements Provider using the Speechify speech API.
// Simba has no emotion channel at all, so every tag is stripped before
// the text goes out.
type SpeechifyProvider struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

func NewSpeechifyProvider(apiKey string) *SpeechifyProvider {
	return &SpeechifyProvider{
		apiKey:     apiKey,
		endpoint:   speechifyEndpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (p *SpeechifyProvider) Settings() Settings {
	return Settings{
		Name:       "Speechify",
		ModelID:    speechifyDefaultModel,
		Format:     audio.FormatMP3,
		VoiceID:    speechifyDefaultVoiceID,
		SampleRate: speechifyDefaultSampleRate,
	}
}

func (p *SpeechifyProvider) SupportsEmotion(string) bool { return false }

func (p *SpeechifyProvider) Synthesize(ctx context.Context, req Request) (AudioResult, error) {
	reqBody := speechifyRequest{
		Input:       emotion.Strip(req.Text),
		VoiceID:     speechifyDefaultVoiceID,
		AudioFormat: audio.FormatMP3.Ext(),
		Model:       speechifyDefaultModel,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return AudioResult{}, fmt.Errorf("marshal Speechify request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return AudioResult{}, fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	res, err := p.httpClient.Do(httpReq)
	if err != nil {
		return AudioResult{}, fmt.Errorf("send Speechify request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		errBody, _ := io.ReadAll(res.Body)
		return AudioResult{}, &APIError{Provider: "Speechify", StatusCode: res.StatusCode, Body: string(errBody)}
	}

	respBody, err := io.ReadAll(res.Body)
	if err != nil {
		return AudioResult{}, fmt.Errorf("read Speechify response: %w", err)
	}

	var resp speechifyResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return AudioResult{}, fmt.Errorf("parse Speechify response: %w", err)
	}
	if resp.AudioData == "" {
		return AudioResult{}, fmt.Errorf("Speechify response contained no audio data")
	}

	data, err := base64.StdEncoding.DecodeString(resp.AudioData)
	if err != nil {
		return AudioResult{}, fmt.Errorf("decode Speechify audio base64: %w", err)
	}

	return AudioResult{Data: data, Format: audio.FormatMP3}, nil
}
