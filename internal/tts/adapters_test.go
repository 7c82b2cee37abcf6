package tts

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Johnxjp/tts-evaluation/internal/audio"
)

func TestCartesiaSynthesize(t *testing.T) {
	var got cartesiaRequest
	var gotAuth, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotVersion = r.Header.Get("Cartesia-Version")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("mp3 bytes"))
	}))
	defer srv.Close()

	p := NewCartesiaProvider("key-123", "")
	p.endpoint = srv.URL

	res, err := p.Synthesize(context.Background(), Request{Text: "Hi <tag>angry</tag>there"})
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3 bytes"), res.Data)
	assert.Equal(t, audio.FormatMP3, res.Format)

	assert.Equal(t, "Bearer key-123", gotAuth)
	assert.Equal(t, cartesiaAPIVersion, gotVersion)
	assert.Equal(t, "sonic-3", got.ModelID)
	assert.Equal(t, `Hi <emotion value="angry" />there`, got.Transcript)
	assert.Equal(t, cartesiaVoice{Mode: "id", ID: cartesiaDefaultVoiceID}, got.Voice)
}

func TestCartesiaStripsForNonEmotingModel(t *testing.T) {
	var got cartesiaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	p := NewCartesiaProvider("key", "sonic-3")
	p.endpoint = srv.URL

	_, err := p.Synthesize(context.Background(), Request{
		Text:  "Hello <tag>angry</tag> world",
		Model: "sonic-2",
	})
	require.NoError(t, err)
	assert.Equal(t, "sonic-2", got.ModelID)
	assert.Equal(t, "Hello world", got.Transcript)
}

func TestCartesiaAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	p := NewCartesiaProvider("bad", "")
	p.endpoint = srv.URL

	_, err := p.Synthesize(context.Background(), Request{Text: "hello"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Cartesia", apiErr.Provider)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "invalid api key")
}

func TestElevenLabsSynthesize(t *testing.T) {
	var got elevenLabsRequest
	var gotKey, gotPath, gotFormat string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("xi-api-key")
		gotPath = r.URL.Path
		gotFormat = r.URL.Query().Get("output_format")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("raw audio"))
	}))
	defer srv.Close()

	p := NewElevenLabsProvider("xi-key", "")
	p.baseURL = srv.URL

	res, err := p.Synthesize(context.Background(), Request{Text: "I'm so <tag>excited</tag> today"})
	require.NoError(t, err)
	assert.Equal(t, []byte("raw audio"), res.Data)

	assert.Equal(t, "xi-key", gotKey)
	assert.Equal(t, "/"+elevenLabsDefaultVoiceID, gotPath)
	assert.Equal(t, "mp3_44100_128", gotFormat)
	assert.Equal(t, "eleven_v3", got.ModelID)
	assert.Equal(t, "I'm so [excited] today", got.Text)
}

func TestElevenLabsFlashModelStrips(t *testing.T) {
	var got elevenLabsRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte("ok"))
	}))
	defer srv.Close()

	p := NewElevenLabsProvider("xi-key", "eleven_flash_v2_5")
	p.baseURL = srv.URL

	_, err := p.Synthesize(context.Background(), Request{Text: "I'm so <tag>excited</tag> today"})
	require.NoError(t, err)
	assert.Equal(t, "I'm so today", got.Text)
}

func TestInworldSynthesize(t *testing.T) {
	var got inworldRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(inworldResponse{
			AudioContent: base64.StdEncoding.EncodeToString([]byte("inworld mp3")),
		})
	}))
	defer srv.Close()

	p := NewInworldProvider("basic-creds", "")
	p.endpoint = srv.URL

	res, err := p.Synthesize(context.Background(), Request{Text: "<tag>calm</tag>Take a breath"})
	require.NoError(t, err)
	assert.Equal(t, []byte("inworld mp3"), res.Data)

	assert.Equal(t, "Basic basic-creds", gotAuth)
	assert.Equal(t, `<prosody emotion="calm">Take a breath</prosody>`, got.Text)
	assert.Equal(t, "Alex", got.VoiceID)
	assert.Equal(t, "inworld-tts-1", got.ModelID)
	assert.Equal(t, "MP3", got.AudioConfig.AudioEncoding)
	assert.Equal(t, "44100", got.AudioConfig.SampleRateHertz)
}

func TestInworldEmptyAudioContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(inworldResponse{})
	}))
	defer srv.Close()

	p := NewInworldProvider("creds", "")
	p.endpoint = srv.URL

	_, err := p.Synthesize(context.Background(), Request{Text: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no audio content")
}

func TestHumeSynthesizeWithDescription(t *testing.T) {
	var got humeRequest
	var gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("X-Hume-Api-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(humeResponse{Generations: []humeGeneration{
			{Audio: base64.StdEncoding.EncodeToString([]byte("hume mp3"))},
		}})
	}))
	defer srv.Close()

	p := NewHumeProvider("hume-key", "")
	p.endpoint = srv.URL

	res, err := p.Synthesize(context.Background(), Request{Text: "Oh no <tag>scared</tag>what was that"})
	require.NoError(t, err)
	assert.Equal(t, []byte("hume mp3"), res.Data)

	assert.Equal(t, "hume-key", gotKey)
	require.Len(t, got.Utterances, 1)
	assert.Equal(t, "Oh no what was that", got.Utterances[0].Text)
	assert.Equal(t, "scared tone of voice", got.Utterances[0].Description)
	assert.Nil(t, got.Utterances[0].Voice)
	assert.Equal(t, "2", got.Version)
}

func TestHumeVersionOneUsesStockVoice(t *testing.T) {
	var got humeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(humeResponse{Generations: []humeGeneration{
			{Audio: base64.StdEncoding.EncodeToString([]byte("x"))},
		}})
	}))
	defer srv.Close()

	p := NewHumeProvider("key", "1")
	p.endpoint = srv.URL

	_, err := p.Synthesize(context.Background(), Request{Text: "Oh no <tag>scared</tag>what was that"})
	require.NoError(t, err)
	require.Len(t, got.Utterances, 1)
	assert.Equal(t, "Oh no what was that", got.Utterances[0].Text)
	assert.Empty(t, got.Utterances[0].Description)
	require.NotNil(t, got.Utterances[0].Voice)
	assert.Equal(t, humeDefaultVoiceID, got.Utterances[0].Voice.ID)
}

func TestHumeUnlabeledTextKeepsStockVoice(t *testing.T) {
	var got humeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(humeResponse{Generations: []humeGeneration{
			{Audio: base64.StdEncoding.EncodeToString([]byte("x"))},
		}})
	}))
	defer srv.Close()

	p := NewHumeProvider("key", "")
	p.endpoint = srv.URL

	_, err := p.Synthesize(context.Background(), Request{Text: "just plain text"})
	require.NoError(t, err)
	require.Len(t, got.Utterances, 1)
	assert.Empty(t, got.Utterances[0].Description)
	require.NotNil(t, got.Utterances[0].Voice)
}

func TestSpeechifySynthesize(t *testing.T) {
	var got speechifyRequest
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		json.NewEncoder(w).Encode(speechifyResponse{
			AudioData: base64.StdEncoding.EncodeToString([]byte("speechify mp3")),
		})
	}))
	defer srv.Close()

	p := NewSpeechifyProvider("sp-key")
	p.endpoint = srv.URL

	res, err := p.Synthesize(context.Background(), Request{Text: "Hello <tag>happy</tag> world"})
	require.NoError(t, err)
	assert.Equal(t, []byte("speechify mp3"), res.Data)

	assert.Equal(t, "Bearer sp-key", gotAuth)
	assert.Equal(t, "Hello world", got.Input)
	assert.Equal(t, "oliver", got.VoiceID)
	assert.Equal(t, "simba-english", got.Model)
}

func TestSupportsEmotionGating(t *testing.T) {
	cartesia := NewCartesiaProvider("k", "")
	assert.True(t, cartesia.SupportsEmotion(""))
	assert.True(t, cartesia.SupportsEmotion("sonic-3"))
	assert.False(t, cartesia.SupportsEmotion("sonic-2"))

	inworld := NewInworldProvider("k", "")
	assert.True(t, inworld.SupportsEmotion("inworld-tts-1"))
	assert.True(t, inworld.SupportsEmotion("inworld-tts-1-max"))

	eleven := NewElevenLabsProvider("k", "")
	assert.True(t, eleven.SupportsEmotion("eleven_v3"))
	assert.False(t, eleven.SupportsEmotion("eleven_flash_v2_5"))

	hume := NewHumeProvider("k", "")
	assert.True(t, hume.SupportsEmotion("2"))
	assert.False(t, hume.SupportsEmotion("1"))

	speechify := NewSpeechifyProvider("k")
	assert.False(t, speechify.SupportsEmotion(""))
	assert.False(t, speechify.SupportsEmotion("simba-english"))
}
