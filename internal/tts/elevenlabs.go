package tts

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ElevenLabsClient synthesizes speech over the ElevenLabs HTTP streaming
// endpoint and collects the stream into one clip. Output is 48 kHz PCM, so
// duration shares the estimate used by the Deepgram backend.
type ElevenLabsClient struct {
	APIKey     string
	HTTPClient *http.Client
	BaseURL    string
}

func NewElevenLabsClient(apiKey string) *ElevenLabsClient {
	return &ElevenLabsClient{
		APIKey:     apiKey,
		HTTPClient: &http.Client{},
		BaseURL:    "https://api.elevenlabs.io",
	}
}

func (e *ElevenLabsClient) Synthesize(ctx context.Context, text, voiceID string) Result {
	if strings.TrimSpace(text) == "" {
		return failure(ErrEmptyInput)
	}
	if e.APIKey == "" || voiceID == "" {
		return failure(fmt.Errorf("%w: api key or voice id missing", ErrHandshakeFailed))
	}

	q := url.Values{}
	q.Set("model_id", "eleven_flash_v2_5")
	q.Set("output_format", "pcm_48000")
	endpoint := strings.TrimRight(e.BaseURL, "/") + "/v1/text-to-speech/" + url.PathEscape(voiceID) + "/stream?" + q.Encode()

	body := map[string]any{
		"model_id": "eleven_flash_v2_5",
		"text":     text,
		"voice_settings": map[string]any{
			"stability":         0.4,
			"similarity_boost":  0.7,
			"style":             0.0,
			"use_speaker_boost": true,
		},
	}
	buf, _ := json.Marshal(body)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return failure(fmt.Errorf("%w: %v", ErrHandshakeFailed, err))
	}
	req.Header.Set("xi-api-key", e.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return failure(fmt.Errorf("%w: %v", ErrHandshakeFailed, err))
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return failure(fmt.Errorf("%w: status=%d body=%s", ErrTaskStartFailed, resp.StatusCode, string(b)))
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(fmt.Errorf("read stream: %v", err))
	}
	return Result{
		Success:     true,
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
		DurationMS:  float64(len(audio)) / pcmBytesPerSecond * 1000,
	}
}
