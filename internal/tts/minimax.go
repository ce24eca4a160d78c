package tts

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultMiniMaxURL   = "wss://api.minimaxi.com/ws/v1/t2a_v2"
	defaultMiniMaxModel = "speech-2.6-hd"

	// The remote emits MP3 at a fixed 128 kbps, so playback duration can be
	// estimated from byte count alone, without decoding the audio.
	mp3BytesPerSecond = 128 * 1024 / 8

	// Upper bound on waiting for the final frame when the caller's context
	// carries no deadline of its own.
	defaultSessionTimeout = 30 * time.Second
)

// MiniMaxClient synthesizes speech over the MiniMax t2a websocket protocol.
// One Synthesize call owns one connection for its whole lifetime and releases
// it on every exit path.
//
// The protocol is a four-state handshake:
//
//	IDLE --dial--> CONNECTED --task_start--> STARTED --text, audio frames--> DONE
type MiniMaxClient struct {
	APIKey string
	URL    string
	Model  string
	Speed  float64
	Dialer *websocket.Dialer
}

// NewMiniMaxClient builds a client. Empty url/model get the service defaults.
func NewMiniMaxClient(apiKey, url, model string) *MiniMaxClient {
	if url == "" {
		url = defaultMiniMaxURL
	}
	if model == "" {
		model = defaultMiniMaxModel
	}
	return &MiniMaxClient{
		APIKey: apiKey,
		URL:    url,
		Model:  model,
		Speed:  1.0,
		Dialer: &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
	}
}

// wsFrame is every JSON frame the remote sends. Audio chunks arrive
// hex-encoded under data.audio; the last frame is marked is_final.
type wsFrame struct {
	Event   string `json:"event"`
	IsFinal bool   `json:"is_final"`
	Data    struct {
		Audio string `json:"audio"`
	} `json:"data"`
}

type voiceSetting struct {
	VoiceID string  `json:"voice_id"`
	Speed   float64 `json:"speed"`
	Vol     float64 `json:"vol"`
	Pitch   int     `json:"pitch"`
}

type audioSetting struct {
	SampleRate int    `json:"sample_rate"`
	Bitrate    int    `json:"bitrate"`
	Format     string `json:"format"`
	Channel    int    `json:"channel"`
}

type taskStartPayload struct {
	Event        string       `json:"event"`
	Model        string       `json:"model"`
	VoiceSetting voiceSetting `json:"voice_setting"`
	AudioSetting audioSetting `json:"audio_setting"`
}

type taskTextPayload struct {
	Event string `json:"event"`
	Text  string `json:"text,omitempty"`
}

// Synthesize runs one full protocol session for the given text and voice.
// Failures come back inside the Result, never as a panic or error value.
func (c *MiniMaxClient) Synthesize(ctx context.Context, text, voiceID string) Result {
	if strings.TrimSpace(text) == "" {
		return failure(ErrEmptyInput)
	}

	dialer := c.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+c.APIKey)
	conn, resp, err := dialer.DialContext(ctx, c.URL, headers)
	if err != nil {
		if resp != nil {
			return failure(fmt.Errorf("%w: dial status=%d: %v", ErrHandshakeFailed, resp.StatusCode, err))
		}
		return failure(fmt.Errorf("%w: dial: %v", ErrHandshakeFailed, err))
	}
	defer func() { _ = conn.Close() }()

	deadline := time.Now().Add(defaultSessionTimeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetReadDeadline(deadline)
	_ = conn.SetWriteDeadline(deadline)

	// CONNECTED: the remote must acknowledge before anything else.
	var frame wsFrame
	if err := conn.ReadJSON(&frame); err != nil {
		return failure(fmt.Errorf("%w: read ack: %v", ErrHandshakeFailed, err))
	}
	if frame.Event != "connected_success" {
		return failure(fmt.Errorf("%w: unexpected event %q", ErrHandshakeFailed, frame.Event))
	}

	// STARTED: send voice parameters, await task_started.
	start := taskStartPayload{
		Event: "task_start",
		Model: c.Model,
		VoiceSetting: voiceSetting{
			VoiceID: voiceID,
			Speed:   c.Speed,
			Vol:     1.0,
			Pitch:   0,
		},
		AudioSetting: audioSetting{
			SampleRate: 32000,
			Bitrate:    128000,
			Format:     "mp3",
			Channel:    1,
		},
	}
	if err := conn.WriteJSON(start); err != nil {
		return failure(fmt.Errorf("%w: send task_start: %v", ErrTaskStartFailed, err))
	}
	if err := conn.ReadJSON(&frame); err != nil {
		return failure(fmt.Errorf("%w: read task_started: %v", ErrTaskStartFailed, err))
	}
	if frame.Event != "task_started" {
		return failure(fmt.Errorf("%w: unexpected event %q", ErrTaskStartFailed, frame.Event))
	}

	// Feed the text, then accumulate audio until the final frame.
	if err := conn.WriteJSON(taskTextPayload{Event: "task_continue", Text: text}); err != nil {
		return failure(fmt.Errorf("send text: %v", err))
	}

	var audio []byte
	for {
		// fresh frame each read: a final frame without a data.audio key must
		// not inherit the previous chunk's hex
		var af wsFrame
		if err := conn.ReadJSON(&af); err != nil {
			return failure(fmt.Errorf("read audio frame: %v", err))
		}
		if af.Data.Audio != "" {
			chunk, derr := hex.DecodeString(af.Data.Audio)
			if derr != nil {
				return failure(fmt.Errorf("decode audio chunk: %v", derr))
			}
			audio = append(audio, chunk...)
		}
		if af.IsFinal {
			break
		}
	}

	// Finish notice is best-effort; the deferred close is what actually
	// releases the connection.
	if err := conn.WriteJSON(taskTextPayload{Event: "task_finish"}); err != nil {
		log.Printf("tts: task_finish write failed: %v", err)
	}

	var durationMS float64
	if len(audio) > 0 {
		durationMS = float64(len(audio)) / mp3BytesPerSecond * 1000
	}
	return Result{
		Success:     true,
		AudioBase64: base64.StdEncoding.EncodeToString(audio),
		DurationMS:  durationMS,
	}
}
