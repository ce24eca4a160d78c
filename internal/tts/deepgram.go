package tts

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	msginterfaces "github.com/deepgram/deepgram-go-sdk/pkg/api/speak/v1/websocket/interfaces"
	clientinterfaces "github.com/deepgram/deepgram-go-sdk/pkg/client/interfaces/v1"
	"github.com/deepgram/deepgram-go-sdk/pkg/client/speak"
)

// linear16 mono at 48 kHz
const pcmBytesPerSecond = 48000 * 2

// DeepgramClient is the alternate Synthesizer backed by the Deepgram speak
// websocket API. The voice ID maps to a Deepgram voice model (for example
// "aura-2-thalia-en"); an empty voice falls back to the configured default.
type DeepgramClient struct {
	apiKey     string
	model      string
	sampleRate int
	encoding   string
}

func NewDeepgramClient(apiKey, model string) *DeepgramClient {
	if model == "" {
		model = "aura-2-thalia-en"
	}
	return &DeepgramClient{apiKey: apiKey, model: model, sampleRate: 48000, encoding: "linear16"}
}

// Synthesize collects the streamed PCM into one clip. Duration is estimated
// from the accumulated byte count, not decoded from the audio.
func (d *DeepgramClient) Synthesize(ctx context.Context, text, voiceID string) Result {
	if strings.TrimSpace(text) == "" {
		return failure(ErrEmptyInput)
	}
	if d.apiKey == "" {
		return failure(fmt.Errorf("%w: api key missing", ErrHandshakeFailed))
	}

	model := d.model
	if voiceID != "" {
		model = voiceID
	}
	options := &clientinterfaces.WSSpeakOptions{
		Model:      model,
		Encoding:   d.encoding,
		SampleRate: d.sampleRate,
	}

	var (
		mu           sync.Mutex
		audio        []byte
		lastRecvUnix int64
		seenAudio    int32
	)
	cb := &collectCallback{onBinary: func(data []byte) error {
		if len(data) == 0 {
			return nil
		}
		atomic.StoreInt64(&lastRecvUnix, time.Now().UnixNano())
		atomic.StoreInt32(&seenAudio, 1)
		mu.Lock()
		audio = append(audio, data...)
		mu.Unlock()
		return nil
	}}

	dg, err := speak.NewWSUsingCallback(ctx, d.apiKey, &clientinterfaces.ClientOptions{}, options, cb)
	if err != nil {
		return failure(fmt.Errorf("%w: create ws client: %v", ErrHandshakeFailed, err))
	}

	stopped := false
	stopClient := func() {
		if !stopped {
			stopped = true
			dg.Stop()
		}
	}
	defer stopClient()

	if ok := dg.Connect(); !ok {
		return failure(fmt.Errorf("%w: connect failed", ErrHandshakeFailed))
	}
	if err := dg.SpeakWithText(text); err != nil {
		return failure(fmt.Errorf("%w: speak text: %v", ErrTaskStartFailed, err))
	}
	if err := dg.Flush(); err != nil {
		log.Printf("tts: deepgram flush error: %v", err)
	}

	// The speak stream has no explicit final frame; treat a short idle window
	// after the first audio as completion, bounded by an overall deadline.
	idleWindow := 400 * time.Millisecond
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.Now().Add(defaultSessionTimeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
		deadline = dl
	}
	for {
		select {
		case <-ctx.Done():
			return failure(ctx.Err())
		case <-ticker.C:
			if atomic.LoadInt32(&seenAudio) == 1 {
				last := time.Unix(0, atomic.LoadInt64(&lastRecvUnix))
				if time.Since(last) > idleWindow {
					mu.Lock()
					clip := audio
					mu.Unlock()
					return Result{
						Success:     true,
						AudioBase64: base64.StdEncoding.EncodeToString(clip),
						DurationMS:  float64(len(clip)) / pcmBytesPerSecond * 1000,
					}
				}
			}
			if time.Now().After(deadline) {
				return failure(fmt.Errorf("timed out waiting for audio"))
			}
		}
	}
}

type collectCallback struct{ onBinary func([]byte) error }

func (c *collectCallback) Open(*msginterfaces.OpenResponse) error         { return nil }
func (c *collectCallback) Metadata(*msginterfaces.MetadataResponse) error { return nil }
func (c *collectCallback) Flush(*msginterfaces.FlushedResponse) error     { return nil }
func (c *collectCallback) Clear(*msginterfaces.ClearedResponse) error     { return nil }
func (c *collectCallback) Close(*msginterfaces.CloseResponse) error       { return nil }
func (c *collectCallback) Warning(*msginterfaces.WarningResponse) error   { return nil }
func (c *collectCallback) Error(*msginterfaces.ErrorResponse) error       { return nil }
func (c *collectCallback) UnhandledEvent([]byte) error                    { return nil }
func (c *collectCallback) Binary(byMsg []byte) error {
	if c.onBinary != nil {
		return c.onBinary(byMsg)
	}
	return nil
}
