package tts

import (
	"context"
	"errors"
)

// Failure kinds for a synthesis session. They end up in Result.Error; a
// synthesis failure is a degraded experience, not a fault, so nothing in this
// package ever propagates an error across the session boundary.
var (
	// ErrEmptyInput means there was no text to speak. Checked before any
	// connection is opened.
	ErrEmptyInput = errors.New("empty input text")
	// ErrHandshakeFailed means the remote never acknowledged the connection,
	// or sent a frame out of the expected handshake state.
	ErrHandshakeFailed = errors.New("handshake failed")
	// ErrTaskStartFailed means the remote rejected the voice parameters.
	ErrTaskStartFailed = errors.New("task start failed")
)

// Result is the outcome of one synthesis request. Callers must check Success;
// on failure Error carries the reason and the audio fields are empty.
type Result struct {
	Success     bool    `json:"success"`
	AudioBase64 string  `json:"audio_base64,omitempty"`
	DurationMS  float64 `json:"duration_ms,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// Synthesizer turns one text fragment into a playable audio clip.
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voiceID string) Result
}

func failure(err error) Result {
	return Result{Success: false, Error: err.Error()}
}
