package session

import (
	"github.com/belfiore04/cat-yard/internal/llm"
	"github.com/belfiore04/cat-yard/internal/schedule"
)

// inboundMessage is every frame a client may send on /ws/chat. Unknown types
// and fields are ignored; missing optional fields keep their zero defaults.
type inboundMessage struct {
	Type string `json:"type"`

	// sync
	Name            string             `json:"name,omitempty"`
	Persona         string             `json:"persona,omitempty"`
	Schedule        *schedule.Schedule `json:"schedule,omitempty"`
	SimulatedDay    int                `json:"simulated_day,omitempty"`
	SimulatedHour   int                `json:"simulated_hour,omitempty"`
	SimulatedMinute int                `json:"simulated_minute,omitempty"`
	VoiceID         string             `json:"voice_id,omitempty"`

	// user_message
	Content string        `json:"content,omitempty"`
	History []llm.Message `json:"history,omitempty"`
}

// outboundMessage is every frame the session pushes to the client:
// "typing", "message", "proactive" and "error". Message frames optionally
// carry a synthesized voice clip.
type outboundMessage struct {
	Type         string  `json:"type"`
	Content      string  `json:"content,omitempty"`
	DelaySeconds float64 `json:"delay_seconds"`
	AudioBase64  string  `json:"audio_base64,omitempty"`
	DurationMS   float64 `json:"duration_ms,omitempty"`
}
