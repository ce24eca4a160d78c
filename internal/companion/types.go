package companion

import (
	"context"

	"github.com/belfiore04/cat-yard/internal/llm"
	"github.com/belfiore04/cat-yard/internal/schedule"
)

// Generator is the minimal interface to the external text-completion oracle.
type Generator interface {
	Generate(ctx context.Context, messages []llm.Message) (string, error)
}

// Fragment is one chat bubble of a multi-part reply. DelaySeconds is the
// modeled typing/thinking pause the client waits before showing it.
type Fragment struct {
	Content      string  `json:"content"`
	DelaySeconds float64 `json:"delay_seconds"`
}

// Event is a spontaneous offscreen happening in the character's day.
type Event struct {
	Activity        string              `json:"activity"`
	Location        string              `json:"location"`
	DurationMinutes int                 `json:"duration_minutes"`
	ReplyDelay      schedule.ReplyDelay `json:"reply_delay"`
}

// Profile identifies the character being played.
type Profile struct {
	Name    string
	Persona string
}
