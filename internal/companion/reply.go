package companion

import (
	"log"
	"strings"

	"github.com/belfiore04/cat-yard/internal/llm"
)

// replyEnvelope is the structured list the generator is instructed to emit.
type replyEnvelope struct {
	Messages []Fragment `json:"messages"`
}

// ParseReply turns the generator's raw reply into the ordered fragment
// sequence to deliver. Anything that does not decode into a non-empty message
// list degrades to a single zero-delay fragment wrapping the raw text, so
// delivery never blocks or errors out on malformed generator output.
func ParseReply(raw string) []Fragment {
	var env replyEnvelope
	if err := llm.DecodeJSON(raw, &env); err != nil || len(env.Messages) == 0 {
		text := strings.TrimSpace(llm.StripCodeFences(raw))
		if err != nil {
			log.Printf("companion: reply parse failed, delivering raw text: %v", err)
		}
		return []Fragment{{Content: text, DelaySeconds: 0}}
	}
	for i := range env.Messages {
		if env.Messages[i].DelaySeconds < 0 {
			env.Messages[i].DelaySeconds = 0
		}
	}
	return env.Messages
}
