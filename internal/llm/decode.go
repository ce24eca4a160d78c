package llm

import (
	"encoding/json"
	"strings"
)

// StripCodeFences removes a markdown code-fence wrapper the generator
// sometimes adds despite being told not to.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = s[len("```json"):]
	} else if strings.HasPrefix(s, "```") {
		s = s[len("```"):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// DecodeJSON is the one resilient-decode step shared by every generator-backed
// endpoint: clean the raw reply, then attempt a structured decode. Callers
// apply their documented fallback value when it returns an error; a decode
// failure is never surfaced to the player.
func DecodeJSON(raw string, v any) error {
	return json.Unmarshal([]byte(StripCodeFences(raw)), v)
}
