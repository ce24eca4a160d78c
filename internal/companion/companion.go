package companion

import (
	"context"
	"log"
	"strings"

	"github.com/belfiore04/cat-yard/internal/llm"
	"github.com/belfiore04/cat-yard/internal/schedule"
)

// Companion wraps the generator with the game's operations. Parse failures of
// generator output always degrade to documented fallback values; only
// transport failures from the generator itself are returned as errors.
type Companion struct {
	gen Generator
}

func New(gen Generator) *Companion {
	return &Companion{gen: gen}
}

// GenerateSchedule asks the generator to author a weekly schedule for the
// profile. Malformed output falls back to the built-in default schedule.
func (c *Companion) GenerateSchedule(ctx context.Context, p Profile) (*schedule.Schedule, error) {
	raw, err := c.gen.Generate(ctx, []llm.Message{
		{Role: "system", Content: schedulePrompt()},
		{Role: "user", Content: "Character name: " + p.Name + "\nCharacter persona: " + p.Persona},
	})
	if err != nil {
		return nil, err
	}
	return schedule.Parse(llm.StripCodeFences(raw)), nil
}

// ChatRequest carries everything one conversational reply needs.
type ChatRequest struct {
	Profile     Profile
	Schedule    *schedule.Schedule
	TimeInfo    string
	History     []llm.Message
	UserMessage string
}

// Chat produces one logical reply as an ordered fragment sequence.
func (c *Companion) Chat(ctx context.Context, req ChatRequest) ([]Fragment, error) {
	messages := []llm.Message{
		{Role: "system", Content: chatPrompt(req.Profile.Name, req.Profile.Persona, req.Schedule.Normalize().JSON(), req.TimeInfo)},
	}
	messages = append(messages, req.History...)
	if req.UserMessage != "" {
		messages = append(messages, llm.Message{Role: "user", Content: req.UserMessage})
	}
	raw, err := c.gen.Generate(ctx, messages)
	if err != nil {
		return nil, err
	}
	return ParseReply(raw), nil
}

// Proactive produces an unprompted message in the same fragment format as Chat.
func (c *Companion) Proactive(ctx context.Context, req ChatRequest) ([]Fragment, error) {
	messages := []llm.Message{
		{Role: "system", Content: chatPrompt(req.Profile.Name, req.Profile.Persona, req.Schedule.Normalize().JSON(), req.TimeInfo)},
	}
	messages = append(messages, req.History...)
	messages = append(messages, llm.Message{Role: "user", Content: proactiveInstruction})
	raw, err := c.gen.Generate(ctx, messages)
	if err != nil {
		return nil, err
	}
	return ParseReply(raw), nil
}

// Surprise produces the text of a note left for the player.
func (c *Companion) Surprise(ctx context.Context, req ChatRequest) (string, error) {
	raw, err := c.gen.Generate(ctx, []llm.Message{
		{Role: "system", Content: surprisePrompt(req.Profile.Name, req.Profile.Persona, req.Schedule.Normalize().JSON(), req.TimeInfo)},
		{Role: "user", Content: "Please write the note on the desk."},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(llm.StripCodeFences(raw)), nil
}

// DefaultEvent is the fixed innocuous event used when the generator's event
// description cannot be parsed.
func DefaultEvent() Event {
	return Event{
		Activity:        "spaced out for a while",
		Location:        "home",
		DurationMinutes: 10,
		ReplyDelay:      schedule.ReplyDelay{1, 3},
	}
}

// RandomEvent produces a spontaneous offscreen event. Malformed generator
// output degrades to DefaultEvent.
func (c *Companion) RandomEvent(ctx context.Context, req ChatRequest) (Event, error) {
	raw, err := c.gen.Generate(ctx, []llm.Message{
		{Role: "system", Content: eventPrompt(req.Profile.Name, req.Profile.Persona, req.Schedule.Normalize().JSON(), req.TimeInfo)},
		{Role: "user", Content: "Generate the event happening to them right now."},
	})
	if err != nil {
		return Event{}, err
	}
	var ev Event
	if derr := llm.DecodeJSON(raw, &ev); derr != nil || ev.Activity == "" {
		log.Printf("companion: random event parse failed, using default: %v", derr)
		return DefaultEvent(), nil
	}
	if ev.Location != "out" {
		ev.Location = "home"
	}
	if ev.DurationMinutes <= 0 {
		ev.DurationMinutes = 30
	}
	if ev.ReplyDelay == (schedule.ReplyDelay{}) {
		ev.ReplyDelay = schedule.ReplyDelay{5, 15}
	}
	return ev, nil
}
