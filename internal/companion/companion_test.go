package companion

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/belfiore04/cat-yard/internal/llm"
	"github.com/belfiore04/cat-yard/internal/schedule"
)

type fakeGenerator struct {
	reply string
	err   error
	// last request seen, for prompt assertions
	gotMessages []llm.Message
}

func (f *fakeGenerator) Generate(ctx context.Context, messages []llm.Message) (string, error) {
	f.gotMessages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func testRequest() ChatRequest {
	return ChatRequest{
		Profile:     Profile{Name: "Aoi", Persona: "a quiet bodyguard with a soft spot"},
		Schedule:    schedule.Default(),
		TimeInfo:    "The simulated time right now is Wednesday 11:00. You are out of the house, currently working.",
		History:     []llm.Message{{Role: "user", Content: "you there?"}},
		UserMessage: "what are you up to?",
	}
}

func TestParseReply_WellFormedRoundTrips(t *testing.T) {
	cases := []string{
		`{"messages":[{"content":"one","delay_seconds":0}]}`,
		`{"messages":[{"content":"one","delay_seconds":0},{"content":"two","delay_seconds":3}]}`,
		`{"messages":[{"content":"a","delay_seconds":1},{"content":"b","delay_seconds":2},{"content":"c","delay_seconds":0},{"content":"d","delay_seconds":4}]}`,
	}
	for _, raw := range cases {
		var env replyEnvelope
		if err := llm.DecodeJSON(raw, &env); err != nil {
			t.Fatalf("test fixture invalid: %v", err)
		}
		got := ParseReply(raw)
		if !reflect.DeepEqual(got, env.Messages) {
			t.Fatalf("ParseReply(%q) = %+v, want %+v", raw, got, env.Messages)
		}
	}
}

func TestParseReply_MalformedDegradesToRawText(t *testing.T) {
	got := ParseReply("not valid json")
	if len(got) != 1 {
		t.Fatalf("expected exactly one fragment, got %d", len(got))
	}
	if got[0].Content != "not valid json" || got[0].DelaySeconds != 0 {
		t.Fatalf("unexpected fragment: %+v", got[0])
	}
}

func TestParseReply_FencedPayload(t *testing.T) {
	got := ParseReply("```json\n{\"messages\":[{\"content\":\"hey\",\"delay_seconds\":2}]}\n```")
	if len(got) != 1 || got[0].Content != "hey" || got[0].DelaySeconds != 2 {
		t.Fatalf("unexpected fragments: %+v", got)
	}
}

func TestParseReply_EmptyListDegrades(t *testing.T) {
	got := ParseReply(`{"messages":[]}`)
	if len(got) != 1 || got[0].DelaySeconds != 0 {
		t.Fatalf("expected single raw fragment, got %+v", got)
	}
}

func TestParseReply_ClampsNegativeDelay(t *testing.T) {
	got := ParseReply(`{"messages":[{"content":"x","delay_seconds":-5}]}`)
	if got[0].DelaySeconds != 0 {
		t.Fatalf("expected clamped delay, got %v", got[0].DelaySeconds)
	}
}

func TestChat_PassesSituationAndHistory(t *testing.T) {
	gen := &fakeGenerator{reply: `{"messages":[{"content":"just working","delay_seconds":0}]}`}
	c := New(gen)
	req := testRequest()
	got, err := c.Chat(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Content != "just working" {
		t.Fatalf("unexpected fragments: %+v", got)
	}
	if gen.gotMessages[0].Role != "system" {
		t.Fatalf("expected system turn first")
	}
	sys := gen.gotMessages[0].Content
	for _, want := range []string{req.Profile.Name, req.TimeInfo, `"routine"`} {
		if !strings.Contains(sys, want) {
			t.Fatalf("system prompt missing %q", want)
		}
	}
	last := gen.gotMessages[len(gen.gotMessages)-1]
	if last.Role != "user" || last.Content != req.UserMessage {
		t.Fatalf("expected trailing user message, got %+v", last)
	}
}

func TestChat_GeneratorFailureSurfaces(t *testing.T) {
	gen := &fakeGenerator{err: llm.ErrGenerationFailed}
	c := New(gen)
	if _, err := c.Chat(context.Background(), testRequest()); !errors.Is(err, llm.ErrGenerationFailed) {
		t.Fatalf("expected generation failure to surface, got %v", err)
	}
}

func TestGenerateSchedule_MalformedFallsBack(t *testing.T) {
	gen := &fakeGenerator{reply: "sorry, I cannot do that"}
	c := New(gen)
	got, err := c.GenerateSchedule(context.Background(), Profile{Name: "Aoi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, schedule.Default()) {
		t.Fatalf("expected default schedule, got %+v", got)
	}
}

func TestGenerateSchedule_WellFormed(t *testing.T) {
	gen := &fakeGenerator{reply: "```json\n{\"routine\":[{\"days\":[6],\"start\":10,\"end\":12,\"activity\":\"brunch\",\"location\":\"out\",\"reply_delay\":[5,10]}],\"sleep\":[0,8],\"home_activities\":[\"gaming\"]}\n```"}
	c := New(gen)
	got, err := c.GenerateSchedule(context.Background(), Profile{Name: "Aoi"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Routine) != 1 || got.Routine[0].Activity != "brunch" {
		t.Fatalf("unexpected schedule: %+v", got)
	}
}

func TestRandomEvent_MalformedFallsBackToDefault(t *testing.T) {
	gen := &fakeGenerator{reply: "no json here"}
	c := New(gen)
	got, err := c.RandomEvent(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, DefaultEvent()) {
		t.Fatalf("expected default event, got %+v", got)
	}
}

func TestRandomEvent_NormalizesFields(t *testing.T) {
	gen := &fakeGenerator{reply: `{"activity":"went for a late walk","location":"park","duration_minutes":0}`}
	c := New(gen)
	got, err := c.RandomEvent(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Location != "home" {
		t.Fatalf("unknown location should normalize to home, got %q", got.Location)
	}
	if got.DurationMinutes <= 0 {
		t.Fatalf("expected a positive duration, got %d", got.DurationMinutes)
	}
	if got.ReplyDelay == (schedule.ReplyDelay{}) {
		t.Fatalf("expected a non-empty reply delay")
	}
}

func TestSurprise_ReturnsTrimmedText(t *testing.T) {
	gen := &fakeGenerator{reply: "  Left you some dumplings in the fridge.  "}
	c := New(gen)
	got, err := c.Surprise(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Left you some dumplings in the fridge." {
		t.Fatalf("unexpected surprise text: %q", got)
	}
}

func TestProactive_ReusesFragmentParsing(t *testing.T) {
	gen := &fakeGenerator{reply: `{"messages":[{"content":"bored at work","delay_seconds":0},{"content":"miss you","delay_seconds":2}]}`}
	c := New(gen)
	got, err := c.Proactive(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[1].Content != "miss you" {
		t.Fatalf("unexpected fragments: %+v", got)
	}
	last := gen.gotMessages[len(gen.gotMessages)-1]
	if last.Role != "user" || !strings.Contains(last.Content, "unprompted") {
		t.Fatalf("expected proactive instruction as final user turn, got %+v", last)
	}
}
