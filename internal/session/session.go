package session

import (
	"context"
	"encoding/json"
	"log"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/belfiore04/cat-yard/internal/companion"
	"github.com/belfiore04/cat-yard/internal/config"
	"github.com/belfiore04/cat-yard/internal/llm"
	"github.com/belfiore04/cat-yard/internal/presence"
	"github.com/belfiore04/cat-yard/internal/schedule"
	"github.com/belfiore04/cat-yard/internal/tts"
)

const (
	generateTimeout  = 60 * time.Second
	synthesisTimeout = 30 * time.Second
)

// Handler upgrades /ws/chat connections and runs one session per player.
// Sessions share nothing but the injected collaborators; each owns its own
// schedule, clock and delivery queue.
type Handler struct {
	comp     *companion.Companion
	resolver *presence.Resolver
	synth    tts.Synthesizer // nil disables voice clips
	voices   *config.VoiceBook
	upgrader websocket.Upgrader

	// proactive cadence: every proactiveEvery, with proactiveChance odds
	proactiveEvery  time.Duration
	proactiveChance float64

	rmu sync.Mutex
	rng *rand.Rand
}

// NewHandler builds a session handler with the stock proactive cadence
// (a check every 30s at 30% odds).
func NewHandler(comp *companion.Companion, resolver *presence.Resolver, synth tts.Synthesizer, voices *config.VoiceBook) *Handler {
	return &Handler{
		comp:     comp,
		resolver: resolver,
		synth:    synth,
		voices:   voices,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Allow any origin for demo use; restrict in production
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		proactiveEvery:  30 * time.Second,
		proactiveChance: 0.3,
		rng:             rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (h *Handler) roll() float64 {
	h.rmu.Lock()
	defer h.rmu.Unlock()
	return h.rng.Float64()
}

// ServeWS upgrades the request and blocks until the session ends.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("session: ws upgrade error: %v", err)
		return
	}
	s := &session{h: h, conn: conn, out: make(chan outboundMessage, 16)}
	s.run(r.Context())
}

// session is the state owned by one connected player.
type session struct {
	h    *Handler
	conn *websocket.Conn
	out  chan outboundMessage

	mu      sync.Mutex
	synced  bool
	busy    bool
	profile companion.Profile
	sched   *schedule.Schedule
	clock   schedule.Clock
	voiceID string
	history []llm.Message
}

func (s *session) run(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	// closing the conn is what unblocks the read loop on shutdown
	g.Go(func() error {
		<-ctx.Done()
		return s.conn.Close()
	})
	g.Go(func() error { return s.writeLoop(ctx) })
	g.Go(func() error { return s.readLoop(ctx) })
	g.Go(func() error { return s.proactiveLoop(ctx) })

	if err := g.Wait(); err != nil && !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		log.Printf("session: ended: %v", err)
	}
}

// writeLoop serializes all outbound frames onto the single connection.
func (s *session) writeLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-s.out:
			if err := s.conn.WriteJSON(msg); err != nil {
				return err
			}
		}
	}
}

func (s *session) readLoop(ctx context.Context) error {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return err
		}
		var msg inboundMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("session: dropping malformed frame: %v", err)
			continue
		}
		switch msg.Type {
		case "sync":
			s.applySync(msg)
		case "user_message":
			// handled off the read loop so sync frames keep flowing
			go s.handleUserMessage(ctx, msg)
		default:
			log.Printf("session: ignoring frame type %q", msg.Type)
		}
	}
}

func (s *session) applySync(msg inboundMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.synced = true
	if msg.Name != "" {
		s.profile = companion.Profile{Name: msg.Name, Persona: msg.Persona}
	}
	if msg.Schedule != nil {
		s.sched = msg.Schedule.Normalize()
	} else if s.sched == nil {
		s.sched = schedule.Default()
	}
	s.clock = schedule.Clock{Day: msg.SimulatedDay, Hour: msg.SimulatedHour, Minute: msg.SimulatedMinute}
	if msg.VoiceID != "" {
		s.voiceID = msg.VoiceID
	}
}

// snapshot copies the synced state for use outside the lock.
func (s *session) snapshot() (companion.Profile, *schedule.Schedule, schedule.Clock, string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile, s.sched, s.clock, s.voiceID, s.synced
}

// tryBeginReply marks the session busy; only one reply may be in flight.
func (s *session) tryBeginReply() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.busy {
		return false
	}
	s.busy = true
	return true
}

func (s *session) endReply() {
	s.mu.Lock()
	s.busy = false
	s.mu.Unlock()
}

func (s *session) handleUserMessage(ctx context.Context, msg inboundMessage) {
	profile, sched, clock, voiceID, synced := s.snapshot()
	if !synced {
		log.Printf("session: user_message before sync, ignoring")
		return
	}
	if !s.tryBeginReply() {
		// a reply is in flight; the client resends full history next time
		log.Printf("session: reply in flight, queuing via history")
		s.appendHistory(llm.Message{Role: "user", Content: msg.Content})
		return
	}
	defer s.endReply()

	s.setHistory(msg.History)
	s.send(ctx, outboundMessage{Type: "typing"})

	pc := s.h.resolver.Resolve(sched, clock)
	req := companion.ChatRequest{
		Profile:     profile,
		Schedule:    sched,
		TimeInfo:    presence.TimeInfo(clock, pc),
		History:     msg.History,
		UserMessage: userMessageFor(msg),
	}
	gctx, cancel := context.WithTimeout(ctx, generateTimeout)
	frags, err := s.h.comp.Chat(gctx, req)
	cancel()
	if err != nil {
		log.Printf("session: chat generation failed: %v", err)
		s.send(ctx, outboundMessage{Type: "error", Content: "character unreachable"})
		return
	}
	s.deliver(ctx, "message", frags, voiceID)
}

// userMessageFor avoids doubling the latest user turn when the client already
// put it at the end of the history it sent.
func userMessageFor(msg inboundMessage) string {
	if n := len(msg.History); n > 0 {
		last := msg.History[n-1]
		if last.Role == "user" && last.Content == msg.Content {
			return ""
		}
	}
	return msg.Content
}

func (s *session) proactiveLoop(ctx context.Context) error {
	ticker := time.NewTicker(s.h.proactiveEvery)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		profile, sched, clock, voiceID, synced := s.snapshot()
		if !synced {
			continue
		}
		if s.h.roll() >= s.h.proactiveChance {
			continue
		}
		pc := s.h.resolver.Resolve(sched, clock)
		if pc.State == presence.StateAsleep {
			continue
		}
		if !s.tryBeginReply() {
			continue
		}
		s.send(ctx, outboundMessage{Type: "typing"})
		req := companion.ChatRequest{
			Profile:  profile,
			Schedule: sched,
			TimeInfo: presence.TimeInfo(clock, pc),
			History:  s.historyCopy(),
		}
		gctx, cancel := context.WithTimeout(ctx, generateTimeout)
		frags, err := s.h.comp.Proactive(gctx, req)
		cancel()
		if err != nil {
			log.Printf("session: proactive generation failed: %v", err)
			s.endReply()
			continue
		}
		s.deliver(ctx, "proactive", frags, voiceID)
		s.endReply()
	}
}

// deliver pushes fragments in order, honoring each fragment's pause and
// attaching a voice clip when synthesis is configured. A canceled context
// abandons the rest without side effects.
func (s *session) deliver(ctx context.Context, typ string, frags []companion.Fragment, voiceID string) {
	voice := s.h.voices.Resolve(voiceID)
	for _, f := range frags {
		if f.DelaySeconds > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Duration(f.DelaySeconds * float64(time.Second))):
			}
		}
		msg := outboundMessage{Type: typ, Content: f.Content, DelaySeconds: f.DelaySeconds}
		if s.h.synth != nil && voice != "" {
			sctx, cancel := context.WithTimeout(ctx, synthesisTimeout)
			res := s.h.synth.Synthesize(sctx, f.Content, voice)
			cancel()
			if res.Success {
				msg.AudioBase64 = res.AudioBase64
				msg.DurationMS = res.DurationMS
			} else {
				// missing voice is a degraded experience, not a failure
				log.Printf("session: synthesis failed: %s", res.Error)
			}
		}
		if !s.send(ctx, msg) {
			return
		}
		s.appendHistory(llm.Message{Role: "assistant", Content: f.Content})
	}
}

func (s *session) send(ctx context.Context, msg outboundMessage) bool {
	select {
	case <-ctx.Done():
		return false
	case s.out <- msg:
		return true
	}
}

func (s *session) setHistory(h []llm.Message) {
	s.mu.Lock()
	s.history = append([]llm.Message(nil), h...)
	s.mu.Unlock()
}

func (s *session) appendHistory(m llm.Message) {
	s.mu.Lock()
	s.history = append(s.history, m)
	s.mu.Unlock()
}

func (s *session) historyCopy() []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]llm.Message(nil), s.history...)
}
