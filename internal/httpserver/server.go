package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/belfiore04/cat-yard/internal/companion"
	"github.com/belfiore04/cat-yard/internal/config"
	"github.com/belfiore04/cat-yard/internal/llm"
	"github.com/belfiore04/cat-yard/internal/presence"
	"github.com/belfiore04/cat-yard/internal/schedule"
	"github.com/belfiore04/cat-yard/internal/session"
	"github.com/belfiore04/cat-yard/internal/tts"
)

// Server bundles the HTTP router and its dependencies.
type Server struct {
	echo     *echo.Echo
	comp     *companion.Companion
	resolver *presence.Resolver
	synth    tts.Synthesizer
	voices   *config.VoiceBook
	sessions *session.Handler
}

// New constructs the HTTP server with routes.
func New(comp *companion.Companion, resolver *presence.Resolver, synth tts.Synthesizer, voices *config.VoiceBook, sessions *session.Handler) *Server {
	s := &Server{
		echo:     newEcho(),
		comp:     comp,
		resolver: resolver,
		synth:    synth,
		voices:   voices,
		sessions: sessions,
	}

	s.echo.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	s.echo.POST("/api/generate_schedule", s.handleGenerateSchedule)
	s.echo.POST("/api/chat", s.handleChat)
	s.echo.POST("/api/surprise", s.handleSurprise)
	s.echo.POST("/api/random_event", s.handleRandomEvent)
	s.echo.POST("/api/tts", s.handleTTS)
	s.echo.GET("/ws/chat", s.handleWS)

	return s
}

// Handler exposes the router for http.Server and tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

type profileRequest struct {
	Name    string `json:"name"`
	Persona string `json:"persona"`
}

// chatRequest is the shared body of every presence-aware REST endpoint. The
// client always supplies its own simulated clock; the server never guesses
// what time it is in the player's world.
type chatRequest struct {
	Name            string             `json:"name"`
	Persona         string             `json:"persona"`
	Schedule        *schedule.Schedule `json:"schedule"`
	SimulatedDay    int                `json:"simulated_day"`
	SimulatedHour   int                `json:"simulated_hour"`
	SimulatedMinute int                `json:"simulated_minute"`
	History         []llm.Message      `json:"history"`
	UserMessage     string             `json:"user_message"`
}

func (r chatRequest) clock() schedule.Clock {
	return schedule.Clock{Day: r.SimulatedDay, Hour: r.SimulatedHour, Minute: r.SimulatedMinute}
}

// companionRequest resolves presence from the supplied clock and schedule and
// assembles the generator-facing request.
func (s *Server) companionRequest(req chatRequest) companion.ChatRequest {
	sched := req.Schedule
	if sched == nil {
		sched = schedule.Default()
	}
	clock := req.clock()
	pc := s.resolver.Resolve(sched, clock)
	return companion.ChatRequest{
		Profile:     companion.Profile{Name: req.Name, Persona: req.Persona},
		Schedule:    sched,
		TimeInfo:    presence.TimeInfo(clock, pc),
		History:     req.History,
		UserMessage: req.UserMessage,
	}
}

func (s *Server) handleGenerateSchedule(c echo.Context) error {
	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	sched, err := s.comp.GenerateSchedule(c.Request().Context(), companion.Profile{Name: req.Name, Persona: req.Persona})
	if err != nil {
		c.Logger().Errorf("generate_schedule failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "schedule generation failed"})
	}
	return c.JSON(http.StatusOK, sched)
}

func (s *Server) handleChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	frags, err := s.comp.Chat(c.Request().Context(), s.companionRequest(req))
	if err != nil {
		c.Logger().Errorf("chat failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "reply generation failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"messages": frags})
}

func (s *Server) handleSurprise(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	text, err := s.comp.Surprise(c.Request().Context(), s.companionRequest(req))
	if err != nil {
		c.Logger().Errorf("surprise failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "surprise generation failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"surprise": text})
}

func (s *Server) handleRandomEvent(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ev, err := s.comp.RandomEvent(c.Request().Context(), s.companionRequest(req))
	if err != nil {
		c.Logger().Errorf("random_event failed: %v", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "event generation failed"})
	}
	return c.JSON(http.StatusOK, ev)
}

type ttsRequest struct {
	Text    string `json:"text"`
	VoiceID string `json:"voice_id"`
}

func (s *Server) handleTTS(c echo.Context) error {
	var req ttsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if s.synth == nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "speech synthesis not configured"})
	}
	res := s.synth.Synthesize(c.Request().Context(), req.Text, s.voices.Resolve(req.VoiceID))
	if !res.Success {
		c.Logger().Errorf("tts failed: %s", res.Error)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": res.Error})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"audio_base64": res.AudioBase64,
		"duration_ms":  res.DurationMS,
	})
}

func (s *Server) handleWS(c echo.Context) error {
	s.sessions.ServeWS(c.Response(), c.Request())
	return nil
}
