package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/belfiore04/cat-yard/internal/companion"
	"github.com/belfiore04/cat-yard/internal/config"
	"github.com/belfiore04/cat-yard/internal/httpserver"
	"github.com/belfiore04/cat-yard/internal/llm"
	"github.com/belfiore04/cat-yard/internal/presence"
	"github.com/belfiore04/cat-yard/internal/session"
	"github.com/belfiore04/cat-yard/internal/tts"
)

// newSynthesizer picks the synthesis backend from config. A nil return means
// voice is disabled and sessions stay text-only.
func newSynthesizer(cfg config.Config) tts.Synthesizer {
	switch cfg.TTSProvider {
	case "minimax":
		if cfg.TTSAPIKey == "" {
			return nil
		}
		return tts.NewMiniMaxClient(cfg.TTSAPIKey, cfg.TTSWSURL, cfg.TTSModel)
	case "deepgram":
		if cfg.DeepgramAPIKey == "" {
			return nil
		}
		return tts.NewDeepgramClient(cfg.DeepgramAPIKey, cfg.DeepgramModel)
	case "elevenlabs":
		if cfg.ElevenLabsKey == "" {
			return nil
		}
		return tts.NewElevenLabsClient(cfg.ElevenLabsKey)
	default:
		log.Printf("unknown TTS_PROVIDER %q, voice disabled", cfg.TTSProvider)
		return nil
	}
}

func main() {
	// Include sub-second precision in all log timestamps
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfg := config.Load()

	comp := companion.New(llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel))
	resolver := presence.NewResolver(nil)
	synth := newSynthesizer(cfg)
	voices, err := config.LoadVoices(cfg.VoicesFile)
	if err != nil {
		log.Fatalf("load voices: %v", err)
	}

	sessions := session.NewHandler(comp, resolver, synth, voices)
	srv := httpserver.New(comp, resolver, synth, voices, sessions)

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddress)
		serverErrors <- server.ListenAndServe()
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigChan:
		log.Printf("shutdown signal received: %v", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = server.Close()
	}
}
