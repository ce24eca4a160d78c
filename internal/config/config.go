package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	HTTPAddress string

	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	// TTSProvider selects the synthesis backend: minimax, deepgram or elevenlabs.
	TTSProvider string
	TTSAPIKey   string
	TTSWSURL    string
	TTSModel    string

	DeepgramAPIKey string
	DeepgramModel  string
	ElevenLabsKey  string

	VoicesFile string
}

// Load reads environment variables and returns Config with sane defaults.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded")
	}

	addr := os.Getenv("HTTP_ADDRESS")
	if addr == "" {
		addr = ":8090"
	}

	llmBaseURL := os.Getenv("LLM_BASE_URL")
	if llmBaseURL == "" {
		llmBaseURL = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	}
	llmModel := os.Getenv("LLM_MODEL")
	if llmModel == "" {
		llmModel = "deepseek-v3"
	}
	llmKey := os.Getenv("LLM_API_KEY")
	if llmKey == "" {
		log.Println("Warning: LLM_API_KEY not set - reply generation will not work")
	}

	ttsProvider := os.Getenv("TTS_PROVIDER")
	if ttsProvider == "" {
		ttsProvider = "minimax"
	}
	ttsKey := os.Getenv("TTS_API_KEY")
	if ttsKey == "" && ttsProvider == "minimax" {
		log.Println("Warning: TTS_API_KEY not set - speech synthesis will not work")
	}
	ttsModel := os.Getenv("TTS_MODEL")
	if ttsModel == "" {
		ttsModel = "speech-2.6-hd"
	}

	log.Printf("config: HTTP_ADDRESS=%s TTS_PROVIDER=%s", addr, ttsProvider)
	return Config{
		HTTPAddress:    addr,
		LLMBaseURL:     llmBaseURL,
		LLMAPIKey:      llmKey,
		LLMModel:       llmModel,
		TTSProvider:    ttsProvider,
		TTSAPIKey:      ttsKey,
		TTSWSURL:       os.Getenv("TTS_WS_URL"),
		TTSModel:       ttsModel,
		DeepgramAPIKey: os.Getenv("DEEPGRAM_API_KEY"),
		DeepgramModel:  os.Getenv("DEEPGRAM_TTS_MODEL"),
		ElevenLabsKey:  os.Getenv("ELEVENLABS_API_KEY"),
		VoicesFile:     os.Getenv("VOICES_FILE"),
	}
}
