package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// VoiceBook maps character/speaker names to synthesis voice IDs. Clients may
// also pass a concrete voice ID directly, in which case lookup is a pass-through.
type VoiceBook struct {
	// Default is used when a speaker has no preset and passed no voice ID.
	Default string            `yaml:"default"`
	Voices  map[string]string `yaml:"voices"`
}

// LoadVoices reads a voice preset file. An empty path yields an empty book,
// which resolves every name to itself.
func LoadVoices(path string) (*VoiceBook, error) {
	if path == "" {
		return &VoiceBook{}, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read voices file: %w", err)
	}
	var book VoiceBook
	if err := yaml.Unmarshal(raw, &book); err != nil {
		return nil, fmt.Errorf("parse voices file: %w", err)
	}
	return &book, nil
}

// Resolve maps a speaker name to a voice ID: preset first, then the name
// itself (the caller may already hold a concrete voice ID), then the default.
func (b *VoiceBook) Resolve(name string) string {
	if b == nil {
		return name
	}
	if id, ok := b.Voices[name]; ok {
		return id
	}
	if name != "" {
		return name
	}
	return b.Default
}
