package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Rooms  RoomsConfig  `yaml:"rooms"`
	TTS    TTSConfig    `yaml:"tts"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type RoomsConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

type TTSConfig struct {
	// Enabled wires the speech synthesizer for closing utterances. Requires
	// DEEPGRAM_API_KEY.
	Enabled bool `yaml:"enabled"`
}

// DrainTimeout bounds how long shutdown waits for active sessions to say
// their goodbyes before aborting them.
const DrainTimeout = 45 * time.Second

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		TTS: TTSConfig{Enabled: true},
	}
}

// LoadConfig reads the yaml config at path over built-in defaults. An empty
// path returns the defaults untouched.
func LoadConfig(path string) (*Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
