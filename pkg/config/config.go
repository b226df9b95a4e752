package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server      ServerConfig
	Pipeline    PipelineConfig
	Generation  GenerationConfig
	Recognizer  RecognizerConfig
	Audio       AudioConfig
	StoragePath string
}

type ServerConfig struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type PipelineConfig struct {
	QueueSize     int
	ChunkSeconds  int
	DefaultModel  string
	DefaultType   string
}

type GenerationConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	HealthTimeout  time.Duration
}

type RecognizerConfig struct {
	BaseURL        string
	Language       string
	VADFilter      bool
	RequestTimeout time.Duration
}

type AudioConfig struct {
	FFmpegCommand  string
	FFprobeCommand string
	TempDir        string
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Address:      envOrDefault("LP_SERVER_ADDRESS", ":8080"),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		Pipeline: PipelineConfig{
			QueueSize:    envOrDefaultInt("LP_QUEUE_SIZE", 16),
			ChunkSeconds: envOrDefaultInt("LP_CHUNK_SECONDS", 1800),
			DefaultModel: envOrDefault("LP_DEFAULT_MODEL", "llama3"),
			DefaultType:  envOrDefault("LP_DEFAULT_LECTURE_TYPE", "general"),
		},
		Generation: GenerationConfig{
			BaseURL:        envOrDefault("LP_OLLAMA_URL", "http://localhost:11434"),
			RequestTimeout: envOrDefaultDuration("LP_OLLAMA_TIMEOUT", 600*time.Second),
			HealthTimeout:  5 * time.Second,
		},
		Recognizer: RecognizerConfig{
			BaseURL:        envOrDefault("LP_WHISPER_URL", "http://localhost:9000"),
			Language:       envOrDefault("LP_LANGUAGE", "en"),
			VADFilter:      envOrDefaultBool("LP_VAD_FILTER", true),
			RequestTimeout: envOrDefaultDuration("LP_WHISPER_TIMEOUT", 600*time.Second),
		},
		Audio: AudioConfig{
			FFmpegCommand:  envOrDefault("LP_FFMPEG_COMMAND", "ffmpeg"),
			FFprobeCommand: envOrDefault("LP_FFPROBE_COMMAND", "ffprobe"),
			TempDir:        envOrDefault("LP_TEMP_DIR", os.TempDir()),
		},
		StoragePath: envOrDefault("LP_STORAGE_PATH", "./data"),
	}
}

func envOrDefault(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envOrDefaultInt(key string, fallback int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func envOrDefaultBool(key string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
