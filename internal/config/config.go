package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	ASR        ASRConfig        `yaml:"asr"`
	LLM        LLMConfig        `yaml:"llm"`
	Evaluation EvaluationConfig `yaml:"evaluation"`
	Logging    LoggingConfig    `yaml:"logging"`
	App        AppConfig        `yaml:"app"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds embedded SQLite configuration
type DatabaseConfig struct {
	Path            string        `yaml:"path"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	BusyTimeout     time.Duration `yaml:"busy_timeout"`
}

// ASRConfig holds speech-to-text provider configuration.
// APIKey is taken from the ASSEMBLYAI_API_KEY environment variable; an empty
// key leaves the transcription client unconfigured and evaluations fail fast.
type ASRConfig struct {
	APIKey       string        `yaml:"-"`
	BaseURL      string        `yaml:"base_url"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// LLMConfig holds large-language-model provider configuration.
// APIKey comes from GEMINI_API_KEY, Model may be overridden by GEMINI_MODEL_NAME.
type LLMConfig struct {
	APIKey  string `yaml:"-"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// EvaluationConfig holds orchestration settings
type EvaluationConfig struct {
	Concurrency    int           `yaml:"concurrency"`
	QueueSize      int           `yaml:"queue_size"`
	CardTimeout    time.Duration `yaml:"card_timeout"`
	SummaryTimeout time.Duration `yaml:"summary_timeout"`
	TempDir        string        `yaml:"temp_dir"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	Output       string `yaml:"output"`
	EnableCaller bool   `yaml:"enable_caller"`
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// Load reads and parses the configuration file, then overlays secrets from the
// environment.
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	config.applyEnv()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.ASR.BaseURL == "" {
		c.ASR.BaseURL = "https://api.assemblyai.com/v2"
	}
	if c.ASR.PollInterval <= 0 {
		c.ASR.PollInterval = 3 * time.Second
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gemini-2.5-flash"
	}
	if c.Evaluation.Concurrency <= 0 {
		c.Evaluation.Concurrency = 8
	}
	if c.Evaluation.QueueSize <= 0 {
		c.Evaluation.QueueSize = 64
	}
	if c.Evaluation.CardTimeout <= 0 {
		c.Evaluation.CardTimeout = 120 * time.Second
	}
	if c.Evaluation.SummaryTimeout <= 0 {
		c.Evaluation.SummaryTimeout = 180 * time.Second
	}
	if c.Evaluation.TempDir == "" {
		c.Evaluation.TempDir = "temp_audio"
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("ASSEMBLYAI_API_KEY"); v != "" {
		c.ASR.APIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.LLM.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL_NAME"); v != "" {
		c.LLM.Model = v
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < MinPort || c.Server.Port > MaxPort {
		return fmt.Errorf("invalid server port: %d (must be between %d and %d)", c.Server.Port, MinPort, MaxPort)
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database path is required")
	}

	if c.Evaluation.Concurrency <= 0 {
		return fmt.Errorf("evaluation concurrency must be greater than 0")
	}

	if c.Evaluation.CardTimeout <= 0 {
		return fmt.Errorf("evaluation card_timeout must be greater than 0")
	}

	if c.Evaluation.SummaryTimeout <= 0 {
		return fmt.Errorf("evaluation summary_timeout must be greater than 0")
	}

	if c.Evaluation.TempDir == "" {
		return fmt.Errorf("evaluation temp_dir is required")
	}

	return nil
}
