package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		filePath  string
		wantErr   bool
		errString string
	}{
		{
			name:     "valid config file",
			filePath: "testdata/valid_config.yaml",
			wantErr:  false,
		},
		{
			name:      "non-existent file",
			filePath:  "testdata/nonexistent.yaml",
			wantErr:   true,
			errString: "failed to read config file",
		},
		{
			name:      "malformed yaml",
			filePath:  "testdata/malformed.yaml",
			wantErr:   true,
			errString: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.filePath)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
				assert.Nil(t, cfg)
			} else {
				require.NoError(t, err)
				require.NotNil(t, cfg)

				assert.Equal(t, 8000, cfg.Server.Port)
				assert.Equal(t, "evaluation_jobs.db", cfg.Database.Path)
				assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
				assert.Equal(t, 120*time.Second, cfg.Evaluation.CardTimeout)
				assert.Equal(t, 180*time.Second, cfg.Evaluation.SummaryTimeout)
				assert.Equal(t, "temp_audio", cfg.Evaluation.TempDir)
				assert.Equal(t, "retell-api-service", cfg.App.Name)
			}
		})
	}
}

func TestLoad_EnvOverlay(t *testing.T) {
	t.Setenv("ASSEMBLYAI_API_KEY", "aai-key")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("GEMINI_MODEL_NAME", "gemini-2.5-pro")

	cfg, err := Load("testdata/valid_config.yaml")
	require.NoError(t, err)

	assert.Equal(t, "aai-key", cfg.ASR.APIKey)
	assert.Equal(t, "gem-key", cfg.LLM.APIKey)
	assert.Equal(t, "gemini-2.5-pro", cfg.LLM.Model)
}

func TestLoad_Defaults(t *testing.T) {
	cfg := &Config{}
	cfg.applyDefaults()

	assert.Equal(t, "https://api.assemblyai.com/v2", cfg.ASR.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.ASR.PollInterval)
	assert.Equal(t, "gemini-2.5-flash", cfg.LLM.Model)
	assert.Equal(t, 120*time.Second, cfg.Evaluation.CardTimeout)
	assert.Equal(t, 180*time.Second, cfg.Evaluation.SummaryTimeout)
	assert.Equal(t, 8, cfg.Evaluation.Concurrency)
	assert.Equal(t, "temp_audio", cfg.Evaluation.TempDir)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8000},
			Database: DatabaseConfig{Path: "evaluation_jobs.db"},
			Evaluation: EvaluationConfig{
				Concurrency:    4,
				CardTimeout:    120 * time.Second,
				SummaryTimeout: 180 * time.Second,
				TempDir:        "temp_audio",
			},
		}
	}

	tests := []struct {
		name      string
		mutate    func(*Config)
		wantErr   bool
		errString string
	}{
		{
			name:    "valid config",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:      "invalid server port - too low",
			mutate:    func(c *Config) { c.Server.Port = 0 },
			wantErr:   true,
			errString: "invalid server port",
		},
		{
			name:      "invalid server port - too high",
			mutate:    func(c *Config) { c.Server.Port = 70000 },
			wantErr:   true,
			errString: "invalid server port",
		},
		{
			name:      "missing database path",
			mutate:    func(c *Config) { c.Database.Path = "" },
			wantErr:   true,
			errString: "database path is required",
		},
		{
			name:      "invalid concurrency",
			mutate:    func(c *Config) { c.Evaluation.Concurrency = 0 },
			wantErr:   true,
			errString: "concurrency must be greater than 0",
		},
		{
			name:      "invalid card timeout",
			mutate:    func(c *Config) { c.Evaluation.CardTimeout = 0 },
			wantErr:   true,
			errString: "card_timeout must be greater than 0",
		},
		{
			name:      "missing temp dir",
			mutate:    func(c *Config) { c.Evaluation.TempDir = "" },
			wantErr:   true,
			errString: "temp_dir is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
			} else {
				require.NoError(t, err)
			}
		})
	}
}
