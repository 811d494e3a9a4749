package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Create a temporary directory for test files
	tempDir := t.TempDir()

	// Create a test config file
	configPath := filepath.Join(tempDir, "test_config.yaml")
	configContent := `
log_level: -4
data_dir: corpus
vocab:
  instruments: [Piano, Bass]
  min_pitch: 21
  max_pitch: 108
  max_wait: 16
pipeline:
  pack: seq2seq
  target: Bass
  cap: 512
  truncate_policy: error_on_overflow
split:
  train: 0.7
  val: 0.2
  test: 0.1
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	// Test loading the config
	cfg, err := Load(configPath)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, -4, cfg.LogLevel)
	assert.Equal(t, "corpus", cfg.DataDir)
	assert.Equal(t, []string{"Piano", "Bass"}, cfg.Vocab.Instruments)
	assert.Equal(t, 108, cfg.Vocab.MaxPitch)
	assert.Equal(t, 16, cfg.Vocab.MaxWait)
	assert.Equal(t, "seq2seq", cfg.Pipeline.Pack)
	assert.Equal(t, "error_on_overflow", cfg.Pipeline.TruncatePolicy)
	assert.Equal(t, 0.7, cfg.Split.Train)

	// Defaults
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "local", cfg.Storage.Type)
	assert.Equal(t, 200, cfg.Pipeline.PadLength)
	assert.Equal(t, 4, cfg.Preprocess.StepsPerQuarter)
	assert.Equal(t, 1, cfg.Preprocess.Workers)
	assert.Equal(t, "vocab.json", cfg.Vocab.Snapshot)
}

func TestLoadNonExistentFile(t *testing.T) {
	// Test loading a non-existent config file
	cfg, err := Load("non_existent_file.yaml")

	// Assert
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadInvalidYAML(t *testing.T) {
	// Create a temporary directory for test files
	tempDir := t.TempDir()

	// Create an invalid YAML file
	configPath := filepath.Join(tempDir, "invalid_config.yaml")
	configContent := `
log_level: -4
data_dir: corpus
invalid_yaml: [this is not valid yaml
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	assert.NoError(t, err)

	// Test loading the invalid config
	cfg, err := Load(configPath)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoadEmptyFileUsesDefaults(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(configPath, nil, 0644))

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
		field  string
	}{
		{name: "split does not sum to one", mutate: func(c *Config) { c.Split = SplitConfig{Train: 0.5, Val: 0.2, Test: 0.2} }, field: "split"},
		{name: "negative split", mutate: func(c *Config) { c.Split = SplitConfig{Train: 1.2, Val: -0.2} }, field: "split"},
		{name: "unknown storage", mutate: func(c *Config) { c.Storage.Type = "s3" }, field: "storage.type"},
		{name: "gcs without bucket", mutate: func(c *Config) { c.Storage.Type = "gcs" }, field: "storage.bucket"},
		{name: "inverted pitch range", mutate: func(c *Config) { c.Vocab.MinPitch = 100; c.Vocab.MaxPitch = 20 }, field: "vocab"},
		{name: "unknown truncate policy", mutate: func(c *Config) { c.Pipeline.TruncatePolicy = "drop" }, field: "pipeline.truncate_policy"},
		{name: "unknown corpus kind", mutate: func(c *Config) { c.Preprocess.Kind = "mp3" }, field: "preprocess.kind"},
		{name: "no workers", mutate: func(c *Config) { c.Preprocess.Workers = 0 }, field: "preprocess.workers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			var cErr *ConfigurationError
			require.True(t, errors.As(err, &cErr))
			assert.Equal(t, tt.field, cErr.Field)
			assert.ErrorIs(t, err, ErrConfiguration)
		})
	}

	assert.NoError(t, Default().Validate())
}
