package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jaki95/eventseq/internal/event"
)

var ErrConfiguration = errors.New("invalid configuration")

// ConfigurationError reports an invalid setting.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Unwrap() error {
	return ErrConfiguration
}

type Config struct {
	LogLevel int    `yaml:"log_level"`
	DataDir  string `yaml:"data_dir"`
	Seed     int64  `yaml:"seed"`

	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Vocab      VocabConfig      `yaml:"vocab"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Preprocess PreprocessConfig `yaml:"preprocess"`
	Split      SplitConfig      `yaml:"split"`
	Download   DownloadConfig   `yaml:"download"`
	Generate   GenerateConfig   `yaml:"generate"`
	Audio      AudioConfig      `yaml:"audio"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type StorageConfig struct {
	// Type of storage: "local" or "gcs"
	Type    string `yaml:"type"`
	TempDir string `yaml:"temp_dir"`

	// GCS options
	Bucket          string `yaml:"bucket"`
	ObjectPrefix    string `yaml:"object_prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

type VocabConfig struct {
	Instruments []string `yaml:"instruments"`
	MinPitch    int      `yaml:"min_pitch"`
	MaxPitch    int      `yaml:"max_pitch"`
	MaxWait     int      `yaml:"max_wait"`
	Exclude     []string `yaml:"exclude"`
	// Snapshot is the vocabulary file, relative to the data directory.
	Snapshot string `yaml:"snapshot"`
}

type PipelineConfig struct {
	Pack           string   `yaml:"pack"`
	Target         string   `yaml:"target"`
	PadLength      int      `yaml:"pad_length"`
	Cap            int      `yaml:"cap"`
	TruncatePolicy string   `yaml:"truncate_policy"`
	Allowed        []string `yaml:"allowed"`
}

type PreprocessConfig struct {
	// Kind of corpus: "midi" or "audio"
	Kind            string `yaml:"kind"`
	Workers         int    `yaml:"workers"`
	StepsPerQuarter int    `yaml:"steps_per_quarter"`
	Shuffle         bool   `yaml:"shuffle"`
}

type SplitConfig struct {
	Train float64 `yaml:"train"`
	Val   float64 `yaml:"val"`
	Test  float64 `yaml:"test"`
}

type DownloadConfig struct {
	IndexURL   string   `yaml:"index_url"`
	Extensions []string `yaml:"extensions"`
	MaxDepth   int      `yaml:"max_depth"`
	UserAgent  string   `yaml:"user_agent"`
}

type GenerateConfig struct {
	MaxSamples   int      `yaml:"max_samples"`
	PromptLength int      `yaml:"prompt_length"`
	Command      []string `yaml:"command"`
	Device       string   `yaml:"device"`
	OutputDir    string   `yaml:"output_dir"`
}

type AudioConfig struct {
	Dataset string `yaml:"dataset"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	// Unmarshal the YAML data into the struct
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.DataDir == "" {
		c.DataDir = "data"
	}

	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}

	if c.Storage.Type == "" {
		c.Storage.Type = "local"
	}
	if c.Storage.TempDir == "" {
		c.Storage.TempDir = os.TempDir()
	}

	if len(c.Vocab.Instruments) == 0 {
		c.Vocab.Instruments = event.AllInstruments()
	}
	if c.Vocab.MaxPitch == 0 {
		c.Vocab.MaxPitch = 127
	}
	if c.Vocab.MaxWait == 0 {
		c.Vocab.MaxWait = 32
	}
	if c.Vocab.Snapshot == "" {
		c.Vocab.Snapshot = "vocab.json"
	}

	if c.Pipeline.Pack == "" {
		c.Pipeline.Pack = "standard"
	}
	if c.Pipeline.Target == "" {
		c.Pipeline.Target = "Piano"
	}
	if c.Pipeline.PadLength == 0 {
		c.Pipeline.PadLength = 200
	}
	if c.Pipeline.Cap == 0 {
		c.Pipeline.Cap = 1024
	}
	if c.Pipeline.TruncatePolicy == "" {
		c.Pipeline.TruncatePolicy = "truncate_end"
	}
	if len(c.Pipeline.Allowed) == 0 {
		c.Pipeline.Allowed = []string{"Piano", "Guitar", "Bass"}
	}

	if c.Preprocess.Kind == "" {
		c.Preprocess.Kind = "midi"
	}
	if c.Preprocess.Workers == 0 {
		c.Preprocess.Workers = 1
	}
	if c.Preprocess.StepsPerQuarter == 0 {
		c.Preprocess.StepsPerQuarter = 4
	}

	if c.Split == (SplitConfig{}) {
		c.Split = SplitConfig{Train: 0.8, Val: 0.1, Test: 0.1}
	}

	if len(c.Download.Extensions) == 0 {
		c.Download.Extensions = []string{".mid", ".midi"}
	}
	if c.Download.MaxDepth == 0 {
		c.Download.MaxDepth = 1
	}

	if c.Generate.MaxSamples == 0 {
		c.Generate.MaxSamples = 10
	}
	if c.Generate.PromptLength == 0 {
		c.Generate.PromptLength = 64
	}
	if c.Generate.Device == "" {
		c.Generate.Device = "cpu"
	}
	if c.Generate.OutputDir == "" {
		c.Generate.OutputDir = "generated"
	}
}

// Validate rejects settings no command can run with.
func (c *Config) Validate() error {
	if err := c.Split.Validate(); err != nil {
		return err
	}

	switch c.Storage.Type {
	case "local":
	case "gcs":
		if c.Storage.Bucket == "" {
			return &ConfigurationError{Field: "storage.bucket", Reason: "required for gcs storage"}
		}
	default:
		return &ConfigurationError{Field: "storage.type", Reason: fmt.Sprintf("unknown storage type %q", c.Storage.Type)}
	}

	if c.Vocab.MinPitch < 0 || c.Vocab.MaxPitch > 127 || c.Vocab.MinPitch > c.Vocab.MaxPitch {
		return &ConfigurationError{Field: "vocab", Reason: fmt.Sprintf("invalid pitch range %d..%d", c.Vocab.MinPitch, c.Vocab.MaxPitch)}
	}
	if c.Vocab.MaxWait < 0 {
		return &ConfigurationError{Field: "vocab.max_wait", Reason: "must not be negative"}
	}

	switch c.Pipeline.TruncatePolicy {
	case "truncate_end", "error_on_overflow":
	default:
		return &ConfigurationError{Field: "pipeline.truncate_policy", Reason: fmt.Sprintf("unknown policy %q", c.Pipeline.TruncatePolicy)}
	}
	if c.Pipeline.Cap < 1 {
		return &ConfigurationError{Field: "pipeline.cap", Reason: "must be positive"}
	}
	if c.Pipeline.PadLength < 0 {
		return &ConfigurationError{Field: "pipeline.pad_length", Reason: "must not be negative"}
	}

	switch c.Preprocess.Kind {
	case "midi", "audio":
	default:
		return &ConfigurationError{Field: "preprocess.kind", Reason: fmt.Sprintf("unknown corpus kind %q", c.Preprocess.Kind)}
	}
	if c.Preprocess.Workers < 1 {
		return &ConfigurationError{Field: "preprocess.workers", Reason: "must be at least 1"}
	}

	return nil
}

// Validate checks the fractions are non-negative and sum to 1.
func (s SplitConfig) Validate() error {
	if s.Train < 0 || s.Val < 0 || s.Test < 0 {
		return &ConfigurationError{Field: "split", Reason: "fractions must not be negative"}
	}
	if sum := s.Train + s.Val + s.Test; math.Abs(sum-1) > 1e-9 {
		return &ConfigurationError{Field: "split", Reason: fmt.Sprintf("fractions sum to %g, want 1", sum)}
	}
	return nil
}
