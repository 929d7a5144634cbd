package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// Config represents the application configuration.
type Config struct {
	Name               string        `json:"name"`
	AnthropicAPIKey    string        `json:"anthropic_api_key"`
	ResumeLocation     string        `json:"resume_location"`
	ResumeDataLocation string        `json:"resume_data_location,omitempty"`
	Models             ModelsConfig  `json:"models,omitempty"`
	AI                 AIConfig      `json:"ai,omitempty"`
	Defaults           DefaultConfig `json:"defaults"`
}

// ModelsConfig holds model selection for generation and judging.
type ModelsConfig struct {
	Generation string `json:"generation,omitempty"`
	Judge      string `json:"judge,omitempty"`
}

// AIConfig holds multi-candidate generation settings.
type AIConfig struct {
	NumGenerations        int     `json:"num_generations,omitempty"`
	DisableJudge          bool    `json:"disable_judge,omitempty"`
	MaxTokens             int     `json:"max_tokens,omitempty"`
	Temperature           float64 `json:"temperature,omitempty"`
	RequestTimeoutSeconds int     `json:"request_timeout_seconds,omitempty"`
	MaxParallel           int     `json:"max_parallel,omitempty"`
}

// DefaultConfig holds default values for commands.
type DefaultConfig struct {
	OutputDir string `json:"output_dir"`
}

// GetGenerationModel returns the generation model or default if not specified.
func (c *Config) GetGenerationModel() (model string) {
	if c.Models.Generation != "" {
		model = c.Models.Generation
		return model
	}
	model = "claude-sonnet-4-20250514" // Default to Sonnet 4
	return model
}

// GetJudgeModel returns the judge model or default if not specified.
func (c *Config) GetJudgeModel() (model string) {
	if c.Models.Judge != "" {
		model = c.Models.Judge
		return model
	}
	model = c.GetGenerationModel()
	return model
}

// GetNumGenerations returns the candidate count or default if not specified.
func (c *Config) GetNumGenerations() (n int) {
	if c.AI.NumGenerations > 0 {
		n = c.AI.NumGenerations
		return n
	}
	n = 3
	return n
}

// GetMaxTokens returns the per-request token limit or default if not specified.
func (c *Config) GetMaxTokens() (n int) {
	if c.AI.MaxTokens > 0 {
		n = c.AI.MaxTokens
		return n
	}
	n = 4096
	return n
}

// GetTemperature returns the sampling temperature or default if not specified.
func (c *Config) GetTemperature() (temp float64) {
	if c.AI.Temperature > 0 {
		temp = c.AI.Temperature
		return temp
	}
	temp = 0.7
	return temp
}

// GetRequestTimeout returns the per-request timeout or default if not specified.
func (c *Config) GetRequestTimeout() (timeout time.Duration) {
	if c.AI.RequestTimeoutSeconds > 0 {
		timeout = time.Duration(c.AI.RequestTimeoutSeconds) * time.Second
		return timeout
	}
	timeout = 120 * time.Second
	return timeout
}

// GetMaxParallel returns the generation concurrency limit or default if not specified.
func (c *Config) GetMaxParallel() (n int) {
	if c.AI.MaxParallel > 0 {
		n = c.AI.MaxParallel
		return n
	}
	n = 3
	return n
}

// DefaultPath returns the default config file location.
func DefaultPath() (path string, err error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return path, err
	}

	path = filepath.Join(homeDir, ".resume-forge", "config.json")

	return path, err
}

// Load reads configuration from file with environment variable overrides.
func Load(configPath string) (cfg Config, err error) {
	// Determine config file location
	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	// Read config file
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			err = errors.Errorf("config file not found: %s (run 'resume-forge init' to create)", path)
			return cfg, err
		}
		err = errors.Wrapf(err, "failed to read config file: %s", path)
		return cfg, err
	}

	// Parse JSON
	err = json.Unmarshal(data, &cfg)
	if err != nil {
		err = errors.Wrapf(err, "failed to parse config file: %s", path)
		return cfg, err
	}

	// Override with environment variable if set
	if apiKey := os.Getenv("ANTHROPIC_API_KEY"); apiKey != "" {
		cfg.AnthropicAPIKey = apiKey
	}

	// Validate required fields
	err = cfg.Validate()
	if err != nil {
		err = errors.Wrap(err, "config validation failed")
		return cfg, err
	}

	return cfg, err
}

// Validate checks that all required configuration is present.
func (c *Config) Validate() (err error) {
	if c.Name == "" {
		err = errors.New("name is required in config")
		return err
	}

	if c.AnthropicAPIKey == "" {
		err = errors.New("anthropic_api_key is required (set in config or ANTHROPIC_API_KEY env var)")
		return err
	}

	if c.ResumeLocation == "" {
		err = errors.New("resume_location is required in config")
		return err
	}

	// Check resume file exists
	_, err = os.Stat(c.ResumeLocation)
	if os.IsNotExist(err) {
		err = errors.Errorf("resume file not found: %s", c.ResumeLocation)
		return err
	}

	// Resume data is optional, but if set the file must exist
	if c.ResumeDataLocation != "" {
		_, err = os.Stat(c.ResumeDataLocation)
		if os.IsNotExist(err) {
			err = errors.Errorf("resume data file not found: %s", c.ResumeDataLocation)
			return err
		}
	}

	// Set default output_dir if not specified
	if c.Defaults.OutputDir == "" {
		c.Defaults.OutputDir = "./applications"
	}

	return err
}

// InitConfig creates a default configuration file.
func InitConfig(configPath string) (err error) {
	// Determine config file location
	path := configPath
	if path == "" {
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	// Create directory if it doesn't exist
	dir := filepath.Dir(path)
	err = os.MkdirAll(dir, 0750)
	if err != nil {
		err = errors.Wrapf(err, "failed to create config directory: %s", dir)
		return err
	}

	// Check if file already exists
	_, err = os.Stat(path)
	if err == nil {
		err = errors.Errorf("config file already exists: %s", path)
		return err
	}

	var homeDir string
	homeDir, err = os.UserHomeDir()
	if err != nil {
		err = errors.Wrap(err, "failed to get user home directory")
		return err
	}

	defaultConfig := Config{
		Name:               "your-name",
		AnthropicAPIKey:    "sk-ant-api03-...",
		ResumeLocation:     filepath.Join(homeDir, ".resume-forge", "resume.txt"),
		ResumeDataLocation: filepath.Join(homeDir, ".resume-forge", "resume.json"),
		AI: AIConfig{
			NumGenerations:        3,
			MaxTokens:             4096,
			Temperature:           0.7,
			RequestTimeoutSeconds: 120,
			MaxParallel:           3,
		},
		Defaults: DefaultConfig{
			OutputDir: filepath.Join(homeDir, "Documents", "Applications"),
		},
	}

	// Write to file
	var data []byte
	data, err = json.MarshalIndent(defaultConfig, "", "  ")
	if err != nil {
		err = errors.Wrap(err, "failed to marshal default config")
		return err
	}

	err = os.WriteFile(path, data, 0600)
	if err != nil {
		err = errors.Wrapf(err, "failed to write config file: %s", path)
		return err
	}

	return err
}
