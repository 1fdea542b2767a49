// Package config loads CLI configuration from an optional file, the
// environment and built-in defaults, in increasing order of precedence:
// defaults, then file, then environment. Flags are applied by the caller.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonathan/resume-tailor/internal/llm"
)

// Orchestrator kinds
const (
	OrchestratorStandard = "standard"
	OrchestratorDynamic  = "dynamic"
)

// Defaults for retry and quality settings
const (
	DefaultFabricationRetries = 2
	DefaultQARetries          = 1
	DefaultQAThreshold        = 80
	DefaultMaxAttempts        = 3
	DefaultAgentTimeout       = 2 * time.Minute
	DefaultStateDir           = "runs"
)

// Config is the CLI configuration. Zero values mean "not set" and are filled by
// MergeWithDefaults, except the retry counts where zero is meaningful.
type Config struct {
	// LLM
	Provider string            `json:"provider,omitempty" yaml:"provider,omitempty"`
	Models   map[string]string `json:"models,omitempty" yaml:"models,omitempty"` // tier -> model name
	APIKey   string            `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Inputs and outputs
	Candidates   string `json:"candidates,omitempty" yaml:"candidates,omitempty"` // candidate database path
	StateDir     string `json:"state_dir,omitempty" yaml:"state_dir,omitempty"`
	RegistryPath string `json:"registry_path,omitempty" yaml:"registry_path,omitempty"`
	CatalogPath  string `json:"catalog_path,omitempty" yaml:"catalog_path,omitempty"`

	// Orchestration
	Orchestrator       string   `json:"orchestrator,omitempty" yaml:"orchestrator,omitempty"`
	Role               string   `json:"role,omitempty" yaml:"role,omitempty"` // role for the standard orchestrator
	MaxAttempts        int      `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty"`
	AgentTimeout       Duration `json:"agent_timeout,omitempty" yaml:"agent_timeout,omitempty"`
	FabricationRetries *int     `json:"fabrication_retries,omitempty" yaml:"fabrication_retries,omitempty"`
	QARetries          *int     `json:"qa_retries,omitempty" yaml:"qa_retries,omitempty"`
	QAThreshold        *int     `json:"qa_threshold,omitempty" yaml:"qa_threshold,omitempty"`
	SkipStyleEdit      bool     `json:"skip_style_edit,omitempty" yaml:"skip_style_edit,omitempty"`

	// Ingestion, rendering and storage
	UseBrowser  bool         `json:"use_browser,omitempty" yaml:"use_browser,omitempty"`
	Render      RenderConfig `json:"render,omitempty" yaml:"render,omitempty"`
	DatabaseURL string       `json:"database_url,omitempty" yaml:"database_url,omitempty"`
	Verbose     bool         `json:"verbose,omitempty" yaml:"verbose,omitempty"`
}

// RenderConfig controls PDF output
type RenderConfig struct {
	ChromePath  string   `json:"chrome_path,omitempty" yaml:"chrome_path,omitempty"`
	PaperWidth  float64  `json:"paper_width,omitempty" yaml:"paper_width,omitempty"` // inches
	PaperHeight float64  `json:"paper_height,omitempty" yaml:"paper_height,omitempty"`
	Timeout     Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// Defaults returns the built-in configuration
func Defaults() Config {
	fab, qa, threshold := DefaultFabricationRetries, DefaultQARetries, DefaultQAThreshold
	return Config{
		Provider:           string(llm.ProviderGemini),
		StateDir:           DefaultStateDir,
		Orchestrator:       OrchestratorDynamic,
		MaxAttempts:        DefaultMaxAttempts,
		AgentTimeout:       Duration{DefaultAgentTimeout},
		FabricationRetries: &fab,
		QARetries:          &qa,
		QAThreshold:        &threshold,
	}
}

// Load builds the effective configuration: defaults, then the file at path when
// path is not empty, then environment overrides. The result is validated.
func Load(path string) (*Config, error) {
	cfg := Config{}
	if path != "" {
		fileCfg, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		cfg = *fileCfg
	}

	merged := cfg.MergeWithDefaults(Defaults())
	merged.ApplyEnv()
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

// LoadConfig loads configuration from a JSON or YAML file, chosen by extension.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}
	return &cfg, nil
}

// Validate checks that the configuration has usable values.
func (c *Config) Validate() error {
	if _, err := llm.ParseProvider(c.Provider); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	switch c.Orchestrator {
	case "", OrchestratorStandard, OrchestratorDynamic:
	default:
		return fmt.Errorf("config error: 'orchestrator' must be %q or %q, got %q", OrchestratorStandard, OrchestratorDynamic, c.Orchestrator)
	}
	for tier := range c.Models {
		switch llm.ModelTier(tier) {
		case llm.TierLite, llm.TierStandard, llm.TierAdvanced:
		default:
			return fmt.Errorf("config error: unknown model tier %q", tier)
		}
	}
	if c.MaxAttempts < 0 {
		return fmt.Errorf("config error: 'max_attempts' must be non-negative")
	}
	if c.AgentTimeout.Duration < 0 {
		return fmt.Errorf("config error: 'agent_timeout' must be non-negative")
	}
	if c.FabricationRetries != nil && *c.FabricationRetries < 0 {
		return fmt.Errorf("config error: 'fabrication_retries' must be non-negative")
	}
	if c.QARetries != nil && *c.QARetries < 0 {
		return fmt.Errorf("config error: 'qa_retries' must be non-negative")
	}
	if c.QAThreshold != nil && (*c.QAThreshold < 0 || *c.QAThreshold > 100) {
		return fmt.Errorf("config error: 'qa_threshold' must be between 0 and 100")
	}

	for name, p := range map[string]string{"candidates": c.Candidates, "registry_path": c.RegistryPath, "catalog_path": c.CatalogPath} {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); os.IsNotExist(err) {
			return fmt.Errorf("config error: '%s' file not found: %s", name, p)
		}
	}
	return nil
}

// MergeWithDefaults returns a copy with unset fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Provider == "" {
		result.Provider = defaults.Provider
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.Candidates == "" {
		result.Candidates = defaults.Candidates
	}
	if result.StateDir == "" {
		result.StateDir = defaults.StateDir
	}
	if result.RegistryPath == "" {
		result.RegistryPath = defaults.RegistryPath
	}
	if result.CatalogPath == "" {
		result.CatalogPath = defaults.CatalogPath
	}
	if result.Orchestrator == "" {
		result.Orchestrator = defaults.Orchestrator
	}
	if result.Role == "" {
		result.Role = defaults.Role
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}

	if result.MaxAttempts == 0 {
		result.MaxAttempts = defaults.MaxAttempts
	}
	if result.AgentTimeout.Duration == 0 {
		result.AgentTimeout = defaults.AgentTimeout
	}
	if result.QAThreshold == nil {
		result.QAThreshold = defaults.QAThreshold
	}
	if result.FabricationRetries == nil {
		result.FabricationRetries = defaults.FabricationRetries
	}
	if result.QARetries == nil {
		result.QARetries = defaults.QARetries
	}

	if len(defaults.Models) > 0 {
		models := make(map[string]string, len(defaults.Models)+len(result.Models))
		for k, v := range defaults.Models {
			models[k] = v
		}
		for k, v := range result.Models {
			models[k] = v
		}
		result.Models = models
	}

	if result.Render.ChromePath == "" {
		result.Render.ChromePath = defaults.Render.ChromePath
	}
	if result.Render.PaperWidth == 0 {
		result.Render.PaperWidth = defaults.Render.PaperWidth
	}
	if result.Render.PaperHeight == 0 {
		result.Render.PaperHeight = defaults.Render.PaperHeight
	}
	if result.Render.Timeout.Duration == 0 {
		result.Render.Timeout = defaults.Render.Timeout
	}

	result.SkipStyleEdit = result.SkipStyleEdit || defaults.SkipStyleEdit
	result.UseBrowser = result.UseBrowser || defaults.UseBrowser
	result.Verbose = result.Verbose || defaults.Verbose
	return result
}

// LLMConfig converts the provider and model overrides into an llm.Config
func (c *Config) LLMConfig() (*llm.Config, error) {
	provider, err := llm.ParseProvider(c.Provider)
	if err != nil {
		return nil, err
	}
	cfg := llm.DefaultConfig()
	cfg.Provider = provider
	for tier, model := range c.Models {
		cfg = cfg.WithModel(llm.ModelTier(tier), model)
	}
	return cfg, nil
}

// FabricationRetryCount returns the configured retries or the default
func (c *Config) FabricationRetryCount() int {
	if c.FabricationRetries == nil {
		return DefaultFabricationRetries
	}
	return *c.FabricationRetries
}

// QARetryCount returns the configured retries or the default
func (c *Config) QARetryCount() int {
	if c.QARetries == nil {
		return DefaultQARetries
	}
	return *c.QARetries
}

// QAThresholdScore returns the configured passing score or the default
func (c *Config) QAThresholdScore() int {
	if c.QAThreshold == nil {
		return DefaultQAThreshold
	}
	return *c.QAThreshold
}
