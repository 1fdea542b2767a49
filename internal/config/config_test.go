package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/resume-tailor/internal/llm"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func clearEnv(t *testing.T) {
	for _, key := range []string{EnvAPIKey, EnvProvider, EnvStateDir, EnvDatabaseURL, EnvAgentTimeout, EnvQAThreshold, EnvChromePath} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_JSON(t *testing.T) {
	path := writeConfig(t, "config.json", `{
		"provider": "genai",
		"models": {"advanced": "gemini-exp"},
		"orchestrator": "standard",
		"role": "backend engineer",
		"agent_timeout": "90s",
		"fabrication_retries": 0,
		"qa_threshold": 85,
		"render": {"paper_width": 8.27, "timeout": 30}
	}`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "genai", cfg.Provider)
	assert.Equal(t, "gemini-exp", cfg.Models["advanced"])
	assert.Equal(t, OrchestratorStandard, cfg.Orchestrator)
	assert.Equal(t, 90*time.Second, cfg.AgentTimeout.Duration)
	require.NotNil(t, cfg.FabricationRetries)
	assert.Equal(t, 0, *cfg.FabricationRetries)
	assert.Nil(t, cfg.QARetries)
	assert.Equal(t, 85, cfg.QAThresholdScore())
	assert.Equal(t, 30*time.Second, cfg.Render.Timeout.Duration)
}

func TestLoadConfig_YAML(t *testing.T) {
	path := writeConfig(t, "config.yaml", "state_dir: out\nqa_retries: 3\nagent_timeout: 1m\nskip_style_edit: true\n")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "out", cfg.StateDir)
	assert.Equal(t, 3, cfg.QARetryCount())
	assert.Equal(t, time.Minute, cfg.AgentTimeout.Duration)
	assert.True(t, cfg.SkipStyleEdit)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig("")
	assert.Error(t, err)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = LoadConfig(writeConfig(t, "config.json", "{ invalid json }"))
	assert.ErrorContains(t, err, "failed to parse config JSON")

	_, err = LoadConfig(writeConfig(t, "config.json", `{"agent_timeout": "soon"}`))
	assert.ErrorContains(t, err, "invalid duration")
}

func TestMergeWithDefaults(t *testing.T) {
	zero := 0
	cfg := Config{
		StateDir:           "custom",
		Models:             map[string]string{"lite": "small"},
		FabricationRetries: &zero,
	}
	defaults := Defaults()
	defaults.Models = map[string]string{"lite": "default-lite", "advanced": "default-pro"}

	merged := cfg.MergeWithDefaults(defaults)
	assert.Equal(t, "custom", merged.StateDir)
	assert.Equal(t, OrchestratorDynamic, merged.Orchestrator)
	assert.Equal(t, 0, merged.FabricationRetryCount())
	assert.Equal(t, DefaultQARetries, merged.QARetryCount())
	assert.Equal(t, DefaultQAThreshold, merged.QAThresholdScore())
	assert.Equal(t, DefaultAgentTimeout, merged.AgentTimeout.Duration)
	assert.Equal(t, map[string]string{"lite": "small", "advanced": "default-pro"}, merged.Models)
	assert.Equal(t, "small", cfg.Models["lite"])
}

func TestValidate(t *testing.T) {
	negative, over := -1, 101
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"provider", func(c *Config) { c.Provider = "openai" }, "unknown LLM provider"},
		{"orchestrator", func(c *Config) { c.Orchestrator = "fancy" }, "orchestrator"},
		{"model tier", func(c *Config) { c.Models = map[string]string{"huge": "x"} }, "unknown model tier"},
		{"retries", func(c *Config) { c.QARetries = &negative }, "qa_retries"},
		{"threshold", func(c *Config) { c.QAThreshold = &over }, "qa_threshold"},
		{"candidates", func(c *Config) { c.Candidates = "/nonexistent/candidates.yaml" }, "candidates"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "config.json", `{"state_dir": "from-file", "qa_threshold": 70, "api_key": "file-key"}`)
	t.Setenv(EnvStateDir, "from-env")
	t.Setenv(EnvAgentTimeout, "45s")
	t.Setenv(EnvQAThreshold, "not-a-number")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.StateDir)
	assert.Equal(t, 45*time.Second, cfg.AgentTimeout.Duration)
	assert.Equal(t, 70, cfg.QAThresholdScore())
	assert.Equal(t, "file-key", cfg.APIKey)
}

func TestQAThreshold_ZeroIsKept(t *testing.T) {
	zero := 0
	cfg := Config{QAThreshold: &zero}
	merged := cfg.MergeWithDefaults(Defaults())
	assert.Equal(t, 0, merged.QAThresholdScore())

	clearEnv(t)
	path := writeConfig(t, "config.json", `{"qa_threshold": 70}`)
	t.Setenv(EnvQAThreshold, "0")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.QAThresholdScore())
}

func TestLoad_NoFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvProvider, "bogus")

	_, err := Load("")
	assert.ErrorContains(t, err, "unknown LLM provider")
}

func TestLLMConfig(t *testing.T) {
	cfg := Defaults()
	cfg.Provider = "genai"
	cfg.Models = map[string]string{"advanced": "gemini-exp"}

	llmCfg, err := cfg.LLMConfig()
	require.NoError(t, err)
	assert.Equal(t, llm.ProviderGenAI, llmCfg.Provider)
	assert.Equal(t, "gemini-exp", llmCfg.GetModel(llm.TierAdvanced))
	assert.Equal(t, "gemini-2.5-flash-lite", llmCfg.GetModel(llm.TierLite))
}
