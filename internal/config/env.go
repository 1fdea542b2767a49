package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables read by ApplyEnv
const (
	EnvAPIKey       = "GEMINI_API_KEY"
	EnvProvider     = "LLM_PROVIDER"
	EnvStateDir     = "RESUME_STATE_DIR"
	EnvDatabaseURL  = "DATABASE_URL"
	EnvAgentTimeout = "AGENT_TIMEOUT"
	EnvQAThreshold  = "QA_THRESHOLD"
	EnvChromePath   = "CHROME_PATH"
)

// LoadDotEnv loads .env files into the environment. Missing files are ignored
// and variables already set win.
func LoadDotEnv(files ...string) {
	_ = godotenv.Load(files...)
}

// ApplyEnv overrides fields with any environment variables that are set
func (c *Config) ApplyEnv() {
	c.APIKey = getEnv(EnvAPIKey, c.APIKey)
	c.Provider = getEnv(EnvProvider, c.Provider)
	c.StateDir = getEnv(EnvStateDir, c.StateDir)
	c.DatabaseURL = getEnv(EnvDatabaseURL, c.DatabaseURL)
	c.AgentTimeout.Duration = getEnvAsDuration(EnvAgentTimeout, c.AgentTimeout.Duration)
	if v, ok := lookupEnvInt(EnvQAThreshold); ok {
		c.QAThreshold = &v
	}
	c.Render.ChromePath = getEnv(EnvChromePath, c.Render.ChromePath)
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// lookupEnvInt reports whether key holds an integer, so zero stays expressible
func lookupEnvInt(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return i, true
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
