package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// AgentOutputsDir holds one file per raw model output inside a run directory
const AgentOutputsDir = "agent_outputs"

type agentOutput struct {
	Agent      string    `json:"agent"`
	Attempt    int       `json:"attempt"`
	RecordedAt time.Time `json:"recorded_at"`
	Raw        string    `json:"raw"`
}

// AgentLog writes every raw agent output to
// <run dir>/agent_outputs/<agent>_<attempt>_<timestamp>.json. Outputs recorded
// before the run directory is known are buffered until SetDir.
type AgentLog struct {
	mu      sync.Mutex
	dir     string
	pending []agentOutput
	now     func() time.Time
}

// NewAgentLog returns a log writing under runDir, which may be empty for now
func NewAgentLog(runDir string) *AgentLog {
	return &AgentLog{dir: runDir, now: time.Now}
}

// Record implements agent.Recorder
func (l *AgentLog) Record(agentName string, attempt int, raw string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := agentOutput{Agent: agentName, Attempt: attempt, RecordedAt: l.now().UTC(), Raw: raw}
	if l.dir == "" {
		l.pending = append(l.pending, out)
		return nil
	}
	return l.write(out)
}

// SetDir points the log at a run directory and flushes buffered outputs
func (l *AgentLog) SetDir(runDir string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.dir = runDir
	pending := l.pending
	l.pending = nil
	for _, out := range pending {
		if err := l.write(out); err != nil {
			return err
		}
	}
	return nil
}

func (l *AgentLog) write(out agentOutput) error {
	dir := filepath.Join(l.dir, AgentOutputsDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create agent output directory: %w", err)
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	name := fmt.Sprintf("%s_%d_%s.json", out.Agent, out.Attempt, out.RecordedAt.Format("20060102T150405.000000000"))
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}
