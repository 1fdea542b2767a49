package main

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/jonathan/resume-tailor/internal/config"
	"github.com/jonathan/resume-tailor/internal/db"
	"github.com/jonathan/resume-tailor/internal/experience"
	"github.com/jonathan/resume-tailor/internal/llm"
	"github.com/jonathan/resume-tailor/internal/observability"
	"github.com/jonathan/resume-tailor/internal/pipeline"
	"github.com/jonathan/resume-tailor/internal/schemas"
	"github.com/jonathan/resume-tailor/internal/types"
	"github.com/jonathan/resume-tailor/internal/workflow"
)

// flags shared by every command; they override the config file and environment
var (
	flagConfig        string
	flagVerbose       bool
	flagStateDir      string
	flagCandidates    string
	flagProvider      string
	flagAPIKey        string
	flagOrchestrator  string
	flagRole          string
	flagDatabaseURL   string
	flagQAThreshold   int
	flagSkipStyleEdit bool
	flagUseBrowser    bool
)

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&flagConfig, "config", "", "Path to a JSON or YAML config file (values can be overridden by other flags)")
	f.BoolVarP(&flagVerbose, "verbose", "v", false, "Print debug logs")
	f.StringVar(&flagStateDir, "state-dir", "", "Parent directory of run directories (default \"runs\", env RESUME_STATE_DIR)")
	f.StringVar(&flagCandidates, "candidates", "", "Path to the candidate database (JSON or YAML)")
	f.StringVar(&flagProvider, "provider", "", "LLM provider: gemini or genai (env LLM_PROVIDER)")
	f.StringVar(&flagAPIKey, "api-key", "", "LLM API key (optional, defaults to GEMINI_API_KEY env var)")
	f.StringVar(&flagOrchestrator, "orchestrator", "", "standard (static workflow, single selector) or dynamic (auto-configured, parallel selection)")
	f.StringVar(&flagRole, "role", "", "Role category for the standard orchestrator, overriding the analyzed one")
	f.StringVar(&flagDatabaseURL, "db-url", "", "PostgreSQL URL for the optional run mirror (defaults to DATABASE_URL env var)")
	f.IntVar(&flagQAThreshold, "qa-threshold", 0, "Minimum quality score before the run is flagged (default 80)")
	f.BoolVar(&flagSkipStyleEdit, "skip-style-edit", false, "Disable the style editor agent")
	f.BoolVar(&flagUseBrowser, "use-browser", false, "Re-render job pages with headless Chrome when the fetched text is too short")
}

// app is the configured environment a command runs in
type app struct {
	cfg     *config.Config
	logger  *slog.Logger
	printer *observability.Printer
	closers []func() error
}

// newApp loads configuration, applies flag overrides and builds the logger.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load config")
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &app{
		cfg:     cfg,
		logger:  newLogger(cmd.ErrOrStderr(), cfg.Verbose),
		printer: observability.NewPrinter(cmd.OutOrStdout()),
	}, nil
}

// applyFlags copies explicitly set flags over the loaded configuration
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("verbose") {
		cfg.Verbose = flagVerbose
	}
	if flags.Changed("state-dir") {
		cfg.StateDir = flagStateDir
	}
	if flags.Changed("candidates") {
		cfg.Candidates = flagCandidates
	}
	if flags.Changed("provider") {
		cfg.Provider = flagProvider
	}
	if flags.Changed("api-key") {
		cfg.APIKey = flagAPIKey
	}
	if flags.Changed("orchestrator") {
		cfg.Orchestrator = flagOrchestrator
	}
	if flags.Changed("role") {
		cfg.Role = flagRole
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = flagDatabaseURL
	}
	if flags.Changed("qa-threshold") {
		threshold := flagQAThreshold
		cfg.QAThreshold = &threshold
	}
	if flags.Changed("skip-style-edit") {
		cfg.SkipStyleEdit = flagSkipStyleEdit
	}
	if flags.Changed("use-browser") {
		cfg.UseBrowser = flagUseBrowser
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Close releases everything opened for the command, in reverse order
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.logger.Warn("failed to release resource", "error", err)
		}
	}
	a.closers = nil
}

// configurator builds the workflow configurator from the embedded or
// overridden section registry and template catalog
func (a *app) configurator() (*workflow.Configurator, error) {
	registry, err := schemas.DefaultRegistry()
	if a.cfg.RegistryPath != "" {
		registry, err = schemas.LoadRegistry(a.cfg.RegistryPath)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load section registry")
	}

	catalog, err := workflow.DefaultCatalog()
	if a.cfg.CatalogPath != "" {
		catalog, err = workflow.LoadCatalog(a.cfg.CatalogPath)
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to load workflow catalog")
	}

	return workflow.NewConfigurator(registry, catalog, a.logger)
}

func (a *app) client(ctx context.Context) (llm.Client, error) {
	if a.cfg.APIKey == "" {
		return nil, errors.Errorf("%s environment variable or --api-key flag is required", config.EnvAPIKey)
	}
	llmCfg, err := a.cfg.LLMConfig()
	if err != nil {
		return nil, err
	}
	client, err := llm.NewClient(ctx, llmCfg, a.cfg.APIKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create LLM client")
	}
	a.closers = append(a.closers, client.Close)
	return client, nil
}

// database connects to the configured Postgres and applies migrations. It
// returns nil when no database is configured.
func (a *app) database(ctx context.Context) (*sql.DB, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, nil
	}
	conn, err := db.Connect(ctx, a.cfg.DatabaseURL, db.DefaultOptions())
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	a.closers = append(a.closers, conn.Close)
	if err := db.Migrate(ctx, conn); err != nil {
		return nil, errors.Wrap(err, "failed to migrate database")
	}
	return conn, nil
}

// mirror returns the Postgres run mirror, or nil when there is none. A
// database that cannot be reached is logged and the run continues without it.
func (a *app) mirror(ctx context.Context) pipeline.Mirror {
	conn, err := a.database(ctx)
	if err != nil {
		a.logger.Warn("run mirror disabled", "error", err)
		return nil
	}
	if conn == nil {
		return nil
	}
	return db.NewStore(conn)
}

func (a *app) candidates() (*types.CandidateDatabase, error) {
	if a.cfg.Candidates == "" {
		return nil, errors.New("--candidates (or 'candidates' in the config file) is required")
	}
	cands, err := experience.LoadCandidates(a.cfg.Candidates)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load candidate database")
	}
	return cands, nil
}

// orchestrator wires the configured backend, workflow and mirror into a
// pipeline. Candidates may be nil for commands that only run phases 2 and 3.
func (a *app) orchestrator(ctx context.Context, cands *types.CandidateDatabase, edits []workflow.Edit) (*pipeline.Orchestrator, error) {
	client, err := a.client(ctx)
	if err != nil {
		return nil, err
	}
	configurator, err := a.configurator()
	if err != nil {
		return nil, err
	}

	return pipeline.New(pipeline.Kind(a.cfg.Orchestrator), pipeline.Deps{
		Client:       client,
		Configurator: configurator,
		Candidates:   cands,
		Options:      a.pipelineOptions(edits),
		Mirror:       a.mirror(ctx),
		Logger:       a.logger,
		OnProgress:   a.onProgress,
		Now:          time.Now,
	})
}

// stateWriter returns an orchestrator without a generation backend, for commands
// that only change a saved run
func (a *app) stateWriter(ctx context.Context) (*pipeline.Orchestrator, error) {
	configurator, err := a.configurator()
	if err != nil {
		return nil, err
	}
	return pipeline.New(pipeline.Kind(a.cfg.Orchestrator), pipeline.Deps{
		Configurator: configurator,
		Options:      a.pipelineOptions(nil),
		Mirror:       a.mirror(ctx),
		Logger:       a.logger,
		Now:          time.Now,
	})
}

func (a *app) pipelineOptions(edits []workflow.Edit) pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.FabricationRetries = a.cfg.FabricationRetryCount()
	opts.QARetries = a.cfg.QARetryCount()
	opts.QAThreshold = a.cfg.QAThresholdScore()
	opts.MaxAttempts = a.cfg.MaxAttempts
	opts.AgentTimeout = a.cfg.AgentTimeout.Duration
	opts.BaseDir = a.cfg.StateDir
	opts.SkipStyleEdit = a.cfg.SkipStyleEdit
	opts.Edits = edits
	opts.Role = types.RoleCategory(a.cfg.Role)
	return opts
}

// onProgress prints progress lines and a summary box for each finished stage
func (a *app) onProgress(ev pipeline.ProgressEvent) {
	a.printer.PrintProgress(ev)
	switch v := ev.Content.(type) {
	case *types.JobAnalysis:
		a.printer.PrintJobAnalysis(v)
	case *types.WorkflowConfig:
		a.printer.PrintWorkflowConfig(v)
	case *types.SelectionResult:
		a.printer.PrintSelection(v)
	case *types.ValidationReport:
		a.printer.PrintValidation(v)
	case *types.QAReport:
		a.printer.PrintQAReport(v, a.cfg.QAThresholdScore())
	}
}
