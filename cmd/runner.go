package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Sidd1721986/Elite-App/internal/services"
	"github.com/Sidd1721986/Elite-App/internal/shared"
	"github.com/Sidd1721986/Elite-App/internal/state"
	"github.com/Sidd1721986/Elite-App/internal/storage"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The storage backend, HTTP client, services and stores are built lazily on first use so that
// commands like `setup config` work without a reachable backend.
type Runner struct {
	config     *shared.Config
	configPath string
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer

	storage storage.Store
	client  *services.Client
	jobsAPI *services.JobService
	authAPI *services.AuthService
	auth    *state.AuthStore
	jobs    *state.JobStore
	lane    *state.LaneScheduler
}

// loadSettle delays the network phase of a load so the saved snapshot renders first.
const loadSettle = 25 * time.Millisecond

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Storage    storage.Store
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		storage:    opts.Storage,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, jobsCommand, vendorsCommand, cacheCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the configuration named by --config and applies --log-level.
//
// A missing config file is not an error; the embedded defaults are used instead.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if path := cmd.String("config"); path != "" {
		r.configPath = path
	}

	if r.configPath != "" {
		if _, err := os.Stat(r.configPath); err == nil {
			config, err := shared.LoadConfig(r.configPath)
			if err != nil {
				return ctx, err
			}
			r.config = config
		} else {
			r.logger.Debug("config file not found, using defaults", "path", r.configPath)
		}
	}

	if level := cmd.String("log-level"); level != "" {
		r.config.Log.Level = level
	}
	lvl, err := shared.ParseLogLevel(r.config.Log.Level)
	if err != nil {
		return ctx, err
	}
	shared.SetLogLevel(r.logger, lvl)

	return ctx, nil
}

// After releases whatever [Runner.session] opened.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	return r.Close()
}

// Close stops the job store and closes the storage backend.
func (r *Runner) Close() error {
	var errs []error
	if r.jobs != nil {
		errs = append(errs, r.jobs.Close())
		r.jobs = nil
	}
	if r.lane != nil {
		r.lane.Close()
		r.lane = nil
	}
	if r.storage != nil {
		errs = append(errs, r.storage.Close())
		r.storage = nil
	}
	return errors.Join(errs...)
}

// SetLogger swaps the logger used by the runner and anything it builds afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// session builds the storage, client, services and stores and restores the persisted session.
func (r *Runner) session(ctx context.Context) error {
	if r.jobs != nil {
		return nil
	}
	if err := r.config.Validate(); err != nil {
		return err
	}

	if r.storage == nil {
		st, err := storage.Open(ctx, r.config.Storage, r.logger)
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		r.storage = st
	}

	r.client = services.NewClient(services.ClientOpts{
		BaseURL:    r.config.API.BaseURL,
		HTTPClient: r.httpClient,
		Storage:    r.storage,
		TTL:        r.config.API.CacheTTL(),
		Timeout:    r.config.API.Timeout(),
		RateLimit:  r.config.API.RateLimit,
		Burst:      r.config.API.Burst,
		Logger:     shared.WithLogger(r.logger, "component", "client"),
	})
	r.jobsAPI = services.NewJobService(r.client, r.logger)
	r.authAPI = services.NewAuthService(r.client, r.storage, r.logger)
	r.auth = state.NewAuthStore(r.authAPI, r.logger)
	r.lane = state.NewLaneScheduler(loadSettle)
	r.jobs = state.NewJobStore(state.JobStoreOpts{
		API:       r.jobsAPI,
		Storage:   r.storage,
		Session:   r.auth,
		Scheduler: r.lane,
		Logger:    shared.WithLogger(r.logger, "component", "jobs"),
	})

	return r.auth.CheckSession(ctx)
}

// signedIn is [Runner.session] plus a check that someone is logged in.
func (r *Runner) signedIn(ctx context.Context) error {
	if err := r.session(ctx); err != nil {
		return err
	}
	if !r.auth.IsAuthenticated(ctx) {
		return fmt.Errorf("%w: run 'elite auth login' first", shared.ErrNotAuthenticated)
	}
	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeBytes(data []byte) error {
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
