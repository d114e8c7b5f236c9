package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/eqviz/internal/dashboard"
	"github.com/desertthunder/eqviz/internal/models"
	"github.com/desertthunder/eqviz/internal/repositories"
	"github.com/desertthunder/eqviz/internal/services"
	"github.com/desertthunder/eqviz/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// Storage and the API client are opened lazily so commands like `setup config` never touch them.
type Runner struct {
	config     *shared.Config
	configPath string
	api        services.Client
	store      models.Store
	db         *sql.DB
	dash       *dashboard.Dashboard
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
	input      io.Reader
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	API        services.Client
	Store      models.Store
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
	Input      io.Reader
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}

	return &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		api:        opts.API,
		store:      opts.Store,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
		input:      opts.Input,
	}
}

// SetLogger replaces the logger used by the runner and any components created afterwards.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// Before loads configuration ahead of any command.
//
// A config passed through [RunnerOpts] wins over the file. A missing file at the default path falls back to the embedded
// defaults; a missing file at an explicit path is an error.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	if r.config == nil {
		path := cmd.String("config")
		r.configPath = path

		config := shared.DefaultConfig()
		if _, err := os.Stat(path); err == nil {
			loaded, err := shared.LoadConfig(path)
			if err != nil {
				return ctx, err
			}
			config = loaded
		} else if cmd.IsSet("config") {
			return ctx, fmt.Errorf("%w: %s", shared.ErrMissingConfig, path)
		}
		r.config = config
	}

	r.config.ApplyEnv()
	if err := r.config.Validate(); err != nil {
		return ctx, err
	}

	level := r.config.Log.Level
	if cmd.IsSet("log-level") {
		level = cmd.String("log-level")
	}
	shared.SetLogLevel(r.logger, shared.ParseLevel(level))
	return ctx, nil
}

// After releases the storage connection opened by a command.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	if r.db == nil {
		return nil
	}
	err := r.db.Close()
	r.db = nil
	return err
}

// dashboard opens storage and the API client on first use.
func (r *Runner) dashboard() (*dashboard.Dashboard, error) {
	if r.dash != nil {
		return r.dash, nil
	}
	if r.config == nil {
		r.config = shared.DefaultConfig()
	}

	if r.store == nil {
		db, err := shared.OpenStorage(r.config.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to open storage: %w", err)
		}
		r.db = db
		r.store = repositories.NewKVStore(db)
	}

	if r.api == nil {
		client := r.httpClient
		if client == nil {
			client = &http.Client{Timeout: time.Duration(r.config.API.TimeoutSeconds) * time.Second}
		}

		var opts []services.Option
		if rps := r.config.API.RequestsPerSecond; rps > 0 {
			opts = append(opts, services.WithRateLimit(rps))
		}
		r.api = services.NewAPIService(r.config.API.BaseURL, client, opts...)
	}

	r.dash = dashboard.New(r.store, r.api, r.logger)
	return r.dash, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, uploadCommand, uploadsCommand, chartCommand, exportCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
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

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
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
