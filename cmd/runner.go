package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rolesplit/internal/classifier"
	"github.com/desertthunder/rolesplit/internal/exporter"
	"github.com/desertthunder/rolesplit/internal/repositories"
	"github.com/desertthunder/rolesplit/internal/shared"
	"github.com/desertthunder/rolesplit/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
	sink   exporter.Sink
	db     *sql.DB
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Sink and DB are optional; when nil they are built from the config on first use.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
	Sink   exporter.Sink
	DB     *sql.DB
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

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
		sink:   opts.Sink,
		db:     opts.DB,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		splitCommand, serveCommand, historyCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Close releases the database handle and any remote sink connection.
func (r *Runner) Close() error {
	if closer, ok := r.sink.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			r.logger.Warn("failed to close sink", "error", err)
		}
	}
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// useConfig reloads the configuration when --config was given explicitly.
func (r *Runner) useConfig(cmd *cli.Command) error {
	if !cmd.IsSet("config") {
		return nil
	}

	path := cmd.String("config")
	config, err := shared.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("failed to load config %s: %w", path, err)
	}
	if err := config.ApplyEnv(); err != nil {
		return err
	}
	r.config = config

	if err := shared.ApplyLogLevel(r.logger, config.Log.Level); err != nil {
		r.logger.Warn("invalid log level in config", "error", err)
	}
	return nil
}

// ledger opens the export database on first use and runs pending migrations.
func (r *Runner) ledger() (*sql.DB, error) {
	if r.db != nil {
		return r.db, nil
	}

	db, err := shared.OpenLedger(r.config.Database)
	if err != nil {
		return nil, err
	}
	r.db = db
	return db, nil
}

// exportSink returns the configured sink: SFTP when enabled, otherwise the output directory.
func (r *Runner) exportSink() (exporter.Sink, error) {
	if r.sink != nil {
		return r.sink, nil
	}

	if r.config.Output.SFTP.Enabled {
		sink, err := exporter.NewSFTPSink(r.config.Output.SFTP)
		if err != nil {
			return nil, err
		}
		r.logger.Info("exporting over sftp", "host", r.config.Output.SFTP.Host, "dir", r.config.Output.SFTP.RemoteDir)
		r.sink = sink
		return sink, nil
	}

	r.sink = exporter.NewDirSink(r.config.Output.Directory)
	return r.sink, nil
}

// newEngine wires classifier, exporter and (unless disabled) the export ledger.
//
// A ledger that cannot be opened is logged and skipped so the files are still written.
func (r *Runner) newEngine(withHistory bool) (*tasks.SplitEngine, error) {
	c, err := classifier.FromConfig(r.config.Input)
	if err != nil {
		return nil, err
	}

	sink, err := r.exportSink()
	if err != nil {
		return nil, err
	}

	opts := tasks.SplitEngineOpts{
		Classifier: c,
		Exporter:   exporter.New(sink, shared.WithLogger(r.logger, "component", "exporter")),
		Logger:     r.logger,
	}

	if withHistory {
		if db, err := r.ledger(); err != nil {
			r.logger.Warn("export history disabled", "error", err)
		} else {
			opts.Recorder = repositories.NewExportLedger(repositories.NewExportRunRepository(db))
		}
	}

	return tasks.NewSplitEngine(opts), nil
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
