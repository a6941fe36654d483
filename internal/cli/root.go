// Package cli implements the hardcover-sync command line.
package cli

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"io"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/listenupapp/hardcover-sync/internal/config"
	"github.com/listenupapp/hardcover-sync/internal/di"
	syncerrors "github.com/listenupapp/hardcover-sync/internal/errors"
	"github.com/listenupapp/hardcover-sync/internal/logger"
)

// app is the state shared by the commands of one invocation.
type app struct {
	opts   config.Options
	output string

	stdout io.Writer
	stderr io.Writer

	// started is set once flags parsed and a command began running.
	started  bool
	injector *do.RootScope
	log      *logger.Logger
}

// Execute runs the command line and returns the process exit status.
// Results go to stdout as JSON, a failure is printed once on stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr}

	root := newRootCommand(a)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err != nil && !a.started {
		err = syncerrors.InvalidInput(err.Error())
	}
	if err != nil && a.log != nil {
		a.log.WithError(err).Debug("Command failed")
	}
	a.close()

	if err == nil {
		return 0
	}
	fmt.Fprintln(stderr, renderError(err, a.output))
	return syncerrors.CodeOf(err).ExitCode()
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "hardcover-sync",
		Short: "Sync Kobo reading progress, bookmarks and reviews to Hardcover.app",
		Long: `hardcover-sync pushes what happens on a Kobo e-reader to Hardcover.app:
reading progress, bookmarks as reading journal entries, notes, ratings and
reviews. Every command prints its result as JSON on stdout.`,
		SilenceErrors:     true,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return syncerrors.InvalidInput(err.Error())
	})

	f := root.PersistentFlags()
	f.StringVar(&a.opts.ConfigPath, "config", "", "config file (default: config.toml next to the executable)")
	f.StringVar(&a.opts.EnvFile, "env-file", "", "environment file (default: .env next to the config file)")
	f.StringVar(&a.opts.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	f.StringVar(&a.opts.SQLitePath, "sqlite-path", "", "path to KoboReader.sqlite")
	f.StringVar(&a.output, "output", outputText, "error format: text or html")

	root.AddCommand(
		newUpdateCommand(a),
		newSetUserBookCommand(a),
		newGetUserBookCommand(a),
		newInsertJournalCommand(a),
		newListJournalCommand(a),
		newSearchCommand(a),
	)

	return root
}

// setup loads the configuration and builds the container for the command.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	a.started = true

	if a.output != outputText && a.output != outputHTML {
		output := a.output
		a.output = outputText
		return syncerrors.InvalidInputf("--output must be %s or %s, got %q", outputText, outputHTML, output)
	}

	cfg, err := config.Load(a.opts)
	if err != nil {
		return err
	}
	if err := cfg.RequireAuthorization(); err != nil {
		return err
	}

	a.injector = di.NewContainer(cfg)
	if err := di.Bootstrap(a.injector); err != nil {
		return err
	}

	a.log = do.MustInvoke[*logger.Logger](a.injector)
	a.log.Debug("Running command", "command", cmd.Name(), "config", cfg.Path)

	return nil
}

// close shuts the container down and flushes the log file.
func (a *app) close() {
	if a.injector == nil {
		return
	}

	report := a.injector.Shutdown()
	if a.log == nil {
		return
	}
	a.log.Debug("Container shut down", "report", report)

	if err := a.log.Close(); err != nil {
		fmt.Fprintf(a.stderr, "Failed to close log file: %v\n", err)
	}
}

// print writes v to stdout as one line of JSON.
func (a *app) print(v any) error {
	if err := json.MarshalWrite(a.stdout, v); err != nil {
		return syncerrors.Codecf("failed to write result: %v", err)
	}
	_, err := io.WriteString(a.stdout, "\n")
	return err
}
