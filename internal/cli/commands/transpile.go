package commands

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqldialect/internal/cli/config"
	"github.com/leapstack-labs/sqldialect/pkg/transpile"
)

// TranspileOptions holds options for the transpile command.
type TranspileOptions struct {
	Execute string
	Watch   bool
}

// NewTranspileCommand creates the transpile command.
func NewTranspileCommand() *cobra.Command {
	opts := &TranspileOptions{}

	cmd := &cobra.Command{
		Use:   "transpile [files...]",
		Short: "Convert SQL from one dialect to another",
		Long: `Parse SQL with the --read dialect and render it with the --write dialect.

SQL comes from --execute, the given files, or stdin. Files are converted in
parallel, up to --concurrency at a time. With --watch the files are
converted again whenever they change.`,
		Example: `  sqldialect transpile --read spark --write databricks -e "SELECT DATE_ADD(d, 1) FROM t"
  sqldialect transpile --read ansi models/*.sql
  sqldialect transpile --read spark --watch query.sql`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTranspile(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.Execute, "execute", "e", "", "SQL text to convert")
	cmd.Flags().BoolVar(&opts.Watch, "watch", false, "Convert the files again when they change")

	return cmd
}

func runTranspile(cmd *cobra.Command, opts *TranspileOptions, files []string) error {
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)
	logger := config.GetLogger(ctx)

	if opts.Watch && (opts.Execute != "" || len(files) == 0) {
		return fmt.Errorf("--watch needs file arguments")
	}

	read, write, err := cfg.Dialects()
	if err != nil {
		return err
	}
	tr, err := cfg.NewTranspiler(transpile.WithLogger(logger))
	if err != nil {
		return err
	}

	convert := func(files []string) error {
		sources, err := readSources(cmd, opts.Execute, files)
		if err != nil {
			return err
		}
		inputs := make([]transpile.Input, len(sources))
		for i, src := range sources {
			inputs[i] = transpile.Input{Name: src.name, SQL: src.sql, Read: read, Write: write}
		}
		logger.Debug("transpiling", "inputs", len(inputs), "read", read.Name, "write", write.Name)

		outputs, err := tr.TranspileAll(ctx, inputs)
		if err != nil {
			return err
		}
		return renderOutputs(cmd.OutOrStdout(), outputs, cfg.OutputFormat)
	}

	if !opts.Watch {
		return convert(files)
	}

	// A failing file is reported and watching goes on.
	if err := convert(files); err != nil {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	watchCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	return watchFiles(watchCtx, logger, files, cfg.WatchDebounce, func(changed []string) {
		logger.Info("files changed", "files", changed)
		if err := convert(changed); err != nil {
			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		}
	})
}
