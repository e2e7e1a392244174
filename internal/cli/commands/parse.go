package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqldialect/internal/cli/config"
	"github.com/leapstack-labs/sqldialect/pkg/core"
	"github.com/leapstack-labs/sqldialect/pkg/dialect"
	"github.com/leapstack-labs/sqldialect/pkg/parser"
)

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	var execute string

	cmd := &cobra.Command{
		Use:   "parse [files...]",
		Short: "Print the syntax tree of SQL as YAML",
		Long:  `Parse SQL with the --read dialect and dump the resulting tree as YAML.`,
		Example: `  sqldialect parse --read databricks -e "SELECT raw:a.b FROM t"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig(cmd.Context())
			read, err := dialect.Lookup(cfg.Read)
			if err != nil {
				return fmt.Errorf("read dialect: %w", err)
			}
			sources, err := readSources(cmd, execute, args)
			if err != nil {
				return err
			}

			var stmts []*core.Node
			for _, src := range sources {
				parsed, err := parser.Parse(src.sql, read)
				if err != nil {
					return fmt.Errorf("%s: %w", src.name, err)
				}
				stmts = append(stmts, parsed...)
			}
			config.GetLogger(cmd.Context()).Debug("parsed", "statements", len(stmts), "dialect", read.Name)
			return renderYAML(cmd.OutOrStdout(), stmts)
		},
	}

	cmd.Flags().StringVarP(&execute, "execute", "e", "", "SQL text to parse")

	return cmd
}
