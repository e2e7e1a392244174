package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqldialect/pkg/dialect"
)

// BuildInfo identifies the binary.
type BuildInfo struct {
	Version   string
	GitCommit string
	BuildDate string
}

// NewVersionCommand creates the version command.
func NewVersionCommand(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display sqldialect version, build information and the registered dialects.`,
		Run: func(cmd *cobra.Command, _ []string) {
			w := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(w, "sqldialect v%s\n", info.Version)
			_, _ = fmt.Fprintf(w, "commit %s, built %s, %s\n", info.GitCommit, info.BuildDate, runtime.Version())
			_, _ = fmt.Fprintf(w, "dialects: %v\n", dialect.List())
		},
	}
}
