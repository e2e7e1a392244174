package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

type source struct {
	name string
	sql  string
}

// readSources collects SQL from --execute, file arguments, or stdin, in
// that order of preference. "-" as a file argument reads stdin.
func readSources(cmd *cobra.Command, execute string, files []string) ([]source, error) {
	if execute != "" {
		if len(files) > 0 {
			return nil, fmt.Errorf("--execute cannot be combined with file arguments")
		}
		return []source{{name: "<execute>", sql: execute}}, nil
	}
	if len(files) == 0 {
		files = []string{"-"}
	}
	sources := make([]source, 0, len(files))
	for _, path := range files {
		if path == "-" {
			if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
				return nil, fmt.Errorf("no SQL given: use --execute, pass files, or pipe SQL on stdin")
			}
			data, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return nil, fmt.Errorf("read stdin: %w", err)
			}
			sources = append(sources, source{name: "<stdin>", sql: string(data)})
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		sources = append(sources, source{name: path, sql: string(data)})
	}
	return sources, nil
}
