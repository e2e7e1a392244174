package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqldialect/internal/cli/config"
	"github.com/leapstack-labs/sqldialect/pkg/dialect"
	"github.com/leapstack-labs/sqldialect/pkg/transpile"
)

// NewREPLCommand creates the repl command.
func NewREPLCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Convert SQL interactively",
		Long: `Start an interactive session. Each statement ending in a semicolon is
parsed with the current read dialect and printed in the write dialect.
Type .help for commands.`,
		Args: cobra.NoArgs,
		RunE: runREPL,
	}
}

func runREPL(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	cfg := config.GetConfig(ctx)

	read, write, err := cfg.Dialects()
	if err != nil {
		return err
	}
	tr, err := cfg.NewTranspiler(transpile.WithLogger(config.GetLogger(ctx)))
	if err != nil {
		return err
	}
	session := newREPLSession(tr, read, write, cmd.OutOrStdout(), cmd.ErrOrStderr())

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          session.prompt(),
		HistoryFile:     historyFile(cfg),
		AutoComplete:    newREPLCompleter(),
		InterruptPrompt: "^C",
		EOFPrompt:       ".quit",
		Stdout:          cmd.OutOrStdout(),
		Stderr:          cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("failed to initialize REPL: %w", err)
	}
	defer func() { _ = rl.Close() }()

	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "sqldialect REPL (%s -> %s)\n", read.Name, write.Name)
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), "Type .help for commands, .quit to exit")

	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			session.reset()
			rl.SetPrompt(session.prompt())
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if session.handle(line) {
			return nil
		}
		rl.SetPrompt(session.prompt())
	}
}

// historyFile returns the configured history path, defaulting to a file in
// the user's home directory. Empty disables history.
func historyFile(cfg *config.Config) string {
	if cfg.HistoryFile != "" {
		return cfg.HistoryFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sqldialect_history")
}

func newREPLCompleter() *readline.PrefixCompleter {
	names := dialect.List()
	items := make([]readline.PrefixCompleterInterface, 0, len(names))
	for _, name := range names {
		items = append(items, readline.PcItem(name))
	}
	return readline.NewPrefixCompleter(
		readline.PcItem(".read", items...),
		readline.PcItem(".write", items...),
		readline.PcItem(".swap"),
		readline.PcItem(".dialects"),
		readline.PcItem(".help"),
		readline.PcItem(".quit"),
		readline.PcItem(".exit"),
	)
}

// replSession holds the state of an interactive session apart from the
// terminal, so it can be driven line by line.
type replSession struct {
	tr          *transpile.Transpiler
	read, write *dialect.Dialect
	out, errOut io.Writer
	buf         strings.Builder
}

func newREPLSession(tr *transpile.Transpiler, read, write *dialect.Dialect, out, errOut io.Writer) *replSession {
	return &replSession{tr: tr, read: read, write: write, out: out, errOut: errOut}
}

func (s *replSession) prompt() string {
	if s.buf.Len() > 0 {
		return "    ...> "
	}
	return s.read.Name + "> "
}

func (s *replSession) reset() {
	s.buf.Reset()
}

// handle processes one input line and reports whether the session should end.
func (s *replSession) handle(line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if s.buf.Len() == 0 && strings.HasPrefix(line, ".") {
		return s.dotCommand(line)
	}

	if s.buf.Len() > 0 {
		s.buf.WriteString("\n")
	}
	s.buf.WriteString(line)
	if !strings.HasSuffix(line, ";") {
		return false
	}

	sql := s.buf.String()
	s.buf.Reset()
	out, err := s.tr.Transpile(sql, s.read, s.write)
	if err != nil {
		_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
		return false
	}
	for _, stmt := range out {
		_, _ = fmt.Fprintf(s.out, "%s;\n", stmt)
	}
	return false
}

func (s *replSession) dotCommand(line string) bool {
	parts := strings.Fields(line)
	switch strings.ToLower(parts[0]) {
	case ".quit", ".exit":
		return true

	case ".help":
		printREPLHelp(s.out)

	case ".read", ".write":
		if len(parts) < 2 {
			current := s.read
			if strings.EqualFold(parts[0], ".write") {
				current = s.write
			}
			_, _ = fmt.Fprintln(s.out, current.Name)
			return false
		}
		d, err := dialect.Lookup(parts[1])
		if err != nil {
			_, _ = fmt.Fprintf(s.errOut, "Error: %v\n", err)
			return false
		}
		if strings.EqualFold(parts[0], ".read") {
			s.read = d
		} else {
			s.write = d
		}

	case ".swap":
		s.read, s.write = s.write, s.read
		_, _ = fmt.Fprintf(s.out, "%s -> %s\n", s.read.Name, s.write.Name)

	case ".dialects":
		_, _ = fmt.Fprintln(s.out, strings.Join(dialect.List(), ", "))

	default:
		_, _ = fmt.Fprintf(s.errOut, "Unknown command: %s (type .help for commands)\n", parts[0])
	}
	return false
}

func printREPLHelp(w io.Writer) {
	help := `
Commands:
  .help           Show this help message
  .read [name]    Show or set the read dialect
  .write [name]   Show or set the write dialect
  .swap           Exchange the read and write dialects
  .dialects       List registered dialects
  .quit / .exit   Exit the REPL

Statements end with a semicolon (;) and may span several lines.
`
	_, _ = fmt.Fprintln(w, help)
}
