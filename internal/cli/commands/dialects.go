package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqldialect/internal/cli/config"
	"github.com/leapstack-labs/sqldialect/pkg/dialect"
)

// dialectInfo summarizes a registered dialect.
type dialectInfo struct {
	Name      string       `json:"name" yaml:"name"`
	Parent    string       `json:"parent,omitempty" yaml:"parent,omitempty"`
	Chain     []string     `json:"chain" yaml:"chain"`
	Lexing    tableSummary `json:"lexing" yaml:"lexing"`
	Parsing   tableSummary `json:"parsing" yaml:"parsing"`
	Rendering tableSummary `json:"rendering" yaml:"rendering"`
}

// tableSummary is the effective size of a table and the overrides the
// dialect itself declared.
type tableSummary struct {
	Entries   int `json:"entries" yaml:"entries"`
	Upserts   int `json:"upserts" yaml:"upserts"`
	Deletions int `json:"deletions" yaml:"deletions"`
}

func describeDialect(d *dialect.Dialect) dialectInfo {
	lexing, parsing, rendering := d.Overrides()
	info := dialectInfo{
		Name:      d.Name,
		Chain:     d.Chain(),
		Lexing:    tableSummary{d.LexingTable().Len(), lexing.Upserts, lexing.Deletions},
		Parsing:   tableSummary{d.ParsingTable().Len(), parsing.Upserts, parsing.Deletions},
		Rendering: tableSummary{d.RenderingTable().Len(), rendering.Upserts, rendering.Deletions},
	}
	if d.Parent != nil {
		info.Parent = d.Parent.Name
	}
	return info
}

// NewDialectsCommand creates the dialects command.
func NewDialectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dialects",
		Short: "List registered dialects",
		Long: `List every registered dialect with its inheritance chain and, per
override table, the effective entry count and the upserts and deletions the
dialect declares on top of its parent.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var infos []dialectInfo
			for _, name := range dialect.List() {
				infos = append(infos, describeDialect(dialect.MustGet(name)))
			}
			switch config.GetConfig(cmd.Context()).OutputFormat {
			case "json":
				return renderJSON(cmd.OutOrStdout(), infos)
			case "yaml":
				return renderYAML(cmd.OutOrStdout(), infos)
			default:
				renderDialectTable(cmd.OutOrStdout(), infos)
				return nil
			}
		},
	}
}

func renderDialectTable(w io.Writer, infos []dialectInfo) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Dialect", "Parent", "Chain", "Lexing", "Parsing", "Rendering"})
	for _, info := range infos {
		parent := info.Parent
		if parent == "" {
			parent = "-"
		}
		t.AppendRow(table.Row{
			info.Name,
			parent,
			strings.Join(info.Chain, " > "),
			info.Lexing.String(),
			info.Parsing.String(),
			info.Rendering.String(),
		})
	}
	t.Render()
}

func (s tableSummary) String() string {
	return fmt.Sprintf("%d (+%d/-%d)", s.Entries, s.Upserts, s.Deletions)
}
