package main

import (
	"cmp"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/leapstack-labs/sqldialect/pkg/core"
	"github.com/leapstack-labs/sqldialect/pkg/dialect"
	"github.com/leapstack-labs/sqldialect/pkg/override"
)

// generateDialectDocs writes one page per registered dialect plus an index.
// Dialects are registered by the init functions the cli package imports.
func generateDialectDocs(outDir string) error {
	log.Printf("Generating dialect docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	index := NewMarkdownWriter()
	index.Frontmatter("Dialects", "Registered SQL dialects and how they differ from their parents")
	index.GeneratedMarker()
	index.Header(1, "Dialects")
	index.Paragraph("Each dialect inherits the lexing, parsing and rendering tables of its parent and declares only the entries it adds, replaces or removes.")

	var rows [][]string
	for _, name := range dialect.List() {
		d := dialect.MustGet(name)
		parent := "-"
		if d.Parent != nil {
			parent = InlineCode(d.Parent.Name)
		}
		rows = append(rows, []string{
			fmt.Sprintf("[%s](/dialects/%s)", InlineCode(d.Name), d.Name),
			parent,
			strings.Join(d.Chain(), " > "),
		})

		if err := generateDialectPage(d, outDir); err != nil {
			return fmt.Errorf("failed to generate page for %s: %w", d.Name, err)
		}
		log.Printf("  Generated %s.md", d.Name)
	}
	index.Table([]string{"Dialect", "Parent", "Chain"}, rows)

	return os.WriteFile(filepath.Join(outDir, "index.md"), index.Bytes(), 0600)
}

func generateDialectPage(d *dialect.Dialect, outDir string) error {
	w := NewMarkdownWriter()
	w.Frontmatter(d.Name, "The "+d.Name+" SQL dialect")
	w.GeneratedMarker()
	w.Header(1, d.Name)
	w.Paragraph("Inheritance chain: " + InlineCode(strings.Join(d.Chain(), " > ")))

	w.Header(2, "Identifiers")
	w.Table([]string{"Quote", "Escape", "Normalization"}, [][]string{{
		InlineCode(d.Identifiers.Quote + "name" + d.Identifiers.QuoteEnd),
		InlineCode(d.Identifiers.Escape),
		d.Identifiers.Normalization.String(),
	}})

	lexing, parsing, rendering := d.Overrides()
	parent := d.Parent

	w.Header(2, "Lexing")
	w.Paragraph(statsLine(d.LexingTable().Len(), lexing))
	lexParent := parentTable(parent, (*dialect.Dialect).LexingTable)
	var lexRows [][]string
	for _, spelling := range sortedKeys(d.LexingTable(), func(s string) string { return s }) {
		kind, _ := d.LexingTable().Lookup(spelling)
		status := ""
		if prev, ok := lexParent.Lookup(spelling); !ok {
			status = "added"
		} else if prev != kind {
			status = "changed from " + InlineCode(prev.String())
		}
		if parent == nil || status != "" {
			lexRows = append(lexRows, []string{InlineCode(spelling), InlineCode(kind.String()), status})
		}
	}
	for _, spelling := range removedKeys(lexParent, d.LexingTable(), func(s string) string { return s }) {
		lexRows = append(lexRows, []string{InlineCode(spelling), "", "removed"})
	}
	w.Table([]string{"Spelling", "Token", "Change"}, lexRows)

	w.Header(2, "Parsing")
	w.Paragraph(statsLine(d.ParsingTable().Len(), parsing))
	writeKeyTable(w, "Trigger", parentTable(parent, (*dialect.Dialect).ParsingTable), d.ParsingTable(), parent == nil,
		dialect.ParseKey.String)

	w.Header(2, "Rendering")
	w.Paragraph(statsLine(d.RenderingTable().Len(), rendering) +
		" Node kinds without an entry use the default shape, or a plain function call.")
	writeKeyTable(w, "Node kind", parentTable(parent, (*dialect.Dialect).RenderingTable), d.RenderingTable(), parent == nil,
		core.Kind.String)

	return os.WriteFile(filepath.Join(outDir, d.Name+".md"), w.Bytes(), 0600)
}

func statsLine(size int, stats dialect.LayerStats) string {
	return fmt.Sprintf("%d entries; this dialect declares %d upserts and %d deletions.", size, stats.Upserts, stats.Deletions)
}

// parentTable returns the parent's table, or nil for a root dialect.
func parentTable[K comparable, V any](parent *dialect.Dialect, get func(*dialect.Dialect) *override.Table[K, V]) *override.Table[K, V] {
	if parent == nil {
		return nil
	}
	return get(parent)
}

// writeKeyTable lists keys new in child and keys removed from parent. For a
// root dialect every key is listed. Values are behaviors and cannot be
// compared, so replaced entries are only counted in the stats line.
func writeKeyTable[K comparable, V any](w *MarkdownWriter, header string, parent, child *override.Table[K, V], root bool, name func(K) string) {
	var rows [][]string
	for _, k := range sortedKeys(child, name) {
		switch {
		case root:
			rows = append(rows, []string{InlineCode(name(k)), ""})
		case !parent.Has(k):
			rows = append(rows, []string{InlineCode(name(k)), "added"})
		}
	}
	for _, k := range removedKeys(parent, child, name) {
		rows = append(rows, []string{InlineCode(name(k)), "removed"})
	}
	if len(rows) == 0 {
		w.Paragraph("No keys added or removed.")
		return
	}
	w.Table([]string{header, "Change"}, rows)
}

func sortedKeys[K comparable, V any](t *override.Table[K, V], name func(K) string) []K {
	keys := t.Keys()
	slices.SortFunc(keys, func(a, b K) int { return cmp.Compare(name(a), name(b)) })
	return keys
}

func removedKeys[K comparable, V any](parent, child *override.Table[K, V], name func(K) string) []K {
	var out []K
	for _, k := range sortedKeys(parent, name) {
		if !child.Has(k) {
			out = append(out, k)
		}
	}
	return out
}
