package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/sqldialect/pkg/transpile"
)

func renderOutputs(w io.Writer, outputs []transpile.Output, format string) error {
	switch format {
	case "json":
		return renderJSON(w, outputs)
	case "yaml":
		return renderYAML(w, outputs)
	default:
		return renderText(w, outputs)
	}
}

// renderText prints statements terminated by semicolons. With more than one
// input each block is preceded by a comment naming it.
func renderText(w io.Writer, outputs []transpile.Output) error {
	for i, out := range outputs {
		if len(outputs) > 1 {
			if i > 0 {
				_, _ = fmt.Fprintln(w)
			}
			_, _ = fmt.Fprintf(w, "-- %s\n", out.Name)
		}
		for _, stmt := range out.Statements {
			if _, err := fmt.Fprintf(w, "%s;\n", stmt); err != nil {
				return err
			}
		}
	}
	return nil
}

type outputRecord struct {
	Name       string   `json:"name" yaml:"name"`
	Statements []string `json:"statements" yaml:"statements"`
}

func records(outputs []transpile.Output) []outputRecord {
	recs := make([]outputRecord, len(outputs))
	for i, out := range outputs {
		recs[i] = outputRecord{Name: out.Name, Statements: out.Statements}
	}
	return recs
}

func renderJSON(w io.Writer, v any) error {
	if outputs, ok := v.([]transpile.Output); ok {
		v = records(outputs)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderYAML(w io.Writer, v any) error {
	if outputs, ok := v.([]transpile.Output); ok {
		v = records(outputs)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

