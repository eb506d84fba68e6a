package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/goccy/go-yaml"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/okian/transcript/internal/config"
)

// render writes v in the configured format. In table format it calls
// tableFn with a writer mirrored to out.
func (a *app) render(v any, tableFn func(tw table.Writer)) error {
	return render(a.out, a.cfg.Output, v, tableFn)
}

func render(out io.Writer, format string, v any, tableFn func(tw table.Writer)) error {
	switch format {
	case config.OutputJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("encode json output: %w", err)
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case config.OutputYAML:
		// Going through JSON keeps json tags and json.Number values intact.
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("encode yaml output: %w", err)
		}
		data, err = yaml.JSONToYAML(data)
		if err != nil {
			return fmt.Errorf("encode yaml output: %w", err)
		}
		_, err = out.Write(data)
		return err
	default:
		tw := table.NewWriter()
		tw.SetStyle(table.StyleLight)
		tw.SetOutputMirror(out)
		tableFn(tw)
		tw.Render()
		return nil
	}
}

func keyValueTable(rows ...table.Row) func(tw table.Writer) {
	return func(tw table.Writer) {
		tw.AppendHeader(table.Row{"Field", "Value"})
		tw.AppendRows(rows)
	}
}
