package tw

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Writer represents table writer
type Writer struct {
	table.Writer
}

// New returns new table writer rendering to <out>
func New(out io.Writer) Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleLight)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "#", WidthMax: 5},
		{Name: "Backup", WidthMax: 70},
		{Name: "Created", WidthMax: 30},
		{Name: "Size", WidthMax: 12},
		{Name: "File", WidthMax: 70},
		{Name: "Kind", WidthMax: 30},
		{Name: "Result", WidthMax: 60},
	})

	return Writer{tw}
}

// Render renders table and resets it
func (w Writer) Render() {
	w.Writer.Render()
	w.ResetHeaders()
	w.ResetRows()
	w.ResetFooters()
}
