package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/couchcryptid/maplist-import/internal/domain"
)

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

func renderLocations(w io.Writer, locations []domain.ParsedLocation) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Name", "Latitude", "Longitude", "CID"})
	for i, loc := range locations {
		t.AppendRow(table.Row{
			i + 1,
			loc.Name,
			fmt.Sprintf("%.6f", loc.Latitude),
			fmt.Sprintf("%.6f", loc.Longitude),
			loc.Identifier,
		})
	}
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d locations", len(locations))})
	t.Render()
}

func renderOutcome(w io.Writer, outcome domain.ImportOutcome) {
	t := newTable(w)
	t.AppendHeader(table.Row{"Imported", "Skipped", "With CID", "Coordinates only", "Failed"})
	t.AppendRow(table.Row{
		outcome.Imported,
		outcome.Skipped,
		outcome.WithIdentifier,
		outcome.WithoutIdentifier,
		len(outcome.Failures),
	})
	t.Render()

	if len(outcome.Failures) == 0 {
		return
	}
	f := newTable(w)
	f.AppendHeader(table.Row{"Name", "Reason"})
	for _, failure := range outcome.Failures {
		f.AppendRow(table.Row{failure.Name, failure.Reason})
	}
	f.Render()
}
