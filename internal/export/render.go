package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/xxxsen/modslug/internal/model"
)

const banner = "========================================"

// Render writes the human readable summary of a scan.
func Render(w io.Writer, s *model.Summary) {
	fmt.Fprintf(w, "\n%s\n  SUMMARY\n%s\n", banner, banner)

	slugs := s.Slugs()
	if len(slugs) > 0 {
		fmt.Fprintf(w, "\n--- Found Modrinth Slugs/IDs (%d) ---\n", len(slugs))
		if s.Offline {
			fmt.Fprintln(w, "WARNING: Modrinth lookup was disabled, these are only the INTERNAL IDs!")
		}
		for _, slug := range slugs {
			fmt.Fprintf(w, "- %s\n", slug)
		}
	} else {
		fmt.Fprintln(w, "\nNo Modrinth Slugs/IDs found.")
	}

	if unmatched := s.SortedUnmatched(); len(unmatched) > 0 {
		fmt.Fprintf(w, "\n--- Mods with ID, but without found Modrinth Project (%d) ---\n", len(unmatched))
		rows := make([][]string, 0, len(unmatched))
		for _, item := range unmatched {
			rows = append(rows, []string{item.File, item.ID, displayName(item.Name)})
		}
		fmt.Fprintln(w, renderTable([]string{"File", "ID", "Name"}, rows))
	}

	if missing := s.SortedNoMetadata(); len(missing) > 0 {
		fmt.Fprintf(w, "\n--- JARs without recognizable Mod ID in metadata (%d) ---\n", len(missing))
		for _, name := range missing {
			fmt.Fprintf(w, "- %s\n", name)
		}
	}

	fmt.Fprintf(w, "\n%s\n", banner)
}

func renderTable(headers []string, rows [][]string) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "N/A"
	}
	return name
}
