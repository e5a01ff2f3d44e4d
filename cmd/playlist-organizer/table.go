package main

import (
	"strconv"

	"github.com/handiism/playlist-organizer/internal/organize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
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

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

// renderSummary shows the per playlist counts of a run.
func renderSummary(stats []organize.Stats) string {
	headers := []string{"Playlist", "Entries", "Missing", "Linked", "Existing", "Planned", "Skipped", "Failed", "Written"}
	aligns := []columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft}

	rows := make([][]string, 0, len(stats))
	for _, s := range stats {
		written := "no"
		if s.Written {
			written = "yes"
		}
		rows = append(rows, []string{
			s.Playlist,
			strconv.Itoa(s.Entries),
			strconv.Itoa(s.Missing),
			strconv.Itoa(s.Linked),
			strconv.Itoa(s.Existing),
			strconv.Itoa(s.Planned),
			strconv.Itoa(s.Skipped),
			strconv.Itoa(s.Failed),
			written,
		})
	}
	return renderTable(headers, rows, aligns)
}
