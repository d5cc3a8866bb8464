package cmd

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Digital-Shane/season-remux/internal/runner"
	"github.com/Digital-Shane/season-remux/internal/transcode"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

func renderTable(headers []string, rows [][]string, rightAligned ...int) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(headers))
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, len(headers))
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, len(rightAligned))
	for _, col := range rightAligned {
		configs = append(configs, table.ColumnConfig{Number: col, Align: text.AlignRight, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

// renderReport prints the counters of a run followed by any failed remuxes.
func renderReport(r *runner.Report) string {
	w := r.Walk
	rows := [][]string{
		{"Renamed", strconv.Itoa(w.Renamed)},
		{"Already canonical", strconv.Itoa(w.Canonical)},
		{"Moved to Completed", strconv.Itoa(w.Relocated)},
		{"No episode number", strconv.Itoa(w.NoEpisode)},
		{"Destination conflicts", strconv.Itoa(w.Conflicts)},
		{"Rename failures", strconv.Itoa(w.Failed)},
		{"Playlist folders removed", strconv.Itoa(w.ArtifactsRemoved)},
		{"Playlist files removed", strconv.Itoa(w.PlaylistsRemoved)},
		{"Orphan playlist folders kept", strconv.Itoa(w.OrphansKept)},
		{"Completed folders skipped", strconv.Itoa(w.ReservedSkipped)},
	}
	if t := r.Transcode; t != nil {
		rows = append(rows,
			[]string{"Remuxed", strconv.Itoa(t.Count(transcode.Transcoded))},
			[]string{"Reused staged output", strconv.Itoa(t.Count(transcode.Reused))},
			[]string{"Already remuxed", strconv.Itoa(t.Count(transcode.AlreadyDone))},
			[]string{"Duplicate sources skipped", strconv.Itoa(t.Count(transcode.Skipped))},
			[]string{"Remux failures", strconv.Itoa(t.Count(transcode.Failed))},
		)
	}
	if r.Pruned > 0 {
		rows = append(rows, []string{"Empty folders pruned", strconv.Itoa(r.Pruned)})
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Source: %s\n", r.Source)
	b.WriteString(renderTable([]string{"Step", "Count"}, rows, 2))

	if r.Transcode != nil {
		if failures := r.Transcode.Failures(); len(failures) > 0 {
			failed := make([][]string, 0, len(failures))
			for _, f := range failures {
				rel, err := filepath.Rel(r.Source, f.Source)
				if err != nil {
					rel = f.Source
				}
				msg := "unknown error"
				if f.Err != nil {
					msg = f.Err.Error()
				}
				failed = append(failed, []string{rel, msg})
			}
			b.WriteString("\n")
			b.WriteString(renderTable([]string{"Failed remux", "Error"}, failed))
		}
	}
	return b.String()
}
