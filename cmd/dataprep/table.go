package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/xXAI-botXx/3xM/metrics"
	"github.com/xXAI-botXx/3xM/pipeline"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

var titleCase = cases.Title(language.English)

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
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)
	return tw.Render()
}

// renderSummary prints one row per stage plus a total row.
func renderSummary(s *pipeline.Summary, job pipeline.Job) string {
	failed := make(map[string]int)
	for _, f := range s.Failures() {
		failed[f.Modality]++
	}

	var rows [][]string
	var written int
	var bytes int64
	for _, stage := range job.Stages {
		n, b := s.Outputs(stage.Modality), s.Bytes(stage.Modality)
		written += n
		bytes += b
		rows = append(rows, []string{
			titleCase.String(string(stage.Modality)),
			stage.OutputDir,
			humanize.Comma(int64(n)),
			humanize.Comma(int64(failed[string(stage.Modality)])),
			humanize.Bytes(uint64(b)),
		})
	}
	rows = append(rows, []string{
		"Total",
		fmt.Sprintf("%d/%d items", s.Processed, s.Total),
		humanize.Comma(int64(written)),
		humanize.Comma(int64(s.FailureCount())),
		humanize.Bytes(uint64(bytes)),
	})

	out := renderTable(
		[]string{"Modality", "Output", "Written", "Failed", "Size"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignRight},
	)
	status := "finished"
	if s.Canceled {
		status = "canceled"
	}
	return fmt.Sprintf("%s\nRun %s %s at %s after %s",
		out, s.RunID, status, s.Finished.Format("2006-01-02 15:04"), pipeline.FormatElapsed(s.Elapsed()))
}

func renderFailures(failures []pipeline.Failure) string {
	rows := make([][]string, len(failures))
	for i, f := range failures {
		rows[i] = []string{f.Name, titleCase.String(f.Modality), f.Outcome, f.Kind, f.Message}
	}
	return renderTable([]string{"Name", "Modality", "Outcome", "Kind", "Message"}, rows, nil)
}

// renderCounts summarises the item counter of a collector by modality and outcome.
func renderCounts(c *metrics.Collector) string {
	var rows [][]string
	for _, m := range c.Snapshot() {
		if m.Name != metrics.ItemsTotal {
			continue
		}
		rows = append(rows, []string{
			titleCase.String(m.Labels["modality"]),
			m.Labels["outcome"],
			humanize.Comma(int64(m.Value)),
		})
	}
	slices.SortFunc(rows, func(a, b []string) int {
		return strings.Compare(a[0]+a[1], b[0]+b[1])
	})
	return renderTable([]string{"Modality", "Outcome", "Items"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight})
}
