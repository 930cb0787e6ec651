package main

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"pcc/internal/domain"
)

func newTable(out io.Writer) table.Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(out)
	tw.SetStyle(table.StyleLight)
	return tw
}

func renderTasks(out io.Writer, title string, tasks []domain.Task) {
	tw := newTable(out)
	if title != "" {
		tw.SetTitle(title)
	}
	tw.AppendHeader(table.Row{"ID", "Title", "Milestone", "Owner", "Priority", "Status", "Due", "Estimate"})
	for _, t := range tasks {
		tw.AppendRow(table.Row{t.ID, t.Title, t.MilestoneID, t.Owner, t.Priority, t.Status, t.DueDate, fmt.Sprintf("%gh", t.EstimateHours)})
	}
	tw.Render()
}
