package menu

import (
	"context"
	"fmt"
	"path/filepath"

	"task-tracker/internal/chart"
	"task-tracker/internal/models"
)

const (
	weekdayTitle    = "Completed tasks by weekday"
	completionTitle = "Completed tasks by days to complete"

	weekdayFile    = "weekday-chart.pdf"
	completionFile = "completion-times-chart.pdf"
)

func (m *Menu) weekdayChart(ctx context.Context) error {
	stats, err := m.tasks.WeekdayStatistics(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out)
	if models.WeekdayTotal(stats) == 0 {
		fmt.Fprintln(m.out, "There are no completed tasks to show.")
		return nil
	}
	return chart.RenderText(m.out, weekdayTitle, chart.FromWeekdays(stats), m.barWidth)
}

func (m *Menu) completionChart(ctx context.Context) error {
	hist, err := m.tasks.CompletionTimeHistogram(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(m.out)
	switch {
	case hist.Empty() && hist.SameDay == 0:
		fmt.Fprintln(m.out, "There are no completed tasks to show.")
		return nil
	case hist.Empty():
		fmt.Fprintf(m.out, "No completion times to chart (%d task(s) completed the same day).\n", hist.SameDay)
		return nil
	}
	if err := chart.RenderText(m.out, completionTitle, chart.FromHistogram(hist), m.barWidth); err != nil {
		return err
	}
	if hist.SameDay > 0 {
		fmt.Fprintf(m.out, "(%d task(s) completed the same day are not shown)\n", hist.SameDay)
	}
	return nil
}

func (m *Menu) exportCharts(ctx context.Context) error {
	stats, err := m.tasks.WeekdayStatistics(ctx)
	if err != nil {
		return err
	}
	hist, err := m.tasks.CompletionTimeHistogram(ctx)
	if err != nil {
		return err
	}
	if models.WeekdayTotal(stats) == 0 {
		fmt.Fprintln(m.out, "\nThere are no completed tasks to export.")
		return nil
	}

	weekdayPDF, err := chart.RenderPDF(weekdayTitle, "Weekday", "Completed tasks", chart.FromWeekdays(stats))
	if err != nil {
		return err
	}
	path := filepath.Join(m.chartDir, weekdayFile)
	if err := chart.WriteFile(path, weekdayPDF); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "\nSaved %s\n", path)

	if hist.Empty() {
		fmt.Fprintln(m.out, "No completion times to chart; skipped the days-to-complete chart.")
		return nil
	}
	completionPDF, err := chart.RenderPDF(completionTitle, "Days to complete", "Completed tasks", chart.FromHistogram(hist))
	if err != nil {
		return err
	}
	path = filepath.Join(m.chartDir, completionFile)
	if err := chart.WriteFile(path, completionPDF); err != nil {
		return err
	}
	fmt.Fprintf(m.out, "Saved %s\n", path)
	return nil
}
