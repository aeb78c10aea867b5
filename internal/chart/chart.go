// Package chart turns finished task statistics into bar charts, either as
// plain text for the terminal or as a PDF document.
package chart

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/natefinch/atomic"

	"task-tracker/internal/models"
)

// Bar is one labelled value.
type Bar struct {
	Label string
	Value int
}

// FromWeekdays converts weekday statistics to bars, keeping their order.
func FromWeekdays(counts []models.WeekdayCount) []Bar {
	bars := make([]Bar, 0, len(counts))
	for _, c := range counts {
		bars = append(bars, Bar{Label: c.Weekday, Value: c.Count})
	}
	return bars
}

// FromHistogram converts histogram buckets to bars labelled with the day count.
func FromHistogram(h models.CompletionHistogram) []Bar {
	bars := make([]Bar, 0, len(h.Buckets))
	for _, b := range h.Buckets {
		bars = append(bars, Bar{Label: strconv.Itoa(b.Days), Value: b.Count})
	}
	return bars
}

func maxValue(bars []Bar) int {
	m := 0
	for _, b := range bars {
		m = max(m, b.Value)
	}
	return m
}

// RenderText draws a horizontal bar chart at most width characters of bar long.
func RenderText(w io.Writer, title string, bars []Bar, width int) error {
	if width <= 0 {
		width = 40
	}
	labelWidth := 0
	for _, b := range bars {
		labelWidth = max(labelWidth, len(b.Label))
	}
	top := maxValue(bars)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s\n%s\n", title, strings.Repeat("=", len(title)))
	for _, b := range bars {
		n := 0
		if top > 0 {
			n = (b.Value*width + top/2) / top
			if b.Value > 0 && n == 0 {
				n = 1
			}
		}
		fmt.Fprintf(&buf, "%-*s | %s %d\n", labelWidth, b.Label, strings.Repeat("#", n), b.Value)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// WriteFile atomically replaces path with data.
func WriteFile(path string, data []byte) error {
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write chart %s: %w", path, err)
	}
	return nil
}
