package chart

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

// Page geometry in millimetres (A4 landscape).
const (
	plotLeft   = 30.0
	plotTop    = 30.0
	plotWidth  = 240.0
	plotHeight = 140.0
	gridLines  = 5
)

// RenderPDF draws a vertical bar chart and returns the PDF document.
func RenderPDF(title, xLabel, yLabel string, bars []Bar) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")

	top := maxValue(bars)
	if top == 0 {
		top = 1
	}
	bottom := plotTop + plotHeight

	// Grid and y-axis ticks.
	pdf.SetFont("Arial", "", 9)
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetDashPattern([]float64{1, 1}, 0)
	for i := 0; i <= gridLines; i++ {
		v := float64(top) * float64(i) / gridLines
		y := bottom - plotHeight*float64(i)/gridLines
		pdf.Line(plotLeft, y, plotLeft+plotWidth, y)
		label := strconv.FormatFloat(v, 'f', -1, 64)
		if v != float64(int(v)) {
			label = strconv.FormatFloat(v, 'f', 1, 64)
		}
		pdf.Text(plotLeft-2-pdf.GetStringWidth(label), y+1, label)
	}
	pdf.SetDashPattern([]float64{}, 0)

	// Axes.
	pdf.SetDrawColor(0, 0, 0)
	pdf.Line(plotLeft, plotTop, plotLeft, bottom)
	pdf.Line(plotLeft, bottom, plotLeft+plotWidth, bottom)

	if n := len(bars); n > 0 {
		slot := plotWidth / float64(n)
		barWidth := slot * 0.7
		pdf.SetFillColor(135, 206, 235)
		for i, b := range bars {
			h := plotHeight * float64(b.Value) / float64(top)
			x := plotLeft + slot*float64(i) + (slot-barWidth)/2
			if h > 0 {
				pdf.Rect(x, bottom-h, barWidth, h, "F")
			}
			value := strconv.Itoa(b.Value)
			pdf.Text(x+(barWidth-pdf.GetStringWidth(value))/2, bottom-h-1.5, value)
			pdf.Text(x+(barWidth-pdf.GetStringWidth(b.Label))/2, bottom+5, b.Label)
		}
	}

	pdf.SetFont("Arial", "B", 11)
	pdf.Text(plotLeft+(plotWidth-pdf.GetStringWidth(xLabel))/2, bottom+14, xLabel)
	pdf.TransformBegin()
	pdf.TransformRotate(90, 12, plotTop+plotHeight/2)
	pdf.Text(12-pdf.GetStringWidth(yLabel)/2, plotTop+plotHeight/2, yLabel)
	pdf.TransformEnd()

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf %q: %w", title, err)
	}
	return buf.Bytes(), nil
}
