// Package report renders the aggregated expense report as a shareable PDF.
// It consumes the already-computed daily and category totals as plain data
// and imposes nothing back onto the core.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pdf/fpdf"

	"spendlog/internal/core"
)

const (
	pageLeft   = 40.0
	pageRight  = 555.0
	pageBottom = 800.0

	chartWidth  = 400.0
	chartHeight = 200.0

	rowHeight = 40.0
	rowGap    = 10.0
)

// WritePDF draws the one-page report: a bold title, a bar chart of the
// rolling daily totals labeled by weekday, and one rounded row per category
// with its total right-aligned. Category rows overflow onto further pages
// when they run out of room.
func WritePDF(w io.Writer, daily []core.DailyTotal, cats []core.CategoryTotal) error {
	pdf := fpdf.New("P", "pt", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	y := 40.0
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Text(pageLeft, y, "Expense Report")
	y += 30

	pdf.SetFont("Helvetica", "", 16)
	pdf.Text(pageLeft, y, "Daily Totals (Last 7 Days)")
	y += 20

	y = drawDailyChart(pdf, daily, y)

	pdf.SetFont("Helvetica", "", 16)
	pdf.SetTextColor(0, 0, 0)
	pdf.Text(pageLeft, y, "Category-wise Totals")
	y += 20

	drawCategoryRows(pdf, cats, y)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render report pdf: %w", err)
	}
	return nil
}

func drawDailyChart(pdf *fpdf.Fpdf, daily []core.DailyTotal, y float64) float64 {
	baseline := y + chartHeight
	if len(daily) == 0 {
		return baseline + 50
	}

	// Bars are scaled against the biggest day; an all-zero week still
	// renders its axis labels.
	maxAmount := 1.0
	for _, d := range daily {
		if d.Total > maxAmount {
			maxAmount = d.Total
		}
	}

	barWidth := chartWidth / float64(len(daily))
	pdf.SetFillColor(0x24, 0x3c, 0x5a)
	pdf.SetFont("Helvetica", "", 12)
	pdf.SetTextColor(0, 0, 0)

	for i, d := range daily {
		barHeight := d.Total / maxAmount * chartHeight
		left := pageLeft + float64(i)*barWidth
		pdf.Rect(left, baseline-barHeight, barWidth*0.6, barHeight, "F")

		label := d.DayOfWeek
		labelX := left + barWidth*0.3 - pdf.GetStringWidth(label)/2
		pdf.Text(labelX, baseline+15, label)
	}

	return baseline + 50
}

func drawCategoryRows(pdf *fpdf.Fpdf, cats []core.CategoryTotal, y float64) {
	pdf.SetFont("Helvetica", "", 14)

	for _, cat := range cats {
		if y+rowHeight > pageBottom {
			pdf.AddPage()
			y = 40
		}

		pdf.SetFillColor(0xe0, 0xe0, 0xe0)
		pdf.RoundedRect(pageLeft, y, pageRight-pageLeft, rowHeight, 8, "1234", "F")

		pdf.SetTextColor(0, 0, 0)
		pdf.Text(pageLeft+10, y+25, cat.Category)

		amount := fmt.Sprintf("%.2f", cat.Total)
		pdf.Text(pageRight-15-pdf.GetStringWidth(amount), y+25, amount)

		y += rowHeight + rowGap
	}
}

// Export writes the report into dir under a timestamped name and returns the
// full path.
func Export(dir string, daily []core.DailyTotal, cats []core.CategoryTotal) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	name := fmt.Sprintf("ExpenseReport_%s.pdf", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report file: %w", err)
	}

	if err := WritePDF(f, daily, cats); err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close report file: %w", err)
	}

	return path, nil
}
