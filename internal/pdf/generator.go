package pdf

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"github.com/terraops/earthworks-dispatch/internal/model"
)

type Generator struct {
	fontName string
}

func NewGenerator() *Generator {
	return &Generator{fontName: "Helvetica"}
}

// Generate renders a one-page haul manifest for the crew: where to load,
// where to dump, the time window, the truck count, and any alerts.
func (g *Generator) Generate(manifest model.HaulManifest) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	s := manifest.Schedule

	pdf.SetFont(g.fontName, "B", 14)
	pdf.CellFormat(0, 10, "HAUL MANIFEST", "", 1, "C", false, 0, "")

	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, fmt.Sprintf("Schedule %s", s.ID), "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("%s, %s - %s", formatDate(s.Date), s.StartTime, s.EndTime), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	addSiteBlock(pdf, g.fontName, "Load at (export site)", manifest.ExportSite)
	pdf.Ln(2)
	addSiteBlock(pdf, g.fontName, "Deliver to (import site)", manifest.ImportSite)
	pdf.Ln(4)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Hauler", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	if manifest.Hauler != nil {
		pdf.CellFormat(0, 6, manifest.Hauler.Name, "", 1, "L", false, 0, "")
	} else {
		pdf.CellFormat(0, 6, "Not assigned", "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 8, "Haul", "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 10)

	headers := []string{"Volume, cu yd", "Trucks", "Distance, mi", "Route", "Est. cost", "Match score"}
	colWidths := []float64{32, 22, 30, 28, 32, 32}
	drawTableRow(pdf, g.fontName, headers, colWidths, true)

	row := []string{
		formatAmount(s.VolumeCuYd, 2),
		fmt.Sprintf("%d", s.TrucksNeeded),
		formatAmount(s.Route.DistanceMiles, 2),
		string(s.Route.Type),
		formatAmount(s.Route.Cost, 2),
		formatAmount(manifest.Match.Score, 1),
	}
	drawTableRow(pdf, g.fontName, row, colWidths, false)

	if len(s.Alerts) > 0 {
		pdf.Ln(4)
		pdf.SetFont(g.fontName, "B", 12)
		pdf.CellFormat(0, 8, "Alerts", "", 1, "L", false, 0, "")
		pdf.SetFont(g.fontName, "", 10)
		for _, alert := range s.Alerts {
			if alert.Severity == model.AlertSeverityHigh {
				pdf.SetTextColor(200, 0, 0)
			}
			pdf.MultiCell(0, 5, fmt.Sprintf("[%s/%s] %s", alert.Type, alert.Severity, alert.Message), "", "L", false)
			pdf.SetTextColor(0, 0, 0)
		}
	}

	pdf.Ln(6)
	pdf.SetFont(g.fontName, "", 11)
	signatureBlock(pdf, g.fontName, "Export site foreman")
	signatureBlock(pdf, g.fontName, "Import site foreman")
	signatureBlock(pdf, g.fontName, "Driver")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func addSiteBlock(pdf *gofpdf.Fpdf, fontName, title string, site model.Site) {
	pdf.SetFont(fontName, "B", 11)
	pdf.CellFormat(0, 6, title, "", 1, "L", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	lines := []string{
		site.Name,
		fmt.Sprintf("Soil: %s", safeValue(site.SoilType)),
	}
	if site.Coordinates != nil {
		lines = append(lines, fmt.Sprintf("Location: %.5f, %.5f", site.Lat(), site.Lng()))
	}
	if site.Contaminated {
		lines = append(lines, "Contaminated material: handling controls required")
	}
	for _, line := range lines {
		pdf.MultiCell(0, 5, line, "", "L", false)
	}
}

func drawTableRow(pdf *gofpdf.Fpdf, fontName string, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 10)
	for i, col := range cols {
		align := "R"
		if i == 3 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 8, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func signatureBlock(pdf *gofpdf.Fpdf, fontName, label string) {
	pdf.SetFont(fontName, "", 11)
	pdf.CellFormat(0, 8, fmt.Sprintf("%s: ______________________", label), "", 1, "L", false, 0, "")
}

func safeValue(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatAmount(value float64, precision int) string {
	format := fmt.Sprintf("%%.%df", precision)
	return fmt.Sprintf(format, value)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
