package excel

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/terraops/earthworks-dispatch/internal/model"
)

type Generator struct{}

func NewGenerator() *Generator {
	return &Generator{}
}

// Generate writes the schedule book as a workbook: a summary sheet
// followed by one detail sheet per hauler.
func (g *Generator) Generate(book model.ScheduleBook) ([]byte, error) {
	file := excelize.NewFile()

	summarySheet := "Summary"
	file.SetSheetName("Sheet1", summarySheet)
	if err := g.writeSummary(file, summarySheet, book); err != nil {
		return nil, err
	}

	usedNames := map[string]struct{}{summarySheet: {}}
	for _, group := range groupByHauler(book.Lines) {
		sheetName := buildSheetName(group.name, usedNames)
		usedNames[sheetName] = struct{}{}

		file.NewSheet(sheetName)
		if err := g.writeDetail(file, sheetName, group); err != nil {
			return nil, err
		}
	}

	file.SetActiveSheet(0)
	buf, err := file.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (g *Generator) writeSummary(file *excelize.File, sheet string, book model.ScheduleBook) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Generated")
	set("B1", formatDateTime(book.GeneratedAt))
	set("A2", "Haul days")
	set("B2", len(book.Lines))
	set("A3", "Total volume, cu yd")
	set("B3", formatFloat(sumVolume(book.Lines)))
	set("A4", "Total haul cost")
	set("B4", formatFloat(sumCost(book.Lines)))

	tableRow := 6
	set(fmt.Sprintf("A%d", tableRow), "Hauler")
	set(fmt.Sprintf("B%d", tableRow), "Haul days")
	set(fmt.Sprintf("C%d", tableRow), "Volume, cu yd")
	set(fmt.Sprintf("D%d", tableRow), "Cost")

	for i, group := range groupByHauler(book.Lines) {
		row := tableRow + 1 + i
		set(fmt.Sprintf("A%d", row), group.name)
		set(fmt.Sprintf("B%d", row), len(group.lines))
		set(fmt.Sprintf("C%d", row), formatFloat(sumVolume(group.lines)))
		set(fmt.Sprintf("D%d", row), formatFloat(sumCost(group.lines)))
	}

	_ = file.SetColWidth(sheet, "A", "A", 32)
	_ = file.SetColWidth(sheet, "B", "D", 16)
	return nil
}

func (g *Generator) writeDetail(file *excelize.File, sheet string, group haulerGroup) error {
	set := func(cell string, value interface{}) {
		_ = file.SetCellValue(sheet, cell, value)
	}

	set("A1", "Hauler")
	set("B1", group.name)
	set("A2", "Haul days")
	set("B2", len(group.lines))
	set("A3", "Volume, cu yd")
	set("B3", formatFloat(sumVolume(group.lines)))

	tableRow := 5
	headers := []string{
		"Date",
		"Window",
		"From",
		"To",
		"Volume, cu yd",
		"Trucks",
		"Miles",
		"Cost",
		"Status",
		"Alerts",
	}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, tableRow)
		set(cell, header)
	}

	for i, line := range group.lines {
		row := tableRow + 1 + i
		s := line.Schedule
		set(fmt.Sprintf("A%d", row), formatDate(s.Date))
		set(fmt.Sprintf("B%d", row), s.StartTime+"-"+s.EndTime)
		set(fmt.Sprintf("C%d", row), line.ExportSiteName)
		set(fmt.Sprintf("D%d", row), line.ImportSiteName)
		set(fmt.Sprintf("E%d", row), formatFloat(s.VolumeCuYd))
		set(fmt.Sprintf("F%d", row), s.TrucksNeeded)
		set(fmt.Sprintf("G%d", row), formatFloat(s.Route.DistanceMiles))
		set(fmt.Sprintf("H%d", row), formatFloat(s.Route.Cost))
		set(fmt.Sprintf("I%d", row), string(s.Status))
		set(fmt.Sprintf("J%d", row), joinAlerts(s.Alerts))
	}

	_ = file.SetColWidth(sheet, "A", "B", 14)
	_ = file.SetColWidth(sheet, "C", "D", 28)
	_ = file.SetColWidth(sheet, "E", "I", 12)
	_ = file.SetColWidth(sheet, "J", "J", 48)
	return nil
}

type haulerGroup struct {
	name  string
	lines []model.ScheduleLine
}

func groupByHauler(lines []model.ScheduleLine) []haulerGroup {
	byName := map[string][]model.ScheduleLine{}
	for _, line := range lines {
		name := line.HaulerName
		if name == "" {
			name = "Unassigned"
		}
		byName[name] = append(byName[name], line)
	}

	groups := make([]haulerGroup, 0, len(byName))
	for name, grouped := range byName {
		groups = append(groups, haulerGroup{name: name, lines: grouped})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].name < groups[j].name
	})
	return groups
}

func buildSheetName(name string, used map[string]struct{}) string {
	base := sanitizeSheetName(name)
	if len(base) > 31 {
		base = base[:31]
	}

	nameCandidate := base
	counter := 2
	for {
		if _, exists := used[nameCandidate]; !exists {
			return nameCandidate
		}
		suffix := fmt.Sprintf("-%d", counter)
		trimmed := base
		if len(trimmed)+len(suffix) > 31 {
			trimmed = trimmed[:31-len(suffix)]
		}
		nameCandidate = trimmed + suffix
		counter++
	}
}

func sanitizeSheetName(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "Sheet"
	}

	replacer := strings.NewReplacer(
		"[", "-",
		"]", "-",
		":", "-",
		"*", "-",
		"?", "-",
		"/", "-",
		"\\", "-",
	)
	value = replacer.Replace(value)
	value = strings.TrimSpace(value)
	if value == "" {
		return "Sheet"
	}
	return value
}

func joinAlerts(alerts []model.Alert) string {
	if len(alerts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(alerts))
	for _, alert := range alerts {
		parts = append(parts, fmt.Sprintf("[%s/%s] %s", alert.Type, alert.Severity, alert.Message))
	}
	return strings.Join(parts, "; ")
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatFloat(value float64) string {
	return fmt.Sprintf("%.2f", value)
}

func sumVolume(lines []model.ScheduleLine) float64 {
	total := 0.0
	for _, line := range lines {
		total += line.Schedule.VolumeCuYd
	}
	return total
}

func sumCost(lines []model.ScheduleLine) float64 {
	total := 0.0
	for _, line := range lines {
		total += line.Schedule.Route.Cost
	}
	return total
}
