package csvexport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/terraops/earthworks-dispatch/internal/model"
)

type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

// Write renders the schedule book as a flat CSV, one row per haul day.
func (w *Writer) Write(book model.ScheduleBook) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	header := []string{
		"date",
		"start_time",
		"end_time",
		"hauler",
		"export_site",
		"import_site",
		"volume_cu_yd",
		"trucks",
		"distance_miles",
		"cost",
		"route_type",
		"status",
		"weather_delay_pct",
		"alerts",
	}
	if err := cw.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, line := range book.Lines {
		s := line.Schedule
		hauler := line.HaulerName
		if hauler == "" {
			hauler = "unassigned"
		}
		record := []string{
			s.Date.Format("2006-01-02"),
			s.StartTime,
			s.EndTime,
			hauler,
			line.ExportSiteName,
			line.ImportSiteName,
			strconv.FormatFloat(s.VolumeCuYd, 'f', 2, 64),
			strconv.Itoa(s.TrucksNeeded),
			strconv.FormatFloat(s.Route.DistanceMiles, 'f', 2, 64),
			strconv.FormatFloat(s.Route.Cost, 'f', 2, 64),
			string(s.Route.Type),
			string(s.Status),
			strconv.Itoa(s.WeatherDelayPct),
			joinAlerts(s.Alerts),
		}
		if err := cw.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func joinAlerts(alerts []model.Alert) string {
	if len(alerts) == 0 {
		return ""
	}
	out := ""
	for i, alert := range alerts {
		if i > 0 {
			out += "; "
		}
		out += fmt.Sprintf("%s/%s: %s", alert.Type, alert.Severity, alert.Message)
	}
	return out
}
