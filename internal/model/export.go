package model

import "time"

// ScheduleLine is a schedule joined with the names a reader needs on an
// export row.
type ScheduleLine struct {
	Schedule       Schedule
	HaulerName     string
	ExportSiteName string
	ImportSiteName string
}

// ScheduleBook is the input for the workbook and CSV exports.
type ScheduleBook struct {
	GeneratedAt time.Time
	Lines       []ScheduleLine
}

// HaulManifest is the input for the per-schedule PDF manifest handed to
// the crew.
type HaulManifest struct {
	Schedule   Schedule
	Match      Match
	ExportSite Site
	ImportSite Site
	Hauler     *Hauler
}
