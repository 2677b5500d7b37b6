package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/terraops/earthworks-dispatch/internal/model"
	"github.com/terraops/earthworks-dispatch/internal/schedule"
)

type WorkbookGenerator interface {
	Generate(book model.ScheduleBook) ([]byte, error)
}

type ManifestGenerator interface {
	Generate(manifest model.HaulManifest) ([]byte, error)
}

type CSVWriter interface {
	Write(book model.ScheduleBook) ([]byte, error)
}

type ScheduleService struct {
	sites     SiteStore
	haulers   HaulerStore
	matches   MatchStore
	schedules ScheduleStore
	engine    *schedule.Engine
	workbook  WorkbookGenerator
	manifest  ManifestGenerator
	csv       CSVWriter
	log       zerolog.Logger
}

func NewScheduleService(
	sites SiteStore,
	haulers HaulerStore,
	matches MatchStore,
	schedules ScheduleStore,
	engine *schedule.Engine,
	workbook WorkbookGenerator,
	manifest ManifestGenerator,
	csv CSVWriter,
	log zerolog.Logger,
) *ScheduleService {
	return &ScheduleService{
		sites:     sites,
		haulers:   haulers,
		matches:   matches,
		schedules: schedules,
		engine:    engine,
		workbook:  workbook,
		manifest:  manifest,
		csv:       csv,
		log:       log,
	}
}

// Generate plans hauls for every approved match and persists the result.
// An empty plan (no approved matches) is reported distinctly so the UI
// can show a notice instead of an error.
func (s *ScheduleService) Generate(ctx context.Context, principal model.Principal) ([]model.Schedule, error) {
	if !principal.CanMutate() {
		return nil, ErrPermissionDenied
	}

	approved := model.MatchStatusApproved
	matches, err := s.matches.List(ctx, &approved)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, ErrNothingToGenerate
	}

	sites, err := s.sites.List(ctx)
	if err != nil {
		return nil, err
	}
	haulers, err := s.haulers.List(ctx)
	if err != nil {
		return nil, err
	}
	existing, err := s.schedules.List(ctx)
	if err != nil {
		return nil, err
	}

	planned := s.engine.GenerateSchedules(matches, sites, haulers, existing)
	if err := s.schedules.CreateBatch(ctx, planned); err != nil {
		return nil, err
	}

	conflicts := 0
	for _, p := range planned {
		if p.Status == model.ScheduleStatusConflict {
			conflicts++
		}
	}
	s.log.Info().
		Int("schedules", len(planned)).
		Int("conflicts", conflicts).
		Msg("scheduler run complete")
	return planned, nil
}

func (s *ScheduleService) List(ctx context.Context) ([]model.Schedule, error) {
	return s.schedules.List(ctx)
}

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

type RescheduleInput struct {
	Date      string // "2006-01-02"
	StartTime string // "HH:MM"
	EndTime   string
	HaulerID  *uuid.UUID
}

// Reschedule applies a manual override: the planner drags a haul to a
// new day, time window or hauler. The engine recomputes cost and alerts
// and flags an overlap as conflict instead of double-booking.
func (s *ScheduleService) Reschedule(ctx context.Context, principal model.Principal, id uuid.UUID, input RescheduleInput) (*model.Schedule, error) {
	if !principal.CanMutate() {
		return nil, ErrPermissionDenied
	}

	current, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	date, err := parseDate(input.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid date", ErrInvalidInput)
	}
	if !clockPattern.MatchString(input.StartTime) || !clockPattern.MatchString(input.EndTime) {
		return nil, fmt.Errorf("%w: times must be HH:MM", ErrInvalidInput)
	}
	if input.StartTime >= input.EndTime {
		return nil, fmt.Errorf("%w: start_time must be before end_time", ErrInvalidInput)
	}

	var hauler *model.Hauler
	haulerID := input.HaulerID
	if haulerID == nil {
		haulerID = current.HaulerID
	}
	if haulerID != nil {
		hauler, err = s.haulers.GetByID(ctx, *haulerID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: hauler not found", ErrInvalidInput)
			}
			return nil, err
		}
	}

	others, err := s.schedules.List(ctx)
	if err != nil {
		return nil, err
	}

	moved := *current
	moved.Date = date
	moved.StartTime = input.StartTime
	moved.EndTime = input.EndTime

	result := s.engine.Rebook(moved, hauler, others)
	if err := s.schedules.Update(ctx, result); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("schedule_id", id.String()).
		Str("date", input.Date).
		Str("status", string(result.Status)).
		Msg("schedule manually moved")
	return &result, nil
}

type ExportResult struct {
	FileName    string
	ContentType string
	Content     []byte
}

func (s *ScheduleService) ExportWorkbook(ctx context.Context) (*ExportResult, error) {
	book, err := s.buildBook(ctx)
	if err != nil {
		return nil, err
	}
	content, err := s.workbook.Generate(*book)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName:    fmt.Sprintf("schedules-%s.xlsx", book.GeneratedAt.Format("20060102-150405")),
		ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		Content:     content,
	}, nil
}

func (s *ScheduleService) ExportCSV(ctx context.Context) (*ExportResult, error) {
	book, err := s.buildBook(ctx)
	if err != nil {
		return nil, err
	}
	content, err := s.csv.Write(*book)
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName:    fmt.Sprintf("schedules-%s.csv", book.GeneratedAt.Format("20060102-150405")),
		ContentType: "text/csv",
		Content:     content,
	}, nil
}

// Manifest renders the printable haul manifest for one schedule.
func (s *ScheduleService) Manifest(ctx context.Context, id uuid.UUID) (*ExportResult, error) {
	sched, err := s.schedules.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	m, err := s.matches.GetByID(ctx, sched.MatchID)
	if err != nil {
		return nil, err
	}
	export, err := s.sites.GetByID(ctx, m.ExportSiteID)
	if err != nil {
		return nil, err
	}
	imp, err := s.sites.GetByID(ctx, m.ImportSiteID)
	if err != nil {
		return nil, err
	}
	var hauler *model.Hauler
	if sched.HaulerID != nil {
		hauler, err = s.haulers.GetByID(ctx, *sched.HaulerID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	content, err := s.manifest.Generate(model.HaulManifest{
		Schedule:   *sched,
		Match:      *m,
		ExportSite: *export,
		ImportSite: *imp,
		Hauler:     hauler,
	})
	if err != nil {
		return nil, err
	}
	return &ExportResult{
		FileName:    fmt.Sprintf("manifest-%s.pdf", sched.Date.Format("20060102")),
		ContentType: "application/pdf",
		Content:     content,
	}, nil
}

func (s *ScheduleService) buildBook(ctx context.Context) (*model.ScheduleBook, error) {
	schedules, err := s.schedules.List(ctx)
	if err != nil {
		return nil, err
	}
	sites, err := s.sites.List(ctx)
	if err != nil {
		return nil, err
	}
	haulers, err := s.haulers.List(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := s.matches.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	siteNames := make(map[uuid.UUID]string, len(sites))
	for _, site := range sites {
		siteNames[site.ID] = site.Name
	}
	haulerNames := make(map[uuid.UUID]string, len(haulers))
	for _, h := range haulers {
		haulerNames[h.ID] = h.Name
	}
	matchByID := make(map[uuid.UUID]model.Match, len(matches))
	for _, m := range matches {
		matchByID[m.ID] = m
	}

	lines := make([]model.ScheduleLine, 0, len(schedules))
	for _, sched := range schedules {
		line := model.ScheduleLine{Schedule: sched}
		if m, ok := matchByID[sched.MatchID]; ok {
			line.ExportSiteName = siteNames[m.ExportSiteID]
			line.ImportSiteName = siteNames[m.ImportSiteID]
		}
		if sched.HaulerID != nil {
			line.HaulerName = haulerNames[*sched.HaulerID]
		}
		lines = append(lines, line)
	}
	return &model.ScheduleBook{GeneratedAt: time.Now().UTC(), Lines: lines}, nil
}
