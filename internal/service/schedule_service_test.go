package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraops/earthworks-dispatch/internal/config"
	"github.com/terraops/earthworks-dispatch/internal/csvexport"
	"github.com/terraops/earthworks-dispatch/internal/excel"
	"github.com/terraops/earthworks-dispatch/internal/model"
	"github.com/terraops/earthworks-dispatch/internal/pdf"
	"github.com/terraops/earthworks-dispatch/internal/schedule"
)

func schedulePolicy() config.SchedulePolicy {
	return config.SchedulePolicy{
		TruckCapacityCuYd:    14,
		TripsPerTruckDay:     3,
		DayStart:             "07:00",
		DayEnd:               "17:00",
		ReliabilityWeight:    0.7,
		CostWeight:           0.3,
		UtilizationAlertPct:  85,
		LongHaulMiles:        40,
		LocalMiles:           10,
		HighwayMiles:         25,
		WeatherRiskMonths:    []int{11, 12, 1, 2, 3},
		WeatherBaseDelayPct:  60,
		WeatherQuietDelayPct: 10,
		WeatherAlertPct:      50,
		EmissionsPerMileKg:   1.6,
	}
}

type scheduleFixture struct {
	svc       *ScheduleService
	sites     *fakeSiteStore
	haulers   *fakeHaulerStore
	matches   *fakeMatchStore
	schedules *fakeScheduleStore
	match     model.Match
	hauler    model.Hauler
}

func newScheduleFixture(t *testing.T, matchStatus model.MatchStatus) *scheduleFixture {
	t.Helper()

	export, imp := pairedSites()
	m := model.Match{
		ID:            uuid.NewSHA1(uuid.NameSpaceOID, []byte("match-AB")),
		ExportSiteID:  export.ID,
		ImportSiteID:  imp.ID,
		Score:         82,
		DistanceMiles: 12,
		Status:        matchStatus,
	}
	hauler := model.Hauler{
		ID:               uuid.NewSHA1(uuid.NameSpaceOID, []byte("hauler-Granite")),
		Name:             "Granite Trucking",
		ReliabilityScore: 90,
		TrucksAvailable:  4,
		CostPerMile:      3.5,
		Status:           model.HaulerStatusActive,
	}

	sites := newFakeSiteStore(export, imp)
	haulers := newFakeHaulerStore(hauler)
	matches := newFakeMatchStore(m)
	schedules := newFakeScheduleStore()

	svc := NewScheduleService(
		sites,
		haulers,
		matches,
		schedules,
		schedule.NewEngine(schedulePolicy()),
		excel.NewGenerator(),
		pdf.NewGenerator(),
		csvexport.NewWriter(),
		zerolog.Nop(),
	)
	return &scheduleFixture{
		svc:       svc,
		sites:     sites,
		haulers:   haulers,
		matches:   matches,
		schedules: schedules,
		match:     m,
		hauler:    hauler,
	}
}

func TestScheduleServiceGenerate(t *testing.T) {
	fx := newScheduleFixture(t, model.MatchStatusApproved)

	planned, err := fx.svc.Generate(context.Background(), planner())
	require.NoError(t, err)
	require.NotEmpty(t, planned)

	total := 0.0
	for _, s := range planned {
		assert.Equal(t, fx.match.ID, s.MatchID)
		assert.NotEqual(t, model.ScheduleStatusConflict, s.Status)
		require.NotNil(t, s.HaulerID)
		assert.Equal(t, fx.hauler.ID, *s.HaulerID)
		total += s.VolumeCuYd
	}
	assert.InDelta(t, 1000, total, 0.01, "planned volume must equal the export volume")

	stored, err := fx.schedules.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, stored, len(planned))
}

func TestScheduleServiceGenerateNothingToDo(t *testing.T) {
	fx := newScheduleFixture(t, model.MatchStatusSuggested)

	_, err := fx.svc.Generate(context.Background(), planner())
	assert.ErrorIs(t, err, ErrNothingToGenerate)
}

func TestScheduleServiceGenerateDeniedForViewer(t *testing.T) {
	fx := newScheduleFixture(t, model.MatchStatusApproved)

	_, err := fx.svc.Generate(context.Background(), viewer())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestScheduleServiceReschedule(t *testing.T) {
	fx := newScheduleFixture(t, model.MatchStatusApproved)

	planned, err := fx.svc.Generate(context.Background(), planner())
	require.NoError(t, err)
	require.NotEmpty(t, planned)
	target := planned[0]

	moved, err := fx.svc.Reschedule(context.Background(), planner(), target.ID, RescheduleInput{
		Date:      "2026-06-20",
		StartTime: "08:00",
		EndTime:   "12:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-06-20", moved.Date.Format("2006-01-02"))
	assert.Equal(t, "08:00", moved.StartTime)
	assert.False(t, moved.IsAIGenerated)

	stored, err := fx.schedules.GetByID(context.Background(), target.ID)
	require.NoError(t, err)
	assert.Equal(t, "08:00", stored.StartTime)
}

func TestScheduleServiceRescheduleValidation(t *testing.T) {
	fx := newScheduleFixture(t, model.MatchStatusApproved)

	planned, err := fx.svc.Generate(context.Background(), planner())
	require.NoError(t, err)
	target := planned[0]

	cases := []struct {
		name  string
		input RescheduleInput
	}{
		{"bad date", RescheduleInput{Date: "June 20", StartTime: "08:00", EndTime: "12:00"}},
		{"bad clock", RescheduleInput{Date: "2026-06-20", StartTime: "8am", EndTime: "12:00"}},
		{"inverted window", RescheduleInput{Date: "2026-06-20", StartTime: "12:00", EndTime: "08:00"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.svc.Reschedule(context.Background(), planner(), target.ID, tc.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	_, err = fx.svc.Reschedule(context.Background(), planner(), uuid.New(), RescheduleInput{
		Date: "2026-06-20", StartTime: "08:00", EndTime: "12:00",
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScheduleServiceExports(t *testing.T) {
	fx := newScheduleFixture(t, model.MatchStatusApproved)

	_, err := fx.svc.Generate(context.Background(), planner())
	require.NoError(t, err)

	csvResult, err := fx.svc.ExportCSV(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "text/csv", csvResult.ContentType)
	text := string(csvResult.Content)
	assert.True(t, strings.HasPrefix(text, "date,start_time,end_time,hauler"), text)
	assert.Contains(t, text, "Granite Trucking")
	assert.Contains(t, text, "Export-A")

	xlsxResult, err := fx.svc.ExportWorkbook(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(xlsxResult.FileName, ".xlsx"))
	// xlsx files are zip archives
	assert.True(t, bytes.HasPrefix(xlsxResult.Content, []byte("PK")))
}

func TestScheduleServiceManifest(t *testing.T) {
	fx := newScheduleFixture(t, model.MatchStatusApproved)

	planned, err := fx.svc.Generate(context.Background(), planner())
	require.NoError(t, err)

	result, err := fx.svc.Manifest(context.Background(), planned[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.True(t, bytes.HasPrefix(result.Content, []byte("%PDF")))

	_, err = fx.svc.Manifest(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
}
