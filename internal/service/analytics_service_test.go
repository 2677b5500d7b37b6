package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terraops/earthworks-dispatch/internal/model"
)

func TestAnalyticsSummarize(t *testing.T) {
	export, imp := pairedSites()
	hauler := model.Hauler{
		ID:     uuid.NewSHA1(uuid.NameSpaceOID, []byte("hauler-Granite")),
		Name:   "Granite Trucking",
		Status: model.HaulerStatusActive,
	}
	approved := model.Match{
		ID:                uuid.New(),
		ExportSiteID:      export.ID,
		ImportSiteID:      imp.ID,
		Score:             82,
		CostSavings:       2500,
		CarbonReductionKg: 400,
		Status:            model.MatchStatusApproved,
	}
	suggested := model.Match{
		ID:           uuid.New(),
		ExportSiteID: export.ID,
		ImportSiteID: imp.ID,
		Score:        55,
		Status:       model.MatchStatusSuggested,
	}

	day1 := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC)
	assigned1 := model.Schedule{
		ID:         uuid.New(),
		MatchID:    approved.ID,
		HaulerID:   &hauler.ID,
		Date:       day1,
		StartTime:  "07:00",
		EndTime:    "10:20",
		VolumeCuYd: 168,
		Route:      model.Route{DistanceMiles: 12, Cost: 42},
		Status:     model.ScheduleStatusScheduled,
	}
	assigned2 := assigned1
	assigned2.ID = uuid.New()
	assigned2.Date = day2
	unassigned := model.Schedule{
		ID:         uuid.New(),
		MatchID:    approved.ID,
		Date:       day2,
		StartTime:  "07:00",
		EndTime:    "17:00",
		VolumeCuYd: 100,
		Status:     model.ScheduleStatusScheduled,
	}
	conflicted := model.Schedule{
		ID:         uuid.New(),
		MatchID:    approved.ID,
		HaulerID:   &hauler.ID,
		Date:       day2,
		StartTime:  "07:00",
		EndTime:    "17:00",
		VolumeCuYd: 50,
		Status:     model.ScheduleStatusConflict,
	}

	svc := NewAnalyticsService(
		newFakeSiteStore(export, imp),
		newFakeHaulerStore(hauler),
		newFakeMatchStore(approved, suggested),
		newFakeScheduleStore(assigned1, assigned2, unassigned, conflicted),
	)

	summary, err := svc.Summarize(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, summary.ExportSites)
	assert.Equal(t, 1, summary.ImportSites)
	assert.Equal(t, 1, summary.SuggestedMatches)
	assert.Equal(t, 1, summary.ApprovedMatches)
	assert.Equal(t, 2500.0, summary.TotalCostSavings)
	assert.Equal(t, 400.0, summary.TotalCarbonKg)
	assert.InDelta(t, 486, summary.ScheduledVolume, 0.01)
	assert.Equal(t, 1, summary.ConflictSchedules)
	assert.InDelta(t, 100, summary.UnassignedVolume, 0.01)

	require.Len(t, summary.HaulerUtilizations, 1)
	util := summary.HaulerUtilizations[0]
	assert.Equal(t, hauler.ID, util.HaulerID)
	assert.InDelta(t, 386, util.ScheduledVolume, 0.01)
	assert.Equal(t, 2, util.HaulDays)
}
