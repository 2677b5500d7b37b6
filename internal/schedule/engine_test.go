package schedule

import (
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"

	"github.com/terraops/earthworks-dispatch/internal/config"
	"github.com/terraops/earthworks-dispatch/internal/model"
)

func testPolicy() config.SchedulePolicy {
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

func point(lng, lat float64) *orb.Point {
	p := orb.Point{lng, lat}
	return &p
}

func siteFixture(name string, siteType model.SiteType, volume float64, coords *orb.Point, start, end time.Time) model.Site {
	return model.Site{
		ID:          uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)),
		Name:        name,
		Type:        siteType,
		Coordinates: coords,
		SoilType:    "clay",
		VolumeCuYd:  volume,
		WindowStart: start,
		WindowEnd:   end,
	}
}

func haulerFixture(name string, trucks int, costPerMile, reliability float64) model.Hauler {
	return model.Hauler{
		ID:               uuid.NewSHA1(uuid.NameSpaceOID, []byte("hauler-"+name)),
		Name:             name,
		ReliabilityScore: reliability,
		TrucksAvailable:  trucks,
		CostPerMile:      costPerMile,
		Status:           model.HaulerStatusActive,
	}
}

func matchFixture(export, imp model.Site, score float64) model.Match {
	return model.Match{
		ID:            uuid.NewSHA1(uuid.NameSpaceOID, []byte("match-"+export.Name+imp.Name)),
		ExportSiteID:  export.ID,
		ImportSiteID:  imp.ID,
		Score:         score,
		DistanceMiles: 12,
		Status:        model.MatchStatusApproved,
	}
}

// scenarioFixture is the Export-A / Import-B pairing: 1000 vs 1200 cu yd,
// about 12 miles apart, June windows, one hauler with 4 trucks.
func scenarioFixture() ([]model.Match, []model.Site, []model.Hauler) {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	export := siteFixture("Export-A", model.SiteTypeExport, 1000, point(-122.4194, 37.7749), start, end)
	imp := siteFixture("Import-B", model.SiteTypeImport, 1200, point(-122.4194, 37.9487), start, end)
	hauler := haulerFixture("Granite Hauling", 4, 3.5, 90)
	return []model.Match{matchFixture(export, imp, 88)}, []model.Site{export, imp}, []model.Hauler{hauler}
}

func TestGenerateSchedules_Scenario(t *testing.T) {
	matches, sites, haulers := scenarioFixture()
	engine := NewEngine(testPolicy())

	schedules := engine.GenerateSchedules(matches, sites, haulers, nil)
	if len(schedules) == 0 {
		t.Fatal("expected schedules for the approved match")
	}

	total := 0.0
	for _, s := range schedules {
		total += s.VolumeCuYd
		if s.Status == model.ScheduleStatusConflict {
			t.Errorf("unexpected conflict schedule: %+v", s)
		}
		if s.Route.Cost <= 0 {
			t.Errorf("expected positive route cost, got %v", s.Route.Cost)
		}
		if s.HaulerID == nil {
			t.Error("expected an assigned hauler")
		}
		if !s.IsAIGenerated {
			t.Error("engine output must be flagged as generated")
		}
		if s.TrucksNeeded < 1 || s.TrucksNeeded > 4 {
			t.Errorf("trucks needed out of fleet bounds: %d", s.TrucksNeeded)
		}
	}
	if total != 1000 {
		t.Errorf("scheduled volume must sum to the export volume, got %v", total)
	}

	// 4 trucks x 14 cu yd x 3 trips = 168/day, so 1000 cu yd spans 6
	// consecutive days.
	if len(schedules) != 6 {
		t.Errorf("expected 6 haul days, got %d", len(schedules))
	}
	for i := 1; i < len(schedules); i++ {
		if !schedules[i].Date.After(schedules[i-1].Date) {
			t.Errorf("haul days must advance, got %v then %v", schedules[i-1].Date, schedules[i].Date)
		}
	}
}

func TestGenerateSchedules_IgnoresUnapproved(t *testing.T) {
	matches, sites, haulers := scenarioFixture()
	matches[0].Status = model.MatchStatusSuggested

	engine := NewEngine(testPolicy())
	if got := engine.GenerateSchedules(matches, sites, haulers, nil); len(got) != 0 {
		t.Fatalf("suggested matches must not schedule, got %d entries", len(got))
	}
}

func TestGenerateSchedules_Idempotent(t *testing.T) {
	matches, sites, haulers := scenarioFixture()
	engine := NewEngine(testPolicy())

	first := engine.GenerateSchedules(matches, sites, haulers, nil)
	second := engine.GenerateSchedules(matches, sites, haulers, nil)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical inputs must produce identical schedules")
	}
}

func TestGenerateSchedules_VolumeConservation(t *testing.T) {
	matches, sites, haulers := scenarioFixture()
	engine := NewEngine(testPolicy())

	existing := engine.GenerateSchedules(matches, sites, haulers, nil)
	rerun := engine.GenerateSchedules(matches, sites, haulers, existing)
	if len(rerun) != 0 {
		t.Fatalf("fully scheduled match must not gain volume, got %d new entries", len(rerun))
	}

	// Partially scheduled: only the remainder may be planned.
	partial := existing[:3] // 3 x 168 = 504 already booked
	rerun = engine.GenerateSchedules(matches, sites, haulers, partial)
	total := 0.0
	for _, s := range rerun {
		total += s.VolumeCuYd
	}
	if total != 1000-504 {
		t.Errorf("expected %v remaining volume, got %v", 1000-504, total)
	}
}

func TestGenerateSchedules_NoDoubleBooking(t *testing.T) {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	exportA := siteFixture("Export-A", model.SiteTypeExport, 500, point(-122.42, 37.77), start, end)
	importB := siteFixture("Import-B", model.SiteTypeImport, 500, point(-122.40, 37.80), start, end)
	exportC := siteFixture("Export-C", model.SiteTypeExport, 500, point(-122.45, 37.76), start, end)
	importD := siteFixture("Import-D", model.SiteTypeImport, 500, point(-122.39, 37.82), start, end)
	hauler := haulerFixture("Granite Hauling", 3, 3.5, 90)

	matches := []model.Match{
		matchFixture(exportA, importB, 90),
		matchFixture(exportC, importD, 80),
	}
	sites := []model.Site{exportA, importB, exportC, importD}

	engine := NewEngine(testPolicy())
	schedules := engine.GenerateSchedules(matches, sites, []model.Hauler{hauler}, nil)

	for i := range schedules {
		for j := i + 1; j < len(schedules); j++ {
			a, b := schedules[i], schedules[j]
			if a.HaulerID == nil || b.HaulerID == nil || *a.HaulerID != *b.HaulerID {
				continue
			}
			if !a.Date.Equal(b.Date) {
				continue
			}
			bothConflict := a.Status == model.ScheduleStatusConflict && b.Status == model.ScheduleStatusConflict
			if a.Overlaps(&b) && !bothConflict {
				t.Errorf("hauler double-booked on %v: [%s-%s] vs [%s-%s]",
					a.Date, a.StartTime, a.EndTime, b.StartTime, b.EndTime)
			}
		}
	}
}

func TestGenerateSchedules_NoActiveHauler(t *testing.T) {
	matches, sites, haulers := scenarioFixture()
	haulers[0].Status = model.HaulerStatusInactive

	engine := NewEngine(testPolicy())
	schedules := engine.GenerateSchedules(matches, sites, haulers, nil)
	if len(schedules) != 1 {
		t.Fatalf("expected one unassigned schedule, got %d", len(schedules))
	}

	s := schedules[0]
	if s.HaulerID != nil {
		t.Error("expected nil hauler")
	}
	if s.Status == model.ScheduleStatusConflict {
		t.Error("unassigned work is flagged by alert, not conflict status")
	}
	found := false
	for _, a := range s.Alerts {
		if a.Type == model.AlertTypeCapacity && a.Severity == model.AlertSeverityHigh {
			found = true
		}
	}
	if !found {
		t.Error("expected a high-severity capacity alert")
	}
}

func TestGenerateSchedules_WindowTooSmallConflicts(t *testing.T) {
	matches, sites, haulers := scenarioFixture()
	// Two-day window fits 336 of the 1000 cu yd.
	for i := range sites {
		sites[i].WindowEnd = sites[i].WindowStart.AddDate(0, 0, 1)
	}

	engine := NewEngine(testPolicy())
	schedules := engine.GenerateSchedules(matches, sites, haulers, nil)

	var conflicts []model.Schedule
	total := 0.0
	for _, s := range schedules {
		total += s.VolumeCuYd
		if s.Status == model.ScheduleStatusConflict {
			conflicts = append(conflicts, s)
		}
	}
	if len(conflicts) != 1 {
		t.Fatalf("expected one conflict entry for the overflow, got %d", len(conflicts))
	}
	if conflicts[0].VolumeCuYd != 1000-336 {
		t.Errorf("conflict entry should carry the unplaced %v cu yd, got %v", 1000-336, conflicts[0].VolumeCuYd)
	}
	if total != 1000 {
		t.Errorf("placed plus flagged volume must cover the match, got %v", total)
	}
	hasAlert := false
	for _, a := range conflicts[0].Alerts {
		if a.Type == model.AlertTypeConflict {
			hasAlert = true
		}
	}
	if !hasAlert {
		t.Error("conflict schedule must carry a conflict alert")
	}
}

func TestGenerateSchedules_WeatherRiskWindow(t *testing.T) {
	matches, sites, haulers := scenarioFixture()
	// Move the windows into January, a configured risk month.
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	for i := range sites {
		sites[i].WindowStart = start
		sites[i].WindowEnd = end
	}

	engine := NewEngine(testPolicy())
	schedules := engine.GenerateSchedules(matches, sites, haulers, nil)
	if len(schedules) == 0 {
		t.Fatal("expected schedules")
	}
	for _, s := range schedules {
		if s.WeatherDelayPct < 50 {
			t.Errorf("january haul should carry elevated weather delay, got %d", s.WeatherDelayPct)
		}
		found := false
		for _, a := range s.Alerts {
			if a.Type == model.AlertTypeWeather {
				found = true
			}
		}
		if !found {
			t.Errorf("expected weather alert on %v", s.Date)
		}
	}
}

func TestGenerateSchedules_QuietMonthWeatherBaseline(t *testing.T) {
	// The June scenario sits outside the risk months: every haul day
	// carries the configured quiet baseline and no weather alert.
	matches, sites, haulers := scenarioFixture()
	policy := testPolicy()
	policy.WeatherQuietDelayPct = 5

	engine := NewEngine(policy)
	schedules := engine.GenerateSchedules(matches, sites, haulers, nil)
	if len(schedules) == 0 {
		t.Fatal("expected schedules")
	}
	for _, s := range schedules {
		if s.WeatherDelayPct != 5 {
			t.Errorf("quiet month should use the policy baseline, got %d", s.WeatherDelayPct)
		}
		for _, a := range s.Alerts {
			if a.Type == model.AlertTypeWeather {
				t.Errorf("unexpected weather alert on %v", s.Date)
			}
		}
	}
}

func TestRankHaulers(t *testing.T) {
	reliable := haulerFixture("Reliable", 4, 5.0, 95)
	cheap := haulerFixture("Cheap", 4, 2.0, 60)
	inactive := haulerFixture("Idle", 4, 1.0, 99)
	inactive.Status = model.HaulerStatusInactive

	engine := NewEngine(testPolicy())
	ranked := engine.rankHaulers([]model.Hauler{cheap, inactive, reliable})

	if len(ranked) != 2 {
		t.Fatalf("inactive haulers must be excluded, got %d", len(ranked))
	}
	// Reliability is weighted 0.7 vs 0.3 for cost, so the reliable but
	// expensive fleet wins.
	if ranked[0].Name != "Reliable" {
		t.Errorf("expected Reliable first, got %s", ranked[0].Name)
	}
}

func TestRebook_DetectsOverlap(t *testing.T) {
	matches, sites, haulers := scenarioFixture()
	engine := NewEngine(testPolicy())
	schedules := engine.GenerateSchedules(matches, sites, haulers, nil)
	if len(schedules) < 2 {
		t.Fatal("fixture needs at least two schedules")
	}

	// Drag day two onto day one: same hauler, same times.
	moved := schedules[1]
	moved.Date = schedules[0].Date
	moved.StartTime = schedules[0].StartTime
	moved.EndTime = schedules[0].EndTime

	result := engine.Rebook(moved, &haulers[0], schedules)
	if result.Status != model.ScheduleStatusConflict {
		t.Errorf("expected conflict status, got %v", result.Status)
	}
	if result.IsAIGenerated {
		t.Error("manual override must clear the generated flag")
	}
	found := false
	for _, a := range result.Alerts {
		if a.Type == model.AlertTypeConflict {
			found = true
		}
	}
	if !found {
		t.Error("expected conflict alert")
	}
}

func TestRebook_CleanMove(t *testing.T) {
	matches, sites, haulers := scenarioFixture()
	engine := NewEngine(testPolicy())
	schedules := engine.GenerateSchedules(matches, sites, haulers, nil)

	moved := schedules[len(schedules)-1]
	moved.Date = moved.Date.AddDate(0, 0, 7) // an open day

	result := engine.Rebook(moved, &haulers[0], schedules)
	if result.Status != model.ScheduleStatusScheduled {
		t.Errorf("expected scheduled status, got %v", result.Status)
	}
	if result.Route.Cost <= 0 {
		t.Errorf("rebooking with a hauler must recompute cost, got %v", result.Route.Cost)
	}
}
