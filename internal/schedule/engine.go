// Package schedule turns approved matches into day-by-day haul
// assignments. Like the matcher, the engine is pure: it reads snapshots
// of matches, sites, haulers and existing schedules and returns new
// schedule entries without touching storage.
package schedule

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/terraops/earthworks-dispatch/internal/config"
	"github.com/terraops/earthworks-dispatch/internal/geo"
	"github.com/terraops/earthworks-dispatch/internal/model"
)

var scheduleNamespace = uuid.MustParse("b16d9e4c-52d3-4f94-a6a7-52cc1de3fa02")

type Engine struct {
	policy config.SchedulePolicy
}

func NewEngine(policy config.SchedulePolicy) *Engine {
	return &Engine{policy: policy}
}

// GenerateSchedules plans hauls for every approved match. It never
// double-books a hauler: existing bookings are honored and each new day
// assignment is threaded through the same ledger. Work that cannot be
// placed comes back visibly flagged (conflict status or a nil hauler
// with a high capacity alert) instead of being dropped.
func (e *Engine) GenerateSchedules(
	matches []model.Match,
	sites []model.Site,
	haulers []model.Hauler,
	existing []model.Schedule,
) []model.Schedule {
	siteIdx := make(map[uuid.UUID]model.Site, len(sites))
	for _, s := range sites {
		siteIdx[s.ID] = s
	}

	scheduledVolume := make(map[uuid.UUID]float64)
	for _, s := range existing {
		scheduledVolume[s.MatchID] += s.VolumeCuYd
	}

	approved := make([]model.Match, 0, len(matches))
	for _, m := range matches {
		if m.Status == model.MatchStatusApproved {
			approved = append(approved, m)
		}
	}
	// Best matches get first claim on fleet capacity; the full ordering
	// keeps reruns deterministic.
	sort.Slice(approved, func(i, j int) bool {
		if approved[i].Score != approved[j].Score {
			return approved[i].Score > approved[j].Score
		}
		if approved[i].DistanceMiles != approved[j].DistanceMiles {
			return approved[i].DistanceMiles < approved[j].DistanceMiles
		}
		return approved[i].ID.String() < approved[j].ID.String()
	})

	ranked := e.rankHaulers(haulers)
	book := newLedger(existing)

	var result []model.Schedule
	for _, m := range approved {
		result = append(result, e.scheduleMatch(m, siteIdx, ranked, book, scheduledVolume[m.ID])...)
	}
	return result
}

// rankHaulers orders active haulers by reliability first, cost second.
func (e *Engine) rankHaulers(haulers []model.Hauler) []model.Hauler {
	active := make([]model.Hauler, 0, len(haulers))
	maxCost := 0.0
	for _, h := range haulers {
		if h.Status != model.HaulerStatusActive {
			continue
		}
		active = append(active, h)
		if h.CostPerMile > maxCost {
			maxCost = h.CostPerMile
		}
	}

	rank := func(h model.Hauler) float64 {
		costScore := 1.0
		if maxCost > 0 {
			costScore = 1 - h.CostPerMile/maxCost
		}
		return e.policy.ReliabilityWeight*(h.ReliabilityScore/100) + e.policy.CostWeight*costScore
	}
	sort.Slice(active, func(i, j int) bool {
		ri, rj := rank(active[i]), rank(active[j])
		if ri != rj {
			return ri > rj
		}
		return active[i].ID.String() < active[j].ID.String()
	})
	return active
}

func (e *Engine) scheduleMatch(
	m model.Match,
	siteIdx map[uuid.UUID]model.Site,
	ranked []model.Hauler,
	book *ledger,
	alreadyScheduled float64,
) []model.Schedule {
	export, okE := siteIdx[m.ExportSiteID]
	imp, okI := siteIdx[m.ImportSiteID]
	if !okE || !okI || export.Coordinates == nil || imp.Coordinates == nil {
		return nil
	}

	remaining := math.Min(export.VolumeCuYd, imp.VolumeCuYd) - alreadyScheduled
	if remaining <= 0 {
		return nil
	}

	distance := geo.DistanceMiles(*export.Coordinates, *imp.Coordinates)

	windowStart := dayOf(laterOf(export.WindowStart, imp.WindowStart))
	windowEnd := dayOf(earlierOf(export.WindowEnd, imp.WindowEnd))
	if windowEnd.Before(windowStart) {
		// Matcher gap decay can approve pairs whose windows never meet.
		return []model.Schedule{e.conflictSchedule(m, distance, remaining, windowStart, 0)}
	}

	if len(ranked) == 0 {
		return []model.Schedule{e.unassignedSchedule(m, distance, remaining, windowStart)}
	}

	capacityPerTruck := e.policy.TruckCapacityCuYd * float64(e.policy.TripsPerTruckDay)
	dayStartMin := clockMinutes(e.policy.DayStart)
	dayEndMin := clockMinutes(e.policy.DayEnd)
	tripMinutes := (dayEndMin - dayStartMin) / e.policy.TripsPerTruckDay

	var result []model.Schedule
	seq := 0
	for day := windowStart; remaining > 0; day = day.AddDate(0, 0, 1) {
		if day.After(windowEnd) {
			result = append(result, e.conflictSchedule(m, distance, remaining, windowEnd, seq))
			break
		}

		for _, hauler := range ranked {
			freeTrucks := hauler.TrucksAvailable - book.trucksUsed(hauler.ID, day)
			if freeTrucks <= 0 {
				continue
			}

			volumeToday := math.Min(remaining, float64(freeTrucks)*capacityPerTruck)
			trucksNeeded := int(math.Ceil(volumeToday / capacityPerTruck))
			tripsPerTruck := int(math.Ceil(volumeToday / (e.policy.TruckCapacityCuYd * float64(trucksNeeded))))
			duration := tripsPerTruck * tripMinutes

			startMin, endMin, ok := book.findSlot(hauler.ID, day, duration, dayStartMin, dayEndMin)
			if !ok {
				continue
			}

			s := e.buildSchedule(m, hauler, day, startMin, endMin, distance, volumeToday, trucksNeeded, seq, book)
			book.add(hauler.ID, day, booking{start: s.StartTime, end: s.EndTime, trucks: trucksNeeded, volume: volumeToday})
			result = append(result, s)
			remaining -= volumeToday
			seq++
			break
		}
	}
	return result
}

func (e *Engine) buildSchedule(
	m model.Match,
	hauler model.Hauler,
	day time.Time,
	startMin, endMin int,
	distance, volume float64,
	trucksNeeded, seq int,
	book *ledger,
) model.Schedule {
	id := scheduleID(m.ID, hauler.ID.String(), day, seq)
	haulerID := hauler.ID

	s := model.Schedule{
		ID:            id,
		MatchID:       m.ID,
		HaulerID:      &haulerID,
		Date:          day,
		StartTime:     minutesClock(startMin),
		EndTime:       minutesClock(endMin),
		VolumeCuYd:    volume,
		TrucksNeeded:  trucksNeeded,
		Route:         e.buildRoute(distance, hauler.CostPerMile),
		Status:        model.ScheduleStatusScheduled,
		IsAIGenerated: true,
	}

	s.WeatherDelayPct = e.weatherDelay(day)
	if alert, ok := e.weatherAlert(id, day, s.WeatherDelayPct); ok {
		s.Alerts = append(s.Alerts, alert)
	}

	fleetCapacity := float64(hauler.TrucksAvailable) * e.policy.TruckCapacityCuYd * float64(e.policy.TripsPerTruckDay)
	utilization := 0.0
	if fleetCapacity > 0 {
		utilization = (book.volumeUsed(hauler.ID, day) + volume) / fleetCapacity * 100
	}
	if alert, ok := e.capacityAlert(id, hauler, utilization); ok {
		s.Alerts = append(s.Alerts, alert)
	}

	if alert, ok := e.distanceAlert(id, distance); ok {
		s.Alerts = append(s.Alerts, alert)
	}
	return s
}

// conflictSchedule flags volume that found no slot inside the site
// window, so a planner can intervene instead of losing the work.
func (e *Engine) conflictSchedule(m model.Match, distance, volume float64, day time.Time, seq int) model.Schedule {
	id := scheduleID(m.ID, "conflict", day, seq)
	msg := fmt.Sprintf("no open hauler slot for %.0f cu yd within the site window", volume)
	capacityPerTruck := e.policy.TruckCapacityCuYd * float64(e.policy.TripsPerTruckDay)
	return model.Schedule{
		ID:            id,
		MatchID:       m.ID,
		Date:          day,
		StartTime:     e.policy.DayStart,
		EndTime:       e.policy.DayEnd,
		VolumeCuYd:    volume,
		TrucksNeeded:  int(math.Ceil(volume / capacityPerTruck)),
		Route:         e.buildRoute(distance, 0),
		Status:        model.ScheduleStatusConflict,
		Alerts:        []model.Alert{newAlert(id, model.AlertTypeConflict, model.AlertSeverityHigh, msg)},
		IsAIGenerated: true,
	}
}

// unassignedSchedule is emitted when no hauler is active at all. The
// match stays visible with a nil hauler rather than silently dropping.
func (e *Engine) unassignedSchedule(m model.Match, distance, volume float64, day time.Time) model.Schedule {
	id := scheduleID(m.ID, "unassigned", day, 0)
	capacityPerTruck := e.policy.TruckCapacityCuYd * float64(e.policy.TripsPerTruckDay)
	msg := fmt.Sprintf("no active hauler for %.0f cu yd; assign one manually", volume)
	return model.Schedule{
		ID:            id,
		MatchID:       m.ID,
		Date:          day,
		StartTime:     e.policy.DayStart,
		EndTime:       e.policy.DayEnd,
		VolumeCuYd:    volume,
		TrucksNeeded:  int(math.Ceil(volume / capacityPerTruck)),
		Route:         e.buildRoute(distance, 0),
		Status:        model.ScheduleStatusScheduled,
		Alerts:        []model.Alert{newAlert(id, model.AlertTypeCapacity, model.AlertSeverityHigh, msg)},
		IsAIGenerated: true,
	}
}

// Rebook applies a manual override (drag-to-reschedule or what-if edit)
// to one schedule: new date, times or hauler. Route cost, weather risk
// and alerts are recomputed and the booking is conflict-checked against
// the hauler's other commitments rather than silently overlapping.
func (e *Engine) Rebook(s model.Schedule, hauler *model.Hauler, others []model.Schedule) model.Schedule {
	s.IsAIGenerated = false
	s.Status = model.ScheduleStatusScheduled
	s.Alerts = nil

	rate := 0.0
	if hauler != nil {
		id := hauler.ID
		s.HaulerID = &id
		rate = hauler.CostPerMile
	} else {
		s.HaulerID = nil
	}
	s.Route = e.buildRoute(s.Route.DistanceMiles, rate)

	s.WeatherDelayPct = e.weatherDelay(s.Date)
	if alert, ok := e.weatherAlert(s.ID, s.Date, s.WeatherDelayPct); ok {
		s.Alerts = append(s.Alerts, alert)
	}
	if alert, ok := e.distanceAlert(s.ID, s.Route.DistanceMiles); ok {
		s.Alerts = append(s.Alerts, alert)
	}

	if s.HaulerID != nil {
		for i := range others {
			other := &others[i]
			if other.ID == s.ID || other.HaulerID == nil || *other.HaulerID != *s.HaulerID {
				continue
			}
			if !sameDay(other.Date, s.Date) || other.Status == model.ScheduleStatusConflict {
				continue
			}
			if s.Overlaps(other) {
				msg := fmt.Sprintf("overlaps booking %s (%s-%s)", other.ID, other.StartTime, other.EndTime)
				s.Status = model.ScheduleStatusConflict
				s.Alerts = append(s.Alerts, newAlert(s.ID, model.AlertTypeConflict, model.AlertSeverityHigh, msg))
				break
			}
		}
	}
	return s
}

func (e *Engine) buildRoute(distance, ratePerMile float64) model.Route {
	return model.Route{
		DistanceMiles:     round2(distance),
		Cost:              round2(geo.Cost(distance, ratePerMile)),
		Type:              e.routeType(distance),
		CarbonEmissionsKg: round2(geo.Emissions(distance, e.policy.EmissionsPerMileKg)),
	}
}

func (e *Engine) routeType(distance float64) model.RouteType {
	switch {
	case distance <= e.policy.LocalMiles:
		return model.RouteTypeLocal
	case distance >= e.policy.HighwayMiles:
		return model.RouteTypeHighway
	default:
		return model.RouteTypeMixed
	}
}

func scheduleID(matchID uuid.UUID, haulerKey string, day time.Time, seq int) uuid.UUID {
	key := fmt.Sprintf("%s|%s|%s|%d", matchID, haulerKey, day.Format("2006-01-02"), seq)
	return uuid.NewSHA1(scheduleNamespace, []byte(key))
}

func clockMinutes(clock string) int {
	var h, m int
	fmt.Sscanf(clock, "%d:%d", &h, &m)
	return h*60 + m
}

func minutesClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sameDay(a, b time.Time) bool {
	return dayOf(a).Equal(dayOf(b))
}

func laterOf(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func earlierOf(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
