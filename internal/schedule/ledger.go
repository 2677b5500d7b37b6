package schedule

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/terraops/earthworks-dispatch/internal/model"
)

type booking struct {
	start  string
	end    string
	trucks int
	volume float64
}

// ledger tracks per-hauler-day commitments, seeded from existing
// schedules so a run never double-books around them. Conflict-status
// schedules are excluded: they hold no real slot.
type ledger struct {
	byHaulerDay map[string][]booking
}

func newLedger(existing []model.Schedule) *ledger {
	l := &ledger{byHaulerDay: make(map[string][]booking)}
	for _, s := range existing {
		if s.HaulerID == nil || s.Status == model.ScheduleStatusConflict {
			continue
		}
		l.add(*s.HaulerID, s.Date, booking{
			start:  s.StartTime,
			end:    s.EndTime,
			trucks: s.TrucksNeeded,
			volume: s.VolumeCuYd,
		})
	}
	return l
}

func haulerDayKey(haulerID uuid.UUID, day time.Time) string {
	return haulerID.String() + "|" + day.Format("2006-01-02")
}

func (l *ledger) add(haulerID uuid.UUID, day time.Time, b booking) {
	key := haulerDayKey(haulerID, day)
	l.byHaulerDay[key] = append(l.byHaulerDay[key], b)
}

func (l *ledger) trucksUsed(haulerID uuid.UUID, day time.Time) int {
	total := 0
	for _, b := range l.byHaulerDay[haulerDayKey(haulerID, day)] {
		total += b.trucks
	}
	return total
}

func (l *ledger) volumeUsed(haulerID uuid.UUID, day time.Time) float64 {
	total := 0.0
	for _, b := range l.byHaulerDay[haulerDayKey(haulerID, day)] {
		total += b.volume
	}
	return total
}

// findSlot returns the earliest window of durationMin minutes inside the
// working day that does not overlap any booking for this hauler-day.
func (l *ledger) findSlot(haulerID uuid.UUID, day time.Time, durationMin, dayStartMin, dayEndMin int) (start, end int, ok bool) {
	bookings := append([]booking(nil), l.byHaulerDay[haulerDayKey(haulerID, day)]...)
	sort.Slice(bookings, func(i, j int) bool { return bookings[i].start < bookings[j].start })

	candidate := dayStartMin
	for _, b := range bookings {
		bStart := clockMinutes(b.start)
		bEnd := clockMinutes(b.end)
		if candidate+durationMin <= bStart {
			break
		}
		if bEnd > candidate {
			candidate = bEnd
		}
	}
	if candidate+durationMin > dayEndMin {
		return 0, 0, false
	}
	return candidate, candidate + durationMin, true
}
