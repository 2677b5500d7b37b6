package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/terraops/earthworks-dispatch/internal/model"
)

func newAlert(scheduleID uuid.UUID, alertType model.AlertType, severity model.AlertSeverity, message string) model.Alert {
	// Alert IDs derive from the schedule and type so reruns are stable.
	id := uuid.NewSHA1(scheduleNamespace, []byte(scheduleID.String()+"|alert|"+string(alertType)))
	return model.Alert{ID: id, Type: alertType, Severity: severity, Message: message}
}

// weatherDelay is a deterministic stand-in for a weather feed: dates in
// the configured risk months get a base delay probability plus a small
// day-of-year jitter, everything else stays low.
func (e *Engine) weatherDelay(day time.Time) int {
	inRisk := false
	for _, month := range e.policy.WeatherRiskMonths {
		if int(day.Month()) == month {
			inRisk = true
			break
		}
	}
	if !inRisk {
		return e.policy.WeatherQuietDelayPct
	}
	delay := e.policy.WeatherBaseDelayPct + day.YearDay()%15
	if delay > 100 {
		delay = 100
	}
	return delay
}

func (e *Engine) weatherAlert(scheduleID uuid.UUID, day time.Time, delay int) (model.Alert, bool) {
	if delay < e.policy.WeatherAlertPct {
		return model.Alert{}, false
	}
	severity := model.AlertSeverityMedium
	if delay >= 75 {
		severity = model.AlertSeverityHigh
	}
	msg := fmt.Sprintf("%d%% weather delay risk on %s", delay, day.Format("2006-01-02"))
	return newAlert(scheduleID, model.AlertTypeWeather, severity, msg), true
}

func (e *Engine) capacityAlert(scheduleID uuid.UUID, hauler model.Hauler, utilizationPct float64) (model.Alert, bool) {
	if utilizationPct <= e.policy.UtilizationAlertPct {
		return model.Alert{}, false
	}
	severity := model.AlertSeverityMedium
	if utilizationPct >= 100 {
		severity = model.AlertSeverityHigh
	}
	msg := fmt.Sprintf("%s fleet at %.0f%% utilization", hauler.Name, utilizationPct)
	return newAlert(scheduleID, model.AlertTypeCapacity, severity, msg), true
}

func (e *Engine) distanceAlert(scheduleID uuid.UUID, distanceMiles float64) (model.Alert, bool) {
	if distanceMiles <= e.policy.LongHaulMiles {
		return model.Alert{}, false
	}
	msg := fmt.Sprintf("%.1f mi haul exceeds the %.0f mi long-haul threshold", distanceMiles, e.policy.LongHaulMiles)
	return newAlert(scheduleID, model.AlertTypeDistance, model.AlertSeverityMedium, msg), true
}
