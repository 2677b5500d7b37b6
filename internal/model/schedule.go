package model

import (
	"time"

	"github.com/google/uuid"
)

type ScheduleStatus string

const (
	ScheduleStatusScheduled  ScheduleStatus = "scheduled"
	ScheduleStatusInProgress ScheduleStatus = "in-progress"
	ScheduleStatusCompleted  ScheduleStatus = "completed"
	ScheduleStatusDelayed    ScheduleStatus = "delayed"
	ScheduleStatusConflict   ScheduleStatus = "conflict"
)

type RouteType string

const (
	RouteTypeLocal   RouteType = "local"
	RouteTypeMixed   RouteType = "mixed"
	RouteTypeHighway RouteType = "highway"
)

type AlertType string

const (
	AlertTypeWeather  AlertType = "weather"
	AlertTypeCapacity AlertType = "capacity"
	AlertTypeDistance AlertType = "distance"
	AlertTypeConflict AlertType = "conflict"
)

type AlertSeverity string

const (
	AlertSeverityLow    AlertSeverity = "low"
	AlertSeverityMedium AlertSeverity = "medium"
	AlertSeverityHigh   AlertSeverity = "high"
)

// Alert is attached to a schedule at creation time and never edited;
// later findings append new alerts.
type Alert struct {
	ID       uuid.UUID     `json:"id"`
	Type     AlertType     `json:"type"`
	Severity AlertSeverity `json:"severity"`
	Message  string        `json:"message"`
}

type Route struct {
	DistanceMiles     float64   `json:"distance_miles"`
	Cost              float64   `json:"cost"`
	Type              RouteType `json:"type"`
	CarbonEmissionsKg float64   `json:"carbon_emissions_kg"`
}

// Schedule is one haul-day assignment for a match. StartTime and EndTime
// are "HH:MM" within Date; the fixed width makes string comparison safe
// for overlap checks.
type Schedule struct {
	ID              uuid.UUID
	MatchID         uuid.UUID
	HaulerID        *uuid.UUID // nil when no active hauler could take the work
	Date            time.Time
	StartTime       string
	EndTime         string
	VolumeCuYd      float64
	TrucksNeeded    int
	Route           Route
	Status          ScheduleStatus
	Alerts          []Alert
	IsAIGenerated   bool
	WeatherDelayPct int // 0-100 delay probability
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Overlaps reports whether two bookings collide on the same hauler-day.
// Callers have already matched hauler and date.
func (s *Schedule) Overlaps(other *Schedule) bool {
	return s.StartTime < other.EndTime && other.StartTime < s.EndTime
}
