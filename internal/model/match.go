package model

import (
	"time"

	"github.com/google/uuid"
)

type MatchStatus string

const (
	MatchStatusSuggested MatchStatus = "suggested"
	MatchStatusApproved  MatchStatus = "approved"
	MatchStatusRejected  MatchStatus = "rejected"
)

// Match pairs one export site with one import site. Score is 0-100,
// savings and carbon figures are relative to hauling to the baseline
// disposal facility instead.
type Match struct {
	ID                uuid.UUID
	ExportSiteID      uuid.UUID
	ImportSiteID      uuid.UUID
	Score             float64
	DistanceMiles     float64
	CostSavings       float64
	CarbonReductionKg float64
	Status            MatchStatus
	CreatedAt         time.Time
}
