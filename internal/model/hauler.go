package model

import (
	"time"

	"github.com/google/uuid"
)

type HaulerStatus string

const (
	HaulerStatusActive   HaulerStatus = "active"
	HaulerStatusInactive HaulerStatus = "inactive"
)

type Hauler struct {
	ID               uuid.UUID
	Name             string
	ReliabilityScore float64 // 0-100
	TrucksAvailable  int
	CostPerMile      float64
	Status           HaulerStatus
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
