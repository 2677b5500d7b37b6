package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

type SiteType string

const (
	SiteTypeExport SiteType = "export"
	SiteTypeImport SiteType = "import"
)

type SiteStatus string

const (
	SiteStatusPending  SiteStatus = "pending"
	SiteStatusMatched  SiteStatus = "matched"
	SiteStatusApproved SiteStatus = "approved"
)

// Site is one earthwork location from the intake form. Export sites have
// surplus material to move out, import sites need fill brought in.
type Site struct {
	ID           uuid.UUID
	Name         string
	Type         SiteType
	Coordinates  *orb.Point // lon/lat; nil when the intake form omitted location
	SoilType     string
	Contaminated bool
	VolumeCuYd   float64
	WindowStart  time.Time
	WindowEnd    time.Time
	Status       SiteStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Lat and Lng panic on a nil point; callers check Coordinates first.
func (s *Site) Lat() float64 { return (*s.Coordinates)[1] }
func (s *Site) Lng() float64 { return (*s.Coordinates)[0] }
