package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/terraops/earthworks-dispatch/internal/model"
)

// The services depend on these narrow store interfaces rather than the
// concrete gorm repositories, which keeps the matcher and scheduler
// orchestration testable with in-memory fakes.

type SiteStore interface {
	Create(ctx context.Context, site model.Site) (*model.Site, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Site, error)
	List(ctx context.Context) ([]model.Site, error)
	Update(ctx context.Context, site model.Site) error
	UpdateStatuses(ctx context.Context, ids []uuid.UUID, status model.SiteStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type HaulerStore interface {
	Create(ctx context.Context, hauler model.Hauler) (*model.Hauler, error)
	GetByID(ctx context.Context, id uuid.UUID) (*model.Hauler, error)
	List(ctx context.Context) ([]model.Hauler, error)
	Update(ctx context.Context, hauler model.Hauler) error
}

type MatchStore interface {
	ReplaceSuggestions(ctx context.Context, matches []model.Match) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Match, error)
	List(ctx context.Context, status *model.MatchStatus) ([]model.Match, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.MatchStatus) error
}

type ScheduleStore interface {
	CreateBatch(ctx context.Context, schedules []model.Schedule) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Schedule, error)
	List(ctx context.Context) ([]model.Schedule, error)
	Update(ctx context.Context, schedule model.Schedule) error
}
