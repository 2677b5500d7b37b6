package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/terraops/earthworks-dispatch/internal/model"
)

type HaulerService struct {
	haulers HaulerStore
}

func NewHaulerService(haulers HaulerStore) *HaulerService {
	return &HaulerService{haulers: haulers}
}

type HaulerInput struct {
	Name             string
	ReliabilityScore float64
	TrucksAvailable  int
	CostPerMile      float64
	Status           model.HaulerStatus
}

func (s *HaulerService) Create(ctx context.Context, principal model.Principal, input HaulerInput) (*model.Hauler, error) {
	if !principal.CanMutate() {
		return nil, ErrPermissionDenied
	}
	hauler, err := validateHauler(input)
	if err != nil {
		return nil, err
	}
	hauler.ID = uuid.New()
	return s.haulers.Create(ctx, *hauler)
}

func (s *HaulerService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, input HaulerInput) (*model.Hauler, error) {
	if !principal.CanMutate() {
		return nil, ErrPermissionDenied
	}
	existing, err := s.haulers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	hauler, err := validateHauler(input)
	if err != nil {
		return nil, err
	}
	hauler.ID = existing.ID
	if err := s.haulers.Update(ctx, *hauler); err != nil {
		return nil, err
	}
	return s.haulers.GetByID(ctx, id)
}

func (s *HaulerService) List(ctx context.Context) ([]model.Hauler, error) {
	return s.haulers.List(ctx)
}

func validateHauler(input HaulerInput) (*model.Hauler, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if input.ReliabilityScore < 0 || input.ReliabilityScore > 100 {
		return nil, fmt.Errorf("%w: reliability score must be 0-100", ErrInvalidInput)
	}
	if input.TrucksAvailable < 0 {
		return nil, fmt.Errorf("%w: trucks available cannot be negative", ErrInvalidInput)
	}
	if input.CostPerMile < 0 {
		return nil, fmt.Errorf("%w: cost per mile cannot be negative", ErrInvalidInput)
	}
	status := input.Status
	if status == "" {
		status = model.HaulerStatusActive
	}
	if status != model.HaulerStatusActive && status != model.HaulerStatusInactive {
		return nil, fmt.Errorf("%w: invalid hauler status", ErrInvalidInput)
	}
	return &model.Hauler{
		Name:             name,
		ReliabilityScore: input.ReliabilityScore,
		TrucksAvailable:  input.TrucksAvailable,
		CostPerMile:      input.CostPerMile,
		Status:           status,
	}, nil
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	layouts := []string{"2006-01-02", time.RFC3339}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return dateOnly(parsed), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparsable date %q", raw)
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
