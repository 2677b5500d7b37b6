package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"gorm.io/gorm"

	"github.com/terraops/earthworks-dispatch/internal/model"
)

type SiteService struct {
	sites SiteStore
}

func NewSiteService(sites SiteStore) *SiteService {
	return &SiteService{sites: sites}
}

type SiteInput struct {
	Name         string
	Type         model.SiteType
	Lat          *float64
	Lng          *float64
	SoilType     string
	Contaminated bool
	VolumeCuYd   float64
	WindowStart  string // "2006-01-02"
	WindowEnd    string
}

func (s *SiteService) Create(ctx context.Context, principal model.Principal, input SiteInput) (*model.Site, error) {
	if !principal.CanMutate() {
		return nil, ErrPermissionDenied
	}
	site, err := s.validate(input)
	if err != nil {
		return nil, err
	}
	site.ID = uuid.New()
	site.Status = model.SiteStatusPending
	return s.sites.Create(ctx, *site)
}

func (s *SiteService) Update(ctx context.Context, principal model.Principal, id uuid.UUID, input SiteInput) (*model.Site, error) {
	if !principal.CanMutate() {
		return nil, ErrPermissionDenied
	}
	existing, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	site, err := s.validate(input)
	if err != nil {
		return nil, err
	}
	site.ID = existing.ID
	site.Status = existing.Status
	if err := s.sites.Update(ctx, *site); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *SiteService) Get(ctx context.Context, id uuid.UUID) (*model.Site, error) {
	site, err := s.sites.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return site, nil
}

func (s *SiteService) List(ctx context.Context) ([]model.Site, error) {
	return s.sites.List(ctx)
}

func (s *SiteService) Delete(ctx context.Context, principal model.Principal, id uuid.UUID) error {
	if !principal.CanMutate() {
		return ErrPermissionDenied
	}
	if err := s.sites.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *SiteService) validate(input SiteInput) (*model.Site, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if input.Type != model.SiteTypeExport && input.Type != model.SiteTypeImport {
		return nil, fmt.Errorf("%w: type must be export or import", ErrInvalidInput)
	}
	if input.VolumeCuYd <= 0 {
		return nil, fmt.Errorf("%w: volume must be positive", ErrInvalidInput)
	}
	start, err := parseDate(input.WindowStart)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid window_start", ErrInvalidInput)
	}
	end, err := parseDate(input.WindowEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid window_end", ErrInvalidInput)
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: window_end before window_start", ErrInvalidInput)
	}
	if (input.Lat == nil) != (input.Lng == nil) {
		return nil, fmt.Errorf("%w: lat and lng must be given together", ErrInvalidInput)
	}

	site := &model.Site{
		Name:         name,
		Type:         input.Type,
		SoilType:     strings.ToLower(strings.TrimSpace(input.SoilType)),
		Contaminated: input.Contaminated,
		VolumeCuYd:   input.VolumeCuYd,
		WindowStart:  start,
		WindowEnd:    end,
	}
	if input.Lat != nil && input.Lng != nil {
		if *input.Lat < -90 || *input.Lat > 90 || *input.Lng < -180 || *input.Lng > 180 {
			return nil, fmt.Errorf("%w: coordinates out of range", ErrInvalidInput)
		}
		p := orb.Point{*input.Lng, *input.Lat}
		site.Coordinates = &p
	}
	return site, nil
}
