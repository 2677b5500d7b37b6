package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/terraops/earthworks-dispatch/internal/match"
	"github.com/terraops/earthworks-dispatch/internal/model"
)

type MatchService struct {
	sites   SiteStore
	matches MatchStore
	engine  *match.Engine
	log     zerolog.Logger
}

func NewMatchService(sites SiteStore, matches MatchStore, engine *match.Engine, log zerolog.Logger) *MatchService {
	return &MatchService{sites: sites, matches: matches, engine: engine, log: log}
}

// Generate runs the matcher over the current site collection and
// replaces the stored suggestions. Sites that end up in at least one
// suggestion move from pending to matched.
func (s *MatchService) Generate(ctx context.Context, principal model.Principal) ([]model.Match, error) {
	if !principal.CanMutate() {
		return nil, ErrPermissionDenied
	}

	sites, err := s.sites.List(ctx)
	if err != nil {
		return nil, err
	}

	matches, skipped := s.engine.GenerateMatches(sites)
	for _, skip := range skipped {
		s.log.Warn().
			Str("site_id", skip.SiteID.String()).
			Str("reason", skip.Reason).
			Msg("site excluded from matching")
	}

	if err := s.matches.ReplaceSuggestions(ctx, matches); err != nil {
		return nil, err
	}

	statusByID := make(map[uuid.UUID]model.SiteStatus, len(sites))
	for _, site := range sites {
		statusByID[site.ID] = site.Status
	}
	seen := make(map[uuid.UUID]struct{})
	var matched []uuid.UUID
	for _, m := range matches {
		for _, id := range []uuid.UUID{m.ExportSiteID, m.ImportSiteID} {
			if _, done := seen[id]; done || statusByID[id] != model.SiteStatusPending {
				continue
			}
			seen[id] = struct{}{}
			matched = append(matched, id)
		}
	}
	if err := s.sites.UpdateStatuses(ctx, matched, model.SiteStatusMatched); err != nil {
		return nil, err
	}

	s.log.Info().Int("matches", len(matches)).Int("skipped", len(skipped)).Msg("matcher run complete")
	return matches, nil
}

func (s *MatchService) List(ctx context.Context, status *model.MatchStatus) ([]model.Match, error) {
	return s.matches.List(ctx, status)
}

// Approve moves a suggested match to approved and promotes both sites.
func (s *MatchService) Approve(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Match, error) {
	m, err := s.transition(ctx, principal, id, model.MatchStatusApproved)
	if err != nil {
		return nil, err
	}
	ids := []uuid.UUID{m.ExportSiteID, m.ImportSiteID}
	if err := s.sites.UpdateStatuses(ctx, ids, model.SiteStatusApproved); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MatchService) Reject(ctx context.Context, principal model.Principal, id uuid.UUID) (*model.Match, error) {
	return s.transition(ctx, principal, id, model.MatchStatusRejected)
}

func (s *MatchService) transition(ctx context.Context, principal model.Principal, id uuid.UUID, to model.MatchStatus) (*model.Match, error) {
	if !principal.CanMutate() {
		return nil, ErrPermissionDenied
	}
	m, err := s.matches.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if m.Status != model.MatchStatusSuggested {
		return nil, fmt.Errorf("%w: match is %s, only suggested matches can transition", ErrInvalidInput, m.Status)
	}
	if err := s.matches.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	m.Status = to
	s.log.Info().Str("match", match.Describe(*m)).Str("status", string(to)).Msg("match transitioned")
	return m, nil
}
