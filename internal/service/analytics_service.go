package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/terraops/earthworks-dispatch/internal/model"
)

type AnalyticsService struct {
	sites     SiteStore
	haulers   HaulerStore
	matches   MatchStore
	schedules ScheduleStore
}

func NewAnalyticsService(sites SiteStore, haulers HaulerStore, matches MatchStore, schedules ScheduleStore) *AnalyticsService {
	return &AnalyticsService{sites: sites, haulers: haulers, matches: matches, schedules: schedules}
}

type HaulerUtilization struct {
	HaulerID        uuid.UUID `json:"hauler_id"`
	Name            string    `json:"name"`
	ScheduledVolume float64   `json:"scheduled_volume_cu_yd"`
	HaulDays        int       `json:"haul_days"`
}

type Summary struct {
	ExportSites        int                 `json:"export_sites"`
	ImportSites        int                 `json:"import_sites"`
	SuggestedMatches   int                 `json:"suggested_matches"`
	ApprovedMatches    int                 `json:"approved_matches"`
	TotalCostSavings   float64             `json:"total_cost_savings"`
	TotalCarbonKg      float64             `json:"total_carbon_reduction_kg"`
	ScheduledVolume    float64             `json:"scheduled_volume_cu_yd"`
	TotalHaulMiles     float64             `json:"total_haul_miles"`
	TotalHaulCost      float64             `json:"total_haul_cost"`
	ConflictSchedules  int                 `json:"conflict_schedules"`
	UnassignedVolume   float64             `json:"unassigned_volume_cu_yd"`
	HaulerUtilizations []HaulerUtilization `json:"hauler_utilizations"`
}

// Summarize aggregates the dashboard figures from the stored
// collections. The per-schedule route figures were produced by the
// shared geo helpers, so the analytics stay consistent with the plans.
func (s *AnalyticsService) Summarize(ctx context.Context) (*Summary, error) {
	sites, err := s.sites.List(ctx)
	if err != nil {
		return nil, err
	}
	matches, err := s.matches.List(ctx, nil)
	if err != nil {
		return nil, err
	}
	schedules, err := s.schedules.List(ctx)
	if err != nil {
		return nil, err
	}
	haulers, err := s.haulers.List(ctx)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, site := range sites {
		switch site.Type {
		case model.SiteTypeExport:
			summary.ExportSites++
		case model.SiteTypeImport:
			summary.ImportSites++
		}
	}
	for _, m := range matches {
		switch m.Status {
		case model.MatchStatusSuggested:
			summary.SuggestedMatches++
		case model.MatchStatusApproved:
			summary.ApprovedMatches++
			summary.TotalCostSavings += m.CostSavings
			summary.TotalCarbonKg += m.CarbonReductionKg
		}
	}

	volumeByHauler := make(map[uuid.UUID]float64)
	daysByHauler := make(map[uuid.UUID]map[string]struct{})
	for _, sched := range schedules {
		summary.ScheduledVolume += sched.VolumeCuYd
		summary.TotalHaulMiles += sched.Route.DistanceMiles
		summary.TotalHaulCost += sched.Route.Cost
		if sched.Status == model.ScheduleStatusConflict {
			summary.ConflictSchedules++
		}
		if sched.HaulerID == nil {
			summary.UnassignedVolume += sched.VolumeCuYd
			continue
		}
		volumeByHauler[*sched.HaulerID] += sched.VolumeCuYd
		days, ok := daysByHauler[*sched.HaulerID]
		if !ok {
			days = make(map[string]struct{})
			daysByHauler[*sched.HaulerID] = days
		}
		days[sched.Date.Format("2006-01-02")] = struct{}{}
	}

	for _, h := range haulers {
		if volume, ok := volumeByHauler[h.ID]; ok {
			summary.HaulerUtilizations = append(summary.HaulerUtilizations, HaulerUtilization{
				HaulerID:        h.ID,
				Name:            h.Name,
				ScheduledVolume: volume,
				HaulDays:        len(daysByHauler[h.ID]),
			})
		}
	}
	return summary, nil
}
