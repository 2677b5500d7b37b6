// Package match pairs export earthwork sites with import sites and scores
// each pairing. The engine is pure: it reads the site snapshot it is
// given and returns new matches, leaving persistence to the caller.
package match

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/terraops/earthworks-dispatch/internal/config"
	"github.com/terraops/earthworks-dispatch/internal/geo"
	"github.com/terraops/earthworks-dispatch/internal/model"
)

// matchNamespace seeds deterministic v5 IDs so rerunning the matcher on
// identical input yields the identical collection.
var matchNamespace = uuid.MustParse("6f7a2d7e-9b7c-44a1-8e01-3f6f80fd41aa")

// Skipped records a site the engine could not consider, for caller-side
// logging. A data gap is never fatal.
type Skipped struct {
	SiteID uuid.UUID
	Reason string
}

type Engine struct {
	policy config.MatchPolicy
}

func NewEngine(policy config.MatchPolicy) *Engine {
	return &Engine{policy: policy}
}

// GenerateMatches evaluates every export/import pair and returns the
// candidates at or above the policy score threshold, best first. Ties on
// score break by shorter distance.
func (e *Engine) GenerateMatches(sites []model.Site) ([]model.Match, []Skipped) {
	var exports, imports []model.Site
	var skipped []Skipped

	for _, site := range sites {
		if site.Coordinates == nil {
			skipped = append(skipped, Skipped{SiteID: site.ID, Reason: "missing coordinates"})
			continue
		}
		if normalizeSoil(site.SoilType) == "" {
			skipped = append(skipped, Skipped{SiteID: site.ID, Reason: "missing soil type"})
			continue
		}
		switch site.Type {
		case model.SiteTypeExport:
			exports = append(exports, site)
		case model.SiteTypeImport:
			imports = append(imports, site)
		}
	}

	if len(exports) == 0 || len(imports) == 0 {
		return nil, skipped
	}

	var matches []model.Match
	for _, export := range exports {
		for _, imp := range imports {
			if m, ok := e.scorePair(export, imp); ok {
				matches = append(matches, m)
			}
		}
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if matches[i].DistanceMiles != matches[j].DistanceMiles {
			return matches[i].DistanceMiles < matches[j].DistanceMiles
		}
		return matches[i].ID.String() < matches[j].ID.String()
	})
	return matches, skipped
}

func (e *Engine) scorePair(export, imp model.Site) (model.Match, bool) {
	if export.Contaminated != imp.Contaminated &&
		!treatedReuseAllowed(export.SoilType, imp.SoilType, e.policy.TreatedReuseSoils) {
		return model.Match{}, false
	}

	soil := soilScore(export.SoilType, imp.SoilType)
	if soil == 0 {
		return model.Match{}, false
	}

	overlap, ok := e.overlapScore(export, imp)
	if !ok {
		return model.Match{}, false
	}

	distance := geo.DistanceMiles(*export.Coordinates, *imp.Coordinates)
	distanceScore := 1 - distance/e.policy.MaxHaulMiles
	if distanceScore < 0 {
		distanceScore = 0
	}

	volumeFit := math.Min(export.VolumeCuYd, imp.VolumeCuYd) / math.Max(export.VolumeCuYd, imp.VolumeCuYd)
	if math.IsNaN(volumeFit) {
		volumeFit = 0
	}

	score := 100 * (e.policy.DistanceWeight*distanceScore +
		e.policy.SoilWeight*soil +
		e.policy.VolumeWeight*volumeFit +
		e.policy.OverlapWeight*overlap)
	score = clamp(score, 0, 100)
	if score < e.policy.MinScore {
		return model.Match{}, false
	}

	savings, carbon := e.baselineSavings(distance, math.Min(export.VolumeCuYd, imp.VolumeCuYd))

	id := uuid.NewSHA1(matchNamespace, []byte(export.ID.String()+":"+imp.ID.String()))
	return model.Match{
		ID:                id,
		ExportSiteID:      export.ID,
		ImportSiteID:      imp.ID,
		Score:             math.Round(score*10) / 10,
		DistanceMiles:     math.Round(distance*100) / 100,
		CostSavings:       math.Round(savings*100) / 100,
		CarbonReductionKg: math.Round(carbon*100) / 100,
		Status:            model.MatchStatusSuggested,
	}, true
}

// overlapScore is 1 for overlapping or touching windows and decays with
// the gap between them; a gap beyond the policy maximum disqualifies the
// pair.
func (e *Engine) overlapScore(export, imp model.Site) (float64, bool) {
	// At most one of these is positive; both negative means overlap.
	gap := imp.WindowStart.Sub(export.WindowEnd)
	if reverse := export.WindowStart.Sub(imp.WindowEnd); reverse > gap {
		gap = reverse
	}
	if gap <= 0 {
		return 1, true
	}

	gapDays := int(gap.Hours() / 24)
	maxGap := e.policy.MaxScheduleGapDays
	if maxGap <= 0 || gapDays > maxGap {
		return 0, false
	}
	return 1 - float64(gapDays)/float64(maxGap+1), true
}

// baselineSavings compares hauling between the two sites against hauling
// the same loads to the configured disposal facility instead.
func (e *Engine) baselineSavings(distance, volume float64) (savings, carbon float64) {
	if e.policy.TruckCapacityCuYd <= 0 {
		return 0, 0
	}
	trips := math.Ceil(volume / e.policy.TruckCapacityCuYd)
	avoided := e.policy.BaselineDisposalMiles - distance
	if avoided <= 0 || trips <= 0 {
		return 0, 0
	}
	savings = geo.Cost(avoided, e.policy.CostPerMile) * trips
	carbon = geo.Emissions(avoided, e.policy.EmissionsPerMileKg) * trips
	return savings, carbon
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// Describe is a short human label used by logs and the assistant.
func Describe(m model.Match) string {
	return fmt.Sprintf("match %s (%.1f pts, %.1f mi)", m.ID, m.Score, m.DistanceMiles)
}
