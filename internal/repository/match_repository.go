package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/terraops/earthworks-dispatch/internal/model"
)

type MatchRepository struct {
	db *gorm.DB
}

func NewMatchRepository(db *gorm.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

// ReplaceSuggestions swaps the stored suggestion set for a fresh matcher
// run. Approved and rejected matches are left untouched.
func (r *MatchRepository) ReplaceSuggestions(ctx context.Context, matches []model.Match) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM matches WHERE status = 'suggested'`).Error; err != nil {
			return err
		}
		for _, m := range matches {
			err := tx.Exec(`
				INSERT INTO matches (id, export_site_id, import_site_id, score, distance_miles, cost_savings, carbon_reduction_kg, status)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (id) DO UPDATE SET
					score = EXCLUDED.score,
					distance_miles = EXCLUDED.distance_miles,
					cost_savings = EXCLUDED.cost_savings,
					carbon_reduction_kg = EXCLUDED.carbon_reduction_kg
			`, m.ID, m.ExportSiteID, m.ImportSiteID, m.Score, m.DistanceMiles,
				m.CostSavings, m.CarbonReductionKg, m.Status).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *MatchRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Match, error) {
	var m model.Match
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, export_site_id, import_site_id, score, distance_miles, cost_savings, carbon_reduction_kg, status, created_at
		FROM matches
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&m).Error
	if err != nil {
		return nil, err
	}
	if m.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &m, nil
}

func (r *MatchRepository) List(ctx context.Context, status *model.MatchStatus) ([]model.Match, error) {
	query := `
		SELECT id, export_site_id, import_site_id, score, distance_miles, cost_savings, carbon_reduction_kg, status, created_at
		FROM matches
	`
	args := []interface{}{}
	if status != nil {
		query += ` WHERE status = ?`
		args = append(args, *status)
	}
	query += ` ORDER BY score DESC, distance_miles ASC, id`

	var matches []model.Match
	if err := r.db.WithContext(ctx).Raw(query, args...).Scan(&matches).Error; err != nil {
		return nil, err
	}
	return matches, nil
}

func (r *MatchRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.MatchStatus) error {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE matches SET status = ? WHERE id = ?
	`, status, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
