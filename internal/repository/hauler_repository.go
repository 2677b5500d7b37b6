package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/terraops/earthworks-dispatch/internal/model"
)

type HaulerRepository struct {
	db *gorm.DB
}

func NewHaulerRepository(db *gorm.DB) *HaulerRepository {
	return &HaulerRepository{db: db}
}

func (r *HaulerRepository) Create(ctx context.Context, hauler model.Hauler) (*model.Hauler, error) {
	var saved model.Hauler
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO haulers (id, name, reliability_score, trucks_available, cost_per_mile, status)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, name, reliability_score, trucks_available, cost_per_mile, status, created_at, updated_at
	`, hauler.ID, hauler.Name, hauler.ReliabilityScore, hauler.TrucksAvailable,
		hauler.CostPerMile, hauler.Status).Scan(&saved).Error
	if err != nil {
		return nil, err
	}
	return &saved, nil
}

func (r *HaulerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Hauler, error) {
	var hauler model.Hauler
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, reliability_score, trucks_available, cost_per_mile, status, created_at, updated_at
		FROM haulers
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&hauler).Error
	if err != nil {
		return nil, err
	}
	if hauler.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	return &hauler, nil
}

func (r *HaulerRepository) List(ctx context.Context) ([]model.Hauler, error) {
	var haulers []model.Hauler
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, reliability_score, trucks_available, cost_per_mile, status, created_at, updated_at
		FROM haulers
		ORDER BY name, id
	`).Scan(&haulers).Error
	if err != nil {
		return nil, err
	}
	return haulers, nil
}

func (r *HaulerRepository) Update(ctx context.Context, hauler model.Hauler) error {
	return r.db.WithContext(ctx).Exec(`
		UPDATE haulers
		SET name = ?, reliability_score = ?, trucks_available = ?, cost_per_mile = ?, status = ?, updated_at = NOW()
		WHERE id = ?
	`, hauler.Name, hauler.ReliabilityScore, hauler.TrucksAvailable,
		hauler.CostPerMile, hauler.Status, hauler.ID).Error
}
