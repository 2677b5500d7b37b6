package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/terraops/earthworks-dispatch/internal/model"
)

type ScheduleRepository struct {
	db *gorm.DB
}

func NewScheduleRepository(db *gorm.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

type scheduleRow struct {
	ID              uuid.UUID
	MatchID         uuid.UUID
	HaulerID        *uuid.UUID
	Date            time.Time
	StartTime       string
	EndTime         string
	VolumeCuYd      float64
	TrucksNeeded    int
	RouteMiles      float64
	RouteCost       float64
	RouteType       string
	RouteCarbonKg   float64
	Status          string
	Alerts          []byte
	IsAiGenerated   bool
	WeatherDelayPct int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const scheduleColumns = `
	id, match_id, hauler_id, date, start_time, end_time, volume_cu_yd, trucks_needed,
	route_miles, route_cost, route_type, route_carbon_kg, status, alerts,
	is_ai_generated, weather_delay_pct, created_at, updated_at
`

func (r scheduleRow) toModel() (model.Schedule, error) {
	s := model.Schedule{
		ID:              r.ID,
		MatchID:         r.MatchID,
		HaulerID:        r.HaulerID,
		Date:            r.Date,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		VolumeCuYd:      r.VolumeCuYd,
		TrucksNeeded:    r.TrucksNeeded,
		Status:          model.ScheduleStatus(r.Status),
		IsAIGenerated:   r.IsAiGenerated,
		WeatherDelayPct: r.WeatherDelayPct,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
		Route: model.Route{
			DistanceMiles:     r.RouteMiles,
			Cost:              r.RouteCost,
			Type:              model.RouteType(r.RouteType),
			CarbonEmissionsKg: r.RouteCarbonKg,
		},
	}
	if len(r.Alerts) > 0 {
		if err := json.Unmarshal(r.Alerts, &s.Alerts); err != nil {
			return model.Schedule{}, err
		}
	}
	return s, nil
}

// CreateBatch inserts a scheduler run atomically; reruns of the
// deterministic engine hit the primary key and update in place.
func (r *ScheduleRepository) CreateBatch(ctx context.Context, schedules []model.Schedule) error {
	if len(schedules) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, s := range schedules {
			alerts, err := json.Marshal(s.Alerts)
			if err != nil {
				return err
			}
			err = tx.Exec(`
				INSERT INTO schedules (id, match_id, hauler_id, date, start_time, end_time, volume_cu_yd, trucks_needed,
					route_miles, route_cost, route_type, route_carbon_kg, status, alerts, is_ai_generated, weather_delay_pct)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT (id) DO UPDATE SET
					status = EXCLUDED.status,
					alerts = EXCLUDED.alerts,
					weather_delay_pct = EXCLUDED.weather_delay_pct,
					updated_at = NOW()
			`, s.ID, s.MatchID, s.HaulerID, s.Date, s.StartTime, s.EndTime, s.VolumeCuYd, s.TrucksNeeded,
				s.Route.DistanceMiles, s.Route.Cost, s.Route.Type, s.Route.CarbonEmissionsKg,
				s.Status, alerts, s.IsAIGenerated, s.WeatherDelayPct).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *ScheduleRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Schedule, error) {
	var row scheduleRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT `+scheduleColumns+`
		FROM schedules
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	s, err := row.toModel()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *ScheduleRepository) List(ctx context.Context) ([]model.Schedule, error) {
	var rows []scheduleRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT ` + scheduleColumns + `
		FROM schedules
		ORDER BY date, start_time, id
	`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	schedules := make([]model.Schedule, 0, len(rows))
	for _, row := range rows {
		s, err := row.toModel()
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, nil
}

func (r *ScheduleRepository) Update(ctx context.Context, s model.Schedule) error {
	alerts, err := json.Marshal(s.Alerts)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Exec(`
		UPDATE schedules
		SET hauler_id = ?, date = ?, start_time = ?, end_time = ?, volume_cu_yd = ?, trucks_needed = ?,
			route_miles = ?, route_cost = ?, route_type = ?, route_carbon_kg = ?,
			status = ?, alerts = ?, is_ai_generated = ?, weather_delay_pct = ?, updated_at = NOW()
		WHERE id = ?
	`, s.HaulerID, s.Date, s.StartTime, s.EndTime, s.VolumeCuYd, s.TrucksNeeded,
		s.Route.DistanceMiles, s.Route.Cost, s.Route.Type, s.Route.CarbonEmissionsKg,
		s.Status, alerts, s.IsAIGenerated, s.WeatherDelayPct, s.ID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
