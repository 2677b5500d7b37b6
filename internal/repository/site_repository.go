package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"gorm.io/gorm"

	"github.com/terraops/earthworks-dispatch/internal/model"
)

type SiteRepository struct {
	db *gorm.DB
}

func NewSiteRepository(db *gorm.DB) *SiteRepository {
	return &SiteRepository{db: db}
}

type siteRow struct {
	ID           uuid.UUID
	Name         string
	SiteType     string
	Lat          *float64
	Lng          *float64
	SoilType     string
	Contaminated bool
	VolumeCuYd   float64
	WindowStart  time.Time
	WindowEnd    time.Time
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (r siteRow) toModel() model.Site {
	site := model.Site{
		ID:           r.ID,
		Name:         r.Name,
		Type:         model.SiteType(r.SiteType),
		SoilType:     r.SoilType,
		Contaminated: r.Contaminated,
		VolumeCuYd:   r.VolumeCuYd,
		WindowStart:  r.WindowStart,
		WindowEnd:    r.WindowEnd,
		Status:       model.SiteStatus(r.Status),
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
	if r.Lat != nil && r.Lng != nil {
		p := orb.Point{*r.Lng, *r.Lat}
		site.Coordinates = &p
	}
	return site
}

func latLng(site model.Site) (lat, lng *float64) {
	if site.Coordinates == nil {
		return nil, nil
	}
	la, ln := (*site.Coordinates)[1], (*site.Coordinates)[0]
	return &la, &ln
}

func (r *SiteRepository) Create(ctx context.Context, site model.Site) (*model.Site, error) {
	lat, lng := latLng(site)
	var row siteRow
	err := r.db.WithContext(ctx).Raw(`
		INSERT INTO sites (id, name, site_type, lat, lng, soil_type, contaminated, volume_cu_yd, window_start, window_end, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id, name, site_type, lat, lng, soil_type, contaminated, volume_cu_yd, window_start, window_end, status, created_at, updated_at
	`, site.ID, site.Name, site.Type, lat, lng, site.SoilType, site.Contaminated,
		site.VolumeCuYd, site.WindowStart, site.WindowEnd, site.Status).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	saved := row.toModel()
	return &saved, nil
}

func (r *SiteRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Site, error) {
	var row siteRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, site_type, lat, lng, soil_type, contaminated, volume_cu_yd, window_start, window_end, status, created_at, updated_at
		FROM sites
		WHERE id = ?
		LIMIT 1
	`, id).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.ID == uuid.Nil {
		return nil, gorm.ErrRecordNotFound
	}
	site := row.toModel()
	return &site, nil
}

func (r *SiteRepository) List(ctx context.Context) ([]model.Site, error) {
	var rows []siteRow
	err := r.db.WithContext(ctx).Raw(`
		SELECT id, name, site_type, lat, lng, soil_type, contaminated, volume_cu_yd, window_start, window_end, status, created_at, updated_at
		FROM sites
		ORDER BY created_at, id
	`).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sites := make([]model.Site, 0, len(rows))
	for _, row := range rows {
		sites = append(sites, row.toModel())
	}
	return sites, nil
}

func (r *SiteRepository) Update(ctx context.Context, site model.Site) error {
	lat, lng := latLng(site)
	return r.db.WithContext(ctx).Exec(`
		UPDATE sites
		SET name = ?, site_type = ?, lat = ?, lng = ?, soil_type = ?, contaminated = ?,
			volume_cu_yd = ?, window_start = ?, window_end = ?, status = ?, updated_at = NOW()
		WHERE id = ?
	`, site.Name, site.Type, lat, lng, site.SoilType, site.Contaminated,
		site.VolumeCuYd, site.WindowStart, site.WindowEnd, site.Status, site.ID).Error
}

func (r *SiteRepository) UpdateStatuses(ctx context.Context, ids []uuid.UUID, status model.SiteStatus) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Exec(`
		UPDATE sites SET status = ?, updated_at = NOW() WHERE id = ANY(?)
	`, status, ids).Error
}

func (r *SiteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Exec(`DELETE FROM sites WHERE id = ?`, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
