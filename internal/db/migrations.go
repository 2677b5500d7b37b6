package db

import (
	"fmt"

	"gorm.io/gorm"
)

var migrationStatements = []string{
	`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	`DO $$
	BEGIN
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'site_type') THEN
			CREATE TYPE site_type AS ENUM ('export', 'import');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'site_status') THEN
			CREATE TYPE site_status AS ENUM ('pending', 'matched', 'approved');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'hauler_status') THEN
			CREATE TYPE hauler_status AS ENUM ('active', 'inactive');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'match_status') THEN
			CREATE TYPE match_status AS ENUM ('suggested', 'approved', 'rejected');
		END IF;
		IF NOT EXISTS (SELECT 1 FROM pg_type WHERE typname = 'schedule_status') THEN
			CREATE TYPE schedule_status AS ENUM ('scheduled', 'in-progress', 'completed', 'delayed', 'conflict');
		END IF;
	END
	$$;`,
	`CREATE TABLE IF NOT EXISTS sites (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(128) NOT NULL,
		site_type site_type NOT NULL,
		lat DOUBLE PRECISION,
		lng DOUBLE PRECISION,
		soil_type VARCHAR(32) NOT NULL DEFAULT '',
		contaminated BOOLEAN NOT NULL DEFAULT FALSE,
		volume_cu_yd NUMERIC(14,2) NOT NULL,
		window_start DATE NOT NULL,
		window_end DATE NOT NULL,
		status site_status NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS haulers (
		id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
		name VARCHAR(128) NOT NULL,
		reliability_score NUMERIC(5,2) NOT NULL DEFAULT 0,
		trucks_available INT NOT NULL DEFAULT 0,
		cost_per_mile NUMERIC(8,2) NOT NULL DEFAULT 0,
		status hauler_status NOT NULL DEFAULT 'active',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE TABLE IF NOT EXISTS matches (
		id UUID PRIMARY KEY,
		export_site_id UUID NOT NULL REFERENCES sites(id) ON DELETE CASCADE,
		import_site_id UUID NOT NULL REFERENCES sites(id) ON DELETE CASCADE,
		score NUMERIC(5,1) NOT NULL,
		distance_miles NUMERIC(8,2) NOT NULL,
		cost_savings NUMERIC(14,2) NOT NULL DEFAULT 0,
		carbon_reduction_kg NUMERIC(14,2) NOT NULL DEFAULT 0,
		status match_status NOT NULL DEFAULT 'suggested',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		CHECK (export_site_id <> import_site_id)
	);`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_match_pair ON matches (export_site_id, import_site_id);`,
	`CREATE INDEX IF NOT EXISTS idx_matches_status ON matches (status);`,
	`CREATE TABLE IF NOT EXISTS schedules (
		id UUID PRIMARY KEY,
		match_id UUID NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
		hauler_id UUID REFERENCES haulers(id),
		date DATE NOT NULL,
		start_time VARCHAR(5) NOT NULL,
		end_time VARCHAR(5) NOT NULL,
		volume_cu_yd NUMERIC(14,2) NOT NULL,
		trucks_needed INT NOT NULL DEFAULT 0,
		route_miles NUMERIC(8,2) NOT NULL DEFAULT 0,
		route_cost NUMERIC(14,2) NOT NULL DEFAULT 0,
		route_type VARCHAR(16) NOT NULL DEFAULT 'local',
		route_carbon_kg NUMERIC(14,2) NOT NULL DEFAULT 0,
		status schedule_status NOT NULL DEFAULT 'scheduled',
		alerts JSONB NOT NULL DEFAULT '[]',
		is_ai_generated BOOLEAN NOT NULL DEFAULT FALSE,
		weather_delay_pct INT NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_match_id ON schedules (match_id);`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_hauler_date ON schedules (hauler_id, date) WHERE hauler_id IS NOT NULL;`,
	`CREATE INDEX IF NOT EXISTS idx_schedules_status ON schedules (status);`,
}

func runMigrations(db *gorm.DB) error {
	for i, stmt := range migrationStatements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}
	return nil
}
