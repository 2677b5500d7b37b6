package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type DBConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime string
}

type AuthConfig struct {
	AccessSecret string
}

// MatchPolicy holds every constant the matcher scores with, so weighting
// is auditable in one place instead of scattered through the engine.
type MatchPolicy struct {
	DistanceWeight float64
	SoilWeight     float64
	VolumeWeight   float64
	OverlapWeight  float64

	MaxHaulMiles       float64 // distance normalization ceiling
	MaxScheduleGapDays int     // beyond this gap a pair is disqualified
	MinScore           float64 // matches below this are discarded

	BaselineDisposalMiles float64 // nearest-landfill alternative
	CostPerMile           float64
	EmissionsPerMileKg    float64
	TruckCapacityCuYd     float64

	TreatedReuseSoils []string // soils allowed to cross the contamination boundary
}

type SchedulePolicy struct {
	TruckCapacityCuYd float64
	TripsPerTruckDay  int
	DayStart          string // "HH:MM"
	DayEnd            string

	ReliabilityWeight float64
	CostWeight        float64

	UtilizationAlertPct float64
	LongHaulMiles       float64
	LocalMiles          float64 // route type bands
	HighwayMiles        float64

	WeatherRiskMonths    []int
	WeatherBaseDelayPct  int
	WeatherQuietDelayPct int // baseline outside the risk months
	WeatherAlertPct      int

	EmissionsPerMileKg float64
}

type Config struct {
	Environment string
	HTTP        HTTPConfig
	DB          DBConfig
	Auth        AuthConfig
	Match       MatchPolicy
	Schedule    SchedulePolicy
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("app")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("./deploy")
	v.AutomaticEnv()

	_ = v.ReadInConfig()

	setDefaults(v)

	cfg := &Config{
		Environment: v.GetString("APP_ENV"),
		HTTP: HTTPConfig{
			Host: v.GetString("HTTP_HOST"),
			Port: v.GetInt("HTTP_PORT"),
		},
		DB: DBConfig{
			DSN:             v.GetString("DB_DSN"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetString("DB_CONN_MAX_LIFETIME"),
		},
		Auth: AuthConfig{
			AccessSecret: v.GetString("JWT_ACCESS_SECRET"),
		},
		Match: MatchPolicy{
			DistanceWeight:        v.GetFloat64("MATCH_DISTANCE_WEIGHT"),
			SoilWeight:            v.GetFloat64("MATCH_SOIL_WEIGHT"),
			VolumeWeight:          v.GetFloat64("MATCH_VOLUME_WEIGHT"),
			OverlapWeight:         v.GetFloat64("MATCH_OVERLAP_WEIGHT"),
			MaxHaulMiles:          v.GetFloat64("MATCH_MAX_HAUL_MILES"),
			MaxScheduleGapDays:    v.GetInt("MATCH_MAX_SCHEDULE_GAP_DAYS"),
			MinScore:              v.GetFloat64("MATCH_MIN_SCORE"),
			BaselineDisposalMiles: v.GetFloat64("MATCH_BASELINE_DISPOSAL_MILES"),
			CostPerMile:           v.GetFloat64("MATCH_COST_PER_MILE"),
			EmissionsPerMileKg:    v.GetFloat64("MATCH_EMISSIONS_PER_MILE_KG"),
			TruckCapacityCuYd:     v.GetFloat64("TRUCK_CAPACITY_CUYD"),
			TreatedReuseSoils:     parseList(v.GetString("MATCH_TREATED_REUSE_SOILS")),
		},
		Schedule: SchedulePolicy{
			TruckCapacityCuYd:    v.GetFloat64("TRUCK_CAPACITY_CUYD"),
			TripsPerTruckDay:     v.GetInt("SCHED_TRIPS_PER_TRUCK_DAY"),
			DayStart:             v.GetString("SCHED_DAY_START"),
			DayEnd:               v.GetString("SCHED_DAY_END"),
			ReliabilityWeight:    v.GetFloat64("SCHED_RELIABILITY_WEIGHT"),
			CostWeight:           v.GetFloat64("SCHED_COST_WEIGHT"),
			UtilizationAlertPct:  v.GetFloat64("SCHED_UTILIZATION_ALERT_PCT"),
			LongHaulMiles:        v.GetFloat64("SCHED_LONG_HAUL_MILES"),
			LocalMiles:           v.GetFloat64("SCHED_LOCAL_MILES"),
			HighwayMiles:         v.GetFloat64("SCHED_HIGHWAY_MILES"),
			WeatherRiskMonths:    parseIntList(v.GetString("SCHED_WEATHER_RISK_MONTHS")),
			WeatherBaseDelayPct:  v.GetInt("SCHED_WEATHER_BASE_DELAY_PCT"),
			WeatherQuietDelayPct: v.GetInt("SCHED_WEATHER_QUIET_DELAY_PCT"),
			WeatherAlertPct:      v.GetInt("SCHED_WEATHER_ALERT_PCT"),
			EmissionsPerMileKg:   v.GetFloat64("MATCH_EMISSIONS_PER_MILE_KG"),
		},
	}

	if cfg.Environment == "" {
		cfg.Environment = "development"
	}
	if cfg.HTTP.Host == "" {
		cfg.HTTP.Host = "0.0.0.0"
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = 7810
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Scoring: distance dominates, the rest are secondary.
	v.SetDefault("MATCH_DISTANCE_WEIGHT", 0.45)
	v.SetDefault("MATCH_SOIL_WEIGHT", 0.25)
	v.SetDefault("MATCH_VOLUME_WEIGHT", 0.15)
	v.SetDefault("MATCH_OVERLAP_WEIGHT", 0.15)
	v.SetDefault("MATCH_MAX_HAUL_MILES", 60)
	v.SetDefault("MATCH_MAX_SCHEDULE_GAP_DAYS", 30)
	v.SetDefault("MATCH_MIN_SCORE", 40)
	v.SetDefault("MATCH_BASELINE_DISPOSAL_MILES", 45)
	v.SetDefault("MATCH_COST_PER_MILE", 4.25)
	v.SetDefault("MATCH_EMISSIONS_PER_MILE_KG", 1.6)
	v.SetDefault("MATCH_TREATED_REUSE_SOILS", "fill,rock")

	v.SetDefault("TRUCK_CAPACITY_CUYD", 14)
	v.SetDefault("SCHED_TRIPS_PER_TRUCK_DAY", 3)
	v.SetDefault("SCHED_DAY_START", "07:00")
	v.SetDefault("SCHED_DAY_END", "17:00")
	v.SetDefault("SCHED_RELIABILITY_WEIGHT", 0.7)
	v.SetDefault("SCHED_COST_WEIGHT", 0.3)
	v.SetDefault("SCHED_UTILIZATION_ALERT_PCT", 85)
	v.SetDefault("SCHED_LONG_HAUL_MILES", 40)
	v.SetDefault("SCHED_LOCAL_MILES", 10)
	v.SetDefault("SCHED_HIGHWAY_MILES", 25)
	v.SetDefault("SCHED_WEATHER_RISK_MONTHS", "11,12,1,2,3")
	v.SetDefault("SCHED_WEATHER_BASE_DELAY_PCT", 60)
	v.SetDefault("SCHED_WEATHER_QUIET_DELAY_PCT", 10)
	v.SetDefault("SCHED_WEATHER_ALERT_PCT", 50)
}

func validate(cfg *Config) error {
	if cfg.DB.DSN == "" {
		return fmt.Errorf("DB_DSN is required")
	}
	if cfg.Auth.AccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	weights := cfg.Match.DistanceWeight + cfg.Match.SoilWeight + cfg.Match.VolumeWeight + cfg.Match.OverlapWeight
	if weights <= 0 {
		return fmt.Errorf("match score weights must sum to a positive value")
	}
	if cfg.Schedule.TruckCapacityCuYd <= 0 || cfg.Schedule.TripsPerTruckDay <= 0 {
		return fmt.Errorf("truck capacity and trips per day must be positive")
	}
	if cfg.Schedule.DayStart >= cfg.Schedule.DayEnd {
		return fmt.Errorf("SCHED_DAY_START must be before SCHED_DAY_END")
	}
	return nil
}

func parseList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	items := strings.Split(raw, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}

func parseIntList(raw string) []int {
	items := parseList(raw)
	result := make([]int, 0, len(items))
	for _, item := range items {
		if n, err := strconv.Atoi(item); err == nil {
			result = append(result, n)
		}
	}
	return result
}
