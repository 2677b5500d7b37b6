package main

import (
	"fmt"
	"os"

	"github.com/terraops/earthworks-dispatch/internal/assistant"
	"github.com/terraops/earthworks-dispatch/internal/auth"
	"github.com/terraops/earthworks-dispatch/internal/config"
	"github.com/terraops/earthworks-dispatch/internal/csvexport"
	"github.com/terraops/earthworks-dispatch/internal/db"
	"github.com/terraops/earthworks-dispatch/internal/excel"
	httphandler "github.com/terraops/earthworks-dispatch/internal/http"
	"github.com/terraops/earthworks-dispatch/internal/http/middleware"
	"github.com/terraops/earthworks-dispatch/internal/logger"
	"github.com/terraops/earthworks-dispatch/internal/match"
	"github.com/terraops/earthworks-dispatch/internal/pdf"
	"github.com/terraops/earthworks-dispatch/internal/repository"
	"github.com/terraops/earthworks-dispatch/internal/schedule"
	"github.com/terraops/earthworks-dispatch/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	siteRepo := repository.NewSiteRepository(database)
	haulerRepo := repository.NewHaulerRepository(database)
	matchRepo := repository.NewMatchRepository(database)
	scheduleRepo := repository.NewScheduleRepository(database)

	matchEngine := match.NewEngine(cfg.Match)
	scheduleEngine := schedule.NewEngine(cfg.Schedule)

	siteService := service.NewSiteService(siteRepo)
	haulerService := service.NewHaulerService(haulerRepo)
	matchService := service.NewMatchService(siteRepo, matchRepo, matchEngine, log)
	scheduleService := service.NewScheduleService(
		siteRepo,
		haulerRepo,
		matchRepo,
		scheduleRepo,
		scheduleEngine,
		excel.NewGenerator(),
		pdf.NewGenerator(),
		csvexport.NewWriter(),
		log,
	)
	analyticsService := service.NewAnalyticsService(siteRepo, haulerRepo, matchRepo, scheduleRepo)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(
		siteService,
		haulerService,
		matchService,
		scheduleService,
		analyticsService,
		assistant.NewResponder(),
		log,
	)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting earthworks dispatch service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
