package main

import (
	"context"
	"countrystats/internal/api"
	"countrystats/internal/config"
	"countrystats/internal/repository"
	"countrystats/internal/usecases"
	"flag"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/robfig/cron/v3"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config file")
	envFile := flag.String("env", ".env", "Path to .env file (ignored if missing)")
	flag.Parse()

	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		log.Fatal(err)
	}
	cfg.ApplyLogging()

	// 1. Initialize Echo (Starts Instantly)
	e := echo.New()
	e.HideBanner = true
	e.JSONSerializer = api.JSONSerializer{}
	e.Logger.SetLevel(log.Level())
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())

	// 2. Initialize Handler with NIL data
	// The API is live but answers 503 until the first load finishes
	h := api.NewHandler(nil)
	h.RegisterRoutes(e)

	var repo repository.SnapshotRepository
	if cfg.SnapshotDB != "" {
		sqlite, err := repository.NewSQLiteSnapshotRepository(cfg.SnapshotDB)
		if err != nil {
			log.Fatalf("Failed to initialize snapshot store: %v", err)
		}
		defer sqlite.Close()
		repo = sqlite
	}

	useCase := usecases.NewDatasetUseCase(cfg.Files, cfg.Schema, cfg.SkipHeader, repo, h)

	// 3. Launch load in background
	go func() {
		log.Info("BACKGROUND: Loading dataset...")
		t0 := time.Now()
		if err := useCase.Refresh(context.Background()); err != nil {
			log.Errorf("BACKGROUND: %v", err)
			return
		}
		log.Infof("BACKGROUND: Load complete in %v. API is fully ready.", time.Since(t0))
	}()

	// 4. Optional scheduled reload of the source files
	if cfg.ReloadSchedule != "" {
		c := cron.New()
		_, err := c.AddFunc(cfg.ReloadSchedule, func() {
			if err := useCase.Refresh(context.Background()); err != nil {
				log.Errorf("Scheduled reload failed: %v", err)
			}
		})
		if err != nil {
			log.Fatalf("Failed to set up reload schedule: %v", err)
		}
		c.Start()
		defer c.Stop()
		log.Infof("Dataset reload scheduled: %s", cfg.ReloadSchedule)
	}

	// 5. Start Server
	log.Infof("Server ready on %s (data loading in background...)", cfg.ListenAddr)
	e.Logger.Fatal(e.Start(cfg.ListenAddr))
}
