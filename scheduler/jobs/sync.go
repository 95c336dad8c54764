package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"kzsync/pkg/config"
	"kzsync/pkg/database"
	"kzsync/pkg/logger"
	"kzsync/scraper/data/globalapi"
	"kzsync/scraper/data/kzgo"
	"kzsync/scraper/repositories"
	syncservice "kzsync/scraper/services/sync"
)

// SyncMaps runs the daily full map synchronization: maps, courses, mapper
// pairs and mode filters from both metadata providers.
func SyncMaps(cfg *config.Config) error {
	log.Println("Starting the full map sync.")

	service, db, sessionLog, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	if err := service.SyncMaps(context.Background()); err != nil {
		sessionLog.Errorf("Map sync failed: %v", err)
		shipLog(sessionLog, "scheduler/map-sync")
		return err
	}

	shipLog(sessionLog, "scheduler/map-sync")
	log.Println("Full map sync completed.")
	return nil
}

// SyncServers runs the daily full server synchronization.
func SyncServers(cfg *config.Config) error {
	log.Println("Starting the full server sync.")

	service, db, sessionLog, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer closeDB(db)

	if err := service.SyncServers(context.Background()); err != nil {
		sessionLog.Errorf("Server sync failed: %v", err)
		shipLog(sessionLog, "scheduler/server-sync")
		return err
	}

	shipLog(sessionLog, "scheduler/server-sync")
	log.Println("Full server sync completed.")
	return nil
}

// buildService wires a sync service over a fresh connection pool. Each job
// run owns its connections and closes them on exit.
func buildService(cfg *config.Config) (*syncservice.Service, *gorm.DB, *logger.Logger, error) {
	db, err := database.NewConnection(cfg.Database.DSN)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("couldn't get database connection: %w", err)
	}

	sessionLog, err := logger.CreateLogger(cfg.Bucket)
	if err != nil {
		return nil, nil, nil, err
	}

	global := globalapi.NewClient(cfg.Upstream.GlobalAPIURL)
	meta := kzgo.NewClient(cfg.Upstream.KZGoURL)

	service := syncservice.NewService(
		global,
		meta,
		repositories.NewPlayerRepository(db, cfg.Ingest.ChunkSize),
		repositories.NewMapRepository(db, cfg.Ingest.ChunkSize),
		repositories.NewServerRepository(db, cfg.Ingest.ChunkSize),
		repositories.NewMapperRepository(db, cfg.Ingest.ChunkSize),
		repositories.NewFilterRepository(db, cfg.Ingest.ChunkSize),
		sessionLog,
		cfg.Ingest.ChunkSize,
	)

	return service, db, sessionLog, nil
}

func closeDB(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

func shipLog(sessionLog *logger.Logger, prefix string) {
	key := fmt.Sprintf("%s/%s.log", prefix, time.Now().Format("2006-01-02-15-04-05"))
	if err := sessionLog.UploadToS3Bucket(key); err != nil {
		log.Printf("couldn't ship the job log: %v", err)
	}
}
