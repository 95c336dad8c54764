package main

import (
	"context"
	"errors"
	"log"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"kzsync/pkg/config"
	"kzsync/pkg/database"
	"kzsync/pkg/logger"
	esdata "kzsync/scraper/data/elastic"
	"kzsync/scraper/data/globalapi"
	"kzsync/scraper/data/kzgo"
	"kzsync/scraper/repositories"
	"kzsync/scraper/resolver"
	elasticservice "kzsync/scraper/services/elastic"
	playerservice "kzsync/scraper/services/players"
	recordservice "kzsync/scraper/services/records"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.NewConnection(cfg.Database.DSN)
	if err != nil {
		log.Fatal(err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatal(err)
	}

	if err := database.RunMigrations(cfg, sqlDB); err != nil {
		log.Fatal(err)
	}

	// The fixed mode rows are seeded by migration; anything else means the
	// schema is corrupted and ingesting into it would poison the data.
	if err := database.VerifyModes(db); err != nil {
		log.Fatal(err)
	}

	sessionLog, err := logger.CreateLogger(cfg.Bucket)
	if err != nil {
		log.Fatal(err)
	}

	global := globalapi.NewClient(cfg.Upstream.GlobalAPIURL)
	meta := kzgo.NewClient(cfg.Upstream.KZGoURL)

	players := repositories.NewPlayerRepository(db, cfg.Ingest.ChunkSize)
	maps := repositories.NewMapRepository(db, cfg.Ingest.ChunkSize)
	servers := repositories.NewServerRepository(db, cfg.Ingest.ChunkSize)
	records := repositories.NewRecordRepository(db, cfg.Ingest.ChunkSize)

	res := resolver.NewEntityResolver(players, maps, servers, global, meta)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	// The live record pipeline resumes from the highest persisted id.
	recordSvc := recordservice.NewService(global, res, records, sessionLog, cfg.Ingest.PollDelay)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := recordSvc.Run(ctx, 0); err != nil && !errors.Is(err, context.Canceled) {
			sessionLog.Errorf("Record pipeline stopped: %v", err)
			stop()
		}
	}()

	// The player listing walk is finite and just exits when exhausted.
	playerSvc := playerservice.NewService(global, players, sessionLog, cfg.Ingest.PollDelay, 500)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := playerSvc.Run(ctx, 0, false); err != nil && !errors.Is(err, context.Canceled) {
			sessionLog.Errorf("Player pipeline stopped: %v", err)
		}
	}()

	// The scroll backfill only runs when a search index is configured.
	if cfg.Elastic.URL != "" {
		fetcher, err := esdata.NewFetcher(cfg.Elastic)
		if err != nil {
			log.Fatal(err)
		}

		elasticSvc := elasticservice.NewService(fetcher, players, maps, servers, records, sessionLog, cfg.Ingest.PollDelay)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := elasticSvc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				sessionLog.Errorf("Scroll backfill stopped: %v", err)
			}
		}()
	}

	<-ctx.Done()
	wg.Wait()

	if err := sessionLog.UploadToS3Bucket("scraper/" + time.Now().Format("2006-01-02-15-04-05") + ".log"); err != nil {
		log.Printf("couldn't ship the session log: %v", err)
	}
}
