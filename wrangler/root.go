package main

import (
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"kzsync/pkg/config"
	"kzsync/pkg/database"
	"kzsync/pkg/logger"
	"kzsync/scraper/repositories"
)

var rootCmd = &cobra.Command{
	Use:   "wrangler",
	Short: "Offline bulk loading and schema migration for the record store",
	Long: "wrangler loads static JSON dumps of players, maps, servers and records " +
		"into the store and migrates data out of the historical schema.",
}

func init() {
	rootCmd.AddCommand(newLoadCmd())
	rootCmd.AddCommand(newMigrateCmd())
}

// store bundles the open connection and the repositories every subcommand
// works through.
type store struct {
	db      *gorm.DB
	cfg     *config.Config
	log     *logger.Logger
	players repositories.PlayerRepository
	maps    repositories.MapRepository
	servers repositories.ServerRepository
	mappers repositories.MapperRepository
	filters repositories.FilterRepository
	records repositories.RecordRepository
}

// openStore connects to the canonical store and brings the schema up to
// date before any load runs.
func openStore() (*store, error) {
	config.LoadEnv()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	db, err := database.NewConnection(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if err := database.RunMigrations(cfg, sqlDB); err != nil {
		return nil, err
	}

	if err := database.VerifyModes(db); err != nil {
		return nil, err
	}

	sessionLog, err := logger.CreateLogger(cfg.Bucket)
	if err != nil {
		return nil, err
	}

	chunk := cfg.Ingest.ChunkSize

	return &store{
		db:      db,
		cfg:     cfg,
		log:     sessionLog,
		players: repositories.NewPlayerRepository(db, chunk),
		maps:    repositories.NewMapRepository(db, chunk),
		servers: repositories.NewServerRepository(db, chunk),
		mappers: repositories.NewMapperRepository(db, chunk),
		filters: repositories.NewFilterRepository(db, chunk),
		records: repositories.NewRecordRepository(db, chunk),
	}, nil
}

func (s *store) close() {
	if sqlDB, err := s.db.DB(); err == nil {
		sqlDB.Close()
	}
}
