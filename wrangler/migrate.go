package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"kzsync/pkg/database"
	"kzsync/pkg/database/legacy"
	"kzsync/pkg/database/models"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Copy the historical schema into the canonical store",
		Long: "migrate reads every table of the legacy database and writes it into " +
			"the canonical store, in foreign key order. A value that doesn't fit " +
			"the canonical columns aborts the migration instead of truncating.",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore()
			if err != nil {
				return err
			}
			defer s.close()

			if s.cfg.Database.LegacyDSN == "" {
				return fmt.Errorf("LEGACY_DATABASE_URL must be set")
			}

			legacyDB, err := database.NewLegacyConnection(s.cfg.Database.LegacyDSN)
			if err != nil {
				return err
			}
			defer func() {
				if sqlDB, err := legacyDB.DB(); err == nil {
					sqlDB.Close()
				}
			}()

			return migrateAll(cmd.Context(), legacyDB, s)
		},
	}
}

// migrateAll walks the legacy tables in foreign key order so nothing ever
// references a row that hasn't landed yet.
func migrateAll(ctx context.Context, legacyDB *gorm.DB, s *store) error {
	count, err := migratePlayers(ctx, legacyDB, s)
	if err != nil {
		return fmt.Errorf("players: %w", err)
	}
	fmt.Printf("migrated %d players\n", count)

	count, err = migrateMaps(ctx, legacyDB, s)
	if err != nil {
		return fmt.Errorf("maps: %w", err)
	}
	fmt.Printf("migrated %d maps\n", count)

	count, err = migrateCourses(ctx, legacyDB, s)
	if err != nil {
		return fmt.Errorf("courses: %w", err)
	}
	fmt.Printf("migrated %d courses\n", count)

	count, err = migrateServers(ctx, legacyDB, s)
	if err != nil {
		return fmt.Errorf("servers: %w", err)
	}
	fmt.Printf("migrated %d servers\n", count)

	count, err = migrateMappers(ctx, legacyDB, s)
	if err != nil {
		return fmt.Errorf("mappers: %w", err)
	}
	fmt.Printf("migrated %d mappers\n", count)

	count, err = migrateFilters(ctx, legacyDB, s)
	if err != nil {
		return fmt.Errorf("filters: %w", err)
	}
	fmt.Printf("migrated %d filters\n", count)

	count, err = migrateRecords(ctx, legacyDB, s)
	if err != nil {
		return fmt.Errorf("records: %w", err)
	}
	fmt.Printf("migrated %d records\n", count)

	return nil
}

// forEachBatch pages through a legacy table in primary key order, calling
// apply once per batch. The conversion errors of a single row abort the
// whole migration: legacy corruption needs an operator, not a skip.
func forEachBatch[R any](ctx context.Context, legacyDB *gorm.DB, batchSize int, apply func([]R) error) error {
	for offset := 0; ; offset += batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		var batch []R
		if err := legacyDB.Limit(batchSize).Offset(offset).Find(&batch).Error; err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}

		if err := apply(batch); err != nil {
			return err
		}
	}
}

func migratePlayers(ctx context.Context, legacyDB *gorm.DB, s *store) (int, error) {
	total := 0
	err := forEachBatch(ctx, legacyDB, s.cfg.Ingest.ChunkSize, func(batch []legacy.PlayerRow) error {
		rows := make([]*models.Player, 0, len(batch))
		for _, row := range batch {
			converted, err := row.Canonical()
			if err != nil {
				return err
			}
			rows = append(rows, converted)
		}

		count, err := s.players.UpsertBatch(ctx, rows, database.PolicyIgnore)
		total += count
		return err
	})

	return total, err
}

func migrateMaps(ctx context.Context, legacyDB *gorm.DB, s *store) (int, error) {
	total := 0
	err := forEachBatch(ctx, legacyDB, s.cfg.Ingest.ChunkSize, func(batch []legacy.MapRow) error {
		rows := make([]*models.Map, 0, len(batch))
		for _, row := range batch {
			converted, err := row.Canonical()
			if err != nil {
				return err
			}
			rows = append(rows, converted)
		}

		count, err := s.maps.UpsertBatch(ctx, rows, database.PolicyIgnore)
		total += count
		return err
	})

	return total, err
}

func migrateCourses(ctx context.Context, legacyDB *gorm.DB, s *store) (int, error) {
	total := 0
	err := forEachBatch(ctx, legacyDB, s.cfg.Ingest.ChunkSize, func(batch []legacy.CourseRow) error {
		rows := make([]*models.Course, 0, len(batch))
		for _, row := range batch {
			converted, err := row.Canonical()
			if err != nil {
				return err
			}
			rows = append(rows, converted)
		}

		count, err := s.maps.UpsertCourseBatch(ctx, rows)
		total += count
		return err
	})

	return total, err
}

func migrateServers(ctx context.Context, legacyDB *gorm.DB, s *store) (int, error) {
	total := 0
	err := forEachBatch(ctx, legacyDB, s.cfg.Ingest.ChunkSize, func(batch []legacy.ServerRow) error {
		rows := make([]*models.Server, 0, len(batch))
		for _, row := range batch {
			converted, err := row.Canonical()
			if err != nil {
				return err
			}
			rows = append(rows, converted)
		}

		count, err := s.servers.UpsertBatch(ctx, rows, database.PolicyIgnore)
		total += count
		return err
	})

	return total, err
}

func migrateMappers(ctx context.Context, legacyDB *gorm.DB, s *store) (int, error) {
	total := 0
	err := forEachBatch(ctx, legacyDB, s.cfg.Ingest.ChunkSize, func(batch []legacy.MapperRow) error {
		rows := make([]*models.Mapper, 0, len(batch))
		for _, row := range batch {
			converted, err := row.Canonical()
			if err != nil {
				return err
			}
			rows = append(rows, converted)
		}

		count, err := s.mappers.UpsertBatch(ctx, rows)
		total += count
		return err
	})

	return total, err
}

func migrateFilters(ctx context.Context, legacyDB *gorm.DB, s *store) (int, error) {
	total := 0
	err := forEachBatch(ctx, legacyDB, s.cfg.Ingest.ChunkSize, func(batch []legacy.FilterRow) error {
		rows := make([]*models.Filter, 0, len(batch))
		for _, row := range batch {
			converted, err := row.Canonical()
			if err != nil {
				return err
			}
			rows = append(rows, converted)
		}

		count, err := s.filters.UpsertBatch(ctx, rows)
		total += count
		return err
	})

	return total, err
}

func migrateRecords(ctx context.Context, legacyDB *gorm.DB, s *store) (int, error) {
	total := 0
	err := forEachBatch(ctx, legacyDB, s.cfg.Ingest.ChunkSize, func(batch []legacy.RecordRow) error {
		rows := make([]*models.Record, 0, len(batch))
		for _, row := range batch {
			converted, err := row.Canonical()
			if err != nil {
				return err
			}
			rows = append(rows, converted)
		}

		count, err := s.records.CreateBatch(ctx, rows)
		total += count
		return err
	})

	return total, err
}
