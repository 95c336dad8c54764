package database

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultChunkSize bounds the size of a single multi-row insert statement.
const DefaultChunkSize = 1000

// ConflictPolicy decides what a multi-row insert does when a row already exists.
type ConflictPolicy int

const (
	// PolicyFail surfaces the conflict as a database error. Used for records,
	// where a duplicate id indicates a logic bug.
	PolicyFail ConflictPolicy = iota

	// PolicyIgnore skips conflicting rows (ON CONFLICT DO NOTHING).
	PolicyIgnore

	// PolicyUpdate overwrites the non-key columns of conflicting rows, so a
	// rediscovered entity picks up its fresher upstream fields.
	PolicyUpdate
)

// UpsertOptions carries the per-entity column mapping for the upsert engine.
type UpsertOptions struct {
	// ConflictColumns is the conflict target. Defaults to the primary key.
	ConflictColumns []string

	// UpdateColumns are the columns rewritten under PolicyUpdate.
	UpdateColumns []string

	ChunkSize int
}

// UpsertInChunks splits rows into chunks and executes each chunk as one
// multi-row insert inside its own transaction. A failing row rolls back its
// whole chunk; chunks already committed stay committed. The returned count
// is the number of logical input rows processed, not rows actually
// persisted, so callers can report throughput under PolicyIgnore.
//
// Cancelling the context stops the operation between chunks.
func UpsertInChunks[T any](ctx context.Context, db *gorm.DB, rows []*T, policy ConflictPolicy, opts UpsertOptions) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	chunkSize := opts.ChunkSize
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	processed := 0
	for start := 0; start < len(rows); start += chunkSize {
		if err := ctx.Err(); err != nil {
			return processed, err
		}

		end := start + chunkSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return withPolicy(tx, policy, opts).Create(&chunk).Error
		})
		if err != nil {
			return processed, fmt.Errorf("couldn't upsert chunk %d-%d: %w", start, end-1, err)
		}

		processed += len(chunk)
	}

	return processed, nil
}

// withPolicy translates a conflict policy into the matching ON CONFLICT clause.
func withPolicy(tx *gorm.DB, policy ConflictPolicy, opts UpsertOptions) *gorm.DB {
	target := make([]clause.Column, 0, len(opts.ConflictColumns))
	for _, column := range opts.ConflictColumns {
		target = append(target, clause.Column{Name: column})
	}

	switch policy {
	case PolicyIgnore:
		return tx.Clauses(clause.OnConflict{Columns: target, DoNothing: true})
	case PolicyUpdate:
		return tx.Clauses(clause.OnConflict{
			Columns:   target,
			DoUpdates: clause.AssignmentColumns(opts.UpdateColumns),
		})
	default:
		return tx
	}
}
