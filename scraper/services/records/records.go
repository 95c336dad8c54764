package records

import (
	"context"
	"errors"
	"time"

	"kzsync/pkg/database/models"
	"kzsync/pkg/errs"
	"kzsync/pkg/logger"
	"kzsync/pkg/steamid"
	"kzsync/scraper/data/globalapi"
	"kzsync/scraper/repositories"
	"kzsync/scraper/resolver"
)

// Source is the sequential record endpoint the driver polls.
type Source interface {
	GetRecord(ctx context.Context, id uint32) (*globalapi.Record, error)
}

// Resolver materializes the foreign references of a record.
type Resolver interface {
	ResolvePlayer(ctx context.Context, ident resolver.Identifier, activeName string) (*models.Player, error)
	ResolveMap(ctx context.Context, ident resolver.Identifier) (*models.Map, error)
	ResolveServer(ctx context.Context, ident resolver.Identifier) (*models.Server, error)
	EnsureCourse(ctx context.Context, mapID uint16, stage uint8) (uint32, error)
}

// Service is the live record ingestion driver: fetch one record by id,
// resolve its references, persist it, advance the cursor, sleep.
type Service struct {
	source    Source
	resolver  Resolver
	records   repositories.RecordRepository
	log       *logger.Logger
	pollDelay time.Duration
}

// NewService creates the record ingestion service.
func NewService(
	source Source,
	res Resolver,
	records repositories.RecordRepository,
	log *logger.Logger,
	pollDelay time.Duration,
) *Service {
	return &Service{
		source:    source,
		resolver:  res,
		records:   records,
		log:       log,
		pollDelay: pollDelay,
	}
}

// Run polls records forever, starting at startID. A zero startID resumes
// from the highest persisted record id plus one. Returns only on context
// cancellation or a fatal error.
func (s *Service) Run(ctx context.Context, startID uint32) error {
	cursor := startID
	if cursor == 0 {
		maxID, err := s.records.MaxID()
		if err != nil {
			return err
		}
		cursor = maxID + 1
	}

	s.log.Infof("Starting the record ingestion at id %d", cursor)

	for {
		advance, err := s.ProcessOne(ctx, cursor)
		if err != nil {
			return err
		}
		if advance {
			cursor++
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.pollDelay):
		}
	}
}

// ProcessOne handles a single cursor position. It reports whether the
// cursor should advance: a transient upstream failure (including a record
// that doesn't exist yet) keeps the cursor in place, a malformed or
// out-of-range record is skipped, and anything else is fatal.
func (s *Service) ProcessOne(ctx context.Context, id uint32) (bool, error) {
	record, err := s.source.GetRecord(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) || errors.Is(err, errs.ErrUnavailable) {
			s.log.Infof("Record %d not available yet: %v", id, err)
			return false, nil
		}
		if errors.Is(err, errs.ErrMalformed) {
			s.log.Errorf("Skipping malformed record %d: %v", id, err)
			return true, nil
		}
		return false, err
	}

	return s.ingest(ctx, record)
}

// ingest resolves the record's references and persists it.
func (s *Service) ingest(ctx context.Context, record *globalapi.Record) (bool, error) {
	modeID, ok := models.ModeIDFromName(record.ModeName)
	if !ok {
		s.log.Errorf("Skipping record %d with unknown mode %q", record.ID, record.ModeName)
		return true, nil
	}

	if record.Time < 0 {
		s.log.Errorf("Skipping record %d with negative time %f", record.ID, record.Time)
		return true, nil
	}

	mapID, err := errs.NarrowUint16("map_id", record.MapID)
	if err != nil {
		return s.skipOrFail(record.ID, err)
	}

	m, err := s.resolver.ResolveMap(ctx, resolver.ByID(uint32(mapID)))
	if err != nil {
		return s.skipOrFail(record.ID, err)
	}

	stage, err := errs.NarrowUint8("stage", record.Stage)
	if err != nil {
		return s.skipOrFail(record.ID, err)
	}

	courseID, err := s.resolver.EnsureCourse(ctx, m.ID, stage)
	if err != nil {
		return s.skipOrFail(record.ID, err)
	}

	serverID, err := errs.NarrowUint16("server_id", record.ServerID)
	if err != nil {
		return s.skipOrFail(record.ID, err)
	}

	if _, err := s.resolver.ResolveServer(ctx, resolver.ByID(uint32(serverID))); err != nil {
		return s.skipOrFail(record.ID, err)
	}

	playerID, err := steamid.ParseID64(record.SteamID64)
	if err != nil {
		s.log.Errorf("Skipping record %d with invalid steam id %q: %v", record.ID, record.SteamID64, err)
		return true, nil
	}

	if _, err := s.resolver.ResolvePlayer(ctx, resolver.ByID(playerID), record.PlayerName); err != nil {
		return s.skipOrFail(record.ID, err)
	}

	teleports, err := errs.NarrowUint16("teleports", record.Teleports)
	if err != nil {
		return s.skipOrFail(record.ID, err)
	}

	row := &models.Record{
		ID:        record.ID,
		CourseID:  courseID,
		ModeID:    modeID,
		PlayerID:  playerID,
		ServerID:  serverID,
		Time:      record.Time,
		Teleports: teleports,
		CreatedOn: record.CreatedOn.Time,
	}

	if err := s.records.Create(row); err != nil {
		return false, err
	}

	return true, nil
}

// skipOrFail classifies a per-record resolution failure: transient errors
// retry the same id, data errors skip it, anything else aborts the pipeline.
func (s *Service) skipOrFail(id uint32, err error) (bool, error) {
	switch {
	case errors.Is(err, errs.ErrUnavailable):
		s.log.Infof("Upstream unavailable for record %d, retrying: %v", id, err)
		return false, nil
	case errors.Is(err, errs.ErrNotFound), errors.Is(err, errs.ErrMalformed), errs.IsRange(err):
		s.log.Errorf("Skipping record %d: %v", id, err)
		return true, nil
	default:
		return false, err
	}
}
