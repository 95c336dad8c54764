package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kzsync/pkg/database"
	"kzsync/pkg/database/models"
	"kzsync/pkg/errs"
	"kzsync/pkg/logger"
	"kzsync/pkg/names"
	"kzsync/pkg/steamid"
	esdata "kzsync/scraper/data/elastic"
	"kzsync/scraper/repositories"
)

// Source is the scroll endpoint pair of the search index.
type Source interface {
	FetchInitial(ctx context.Context) (*esdata.Payload, error)
	Fetch(ctx context.Context, scrollID string) (*esdata.Payload, error)
}

// Service drains the historical record index through a scroll cursor and
// loads the documents into the store. Documents reference maps and servers
// by name only, so both are reconciled against the rows already present;
// a name that matches nothing drops the document.
type Service struct {
	source    Source
	players   repositories.PlayerRepository
	maps      repositories.MapRepository
	servers   repositories.ServerRepository
	records   repositories.RecordRepository
	log       *logger.Logger
	pollDelay time.Duration
}

// NewService creates the scroll ingestion service.
func NewService(
	source Source,
	players repositories.PlayerRepository,
	maps repositories.MapRepository,
	servers repositories.ServerRepository,
	records repositories.RecordRepository,
	log *logger.Logger,
	pollDelay time.Duration,
) *Service {
	return &Service{
		source:    source,
		players:   players,
		maps:      maps,
		servers:   servers,
		records:   records,
		log:       log,
		pollDelay: pollDelay,
	}
}

// Run drains the scroll until a page carries nothing at all. Malformed
// documents are shipped to the bucket page by page and never stall the
// cursor.
func (s *Service) Run(ctx context.Context) error {
	mapIdx, serverIdx, err := s.buildIndexes()
	if err != nil {
		return err
	}

	payload, err := s.source.FetchInitial(ctx)
	if err != nil {
		return err
	}

	for page := 0; ; page++ {
		if payload.Done() {
			s.log.Infof("Scroll drained after %d pages", page)
			return nil
		}

		if err := s.processPage(ctx, payload, mapIdx, serverIdx); err != nil {
			return err
		}

		if len(payload.Malformed) > 0 {
			s.log.Errorf("Page %d carried %d malformed documents", page, len(payload.Malformed))

			key := fmt.Sprintf("malformed/%s-page-%d.json", time.Now().Format("2006-01-02-15-04-05"), page)
			if err := s.log.UploadJSON(ctx, key, payload.Malformed); err != nil {
				s.log.Errorf("Couldn't ship the malformed dump: %v", err)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.pollDelay):
		}

		payload, err = s.source.Fetch(ctx, payload.ScrollID)
		if err != nil {
			return err
		}
	}
}

// LoadDocuments ingests raw documents from a dump file instead of a live
// scroll. Returns how many records landed plus the documents that failed
// both known shapes, so the caller can dump them aside.
func (s *Service) LoadDocuments(ctx context.Context, docs []json.RawMessage) (int, []json.RawMessage, error) {
	mapIdx, serverIdx, err := s.buildIndexes()
	if err != nil {
		return 0, nil, err
	}

	payload := &esdata.Payload{}
	for _, doc := range docs {
		record, ok := esdata.ParseDocument(doc)
		if !ok {
			payload.Malformed = append(payload.Malformed, doc)
			continue
		}
		payload.Records = append(payload.Records, *record)
	}

	rows, players, courses := s.convert(payload.Records, mapIdx, serverIdx)

	if len(rows) > 0 {
		if _, err := s.players.UpsertBatch(ctx, players, database.PolicyIgnore); err != nil {
			return 0, payload.Malformed, err
		}
		if len(courses) > 0 {
			if _, err := s.maps.UpsertCourseBatch(ctx, courses); err != nil {
				return 0, payload.Malformed, err
			}
		}
		if _, err := s.records.CreateBatch(ctx, rows); err != nil {
			return 0, payload.Malformed, err
		}
	}

	return len(rows), payload.Malformed, nil
}

// buildIndexes loads every map and server row into in-memory name indexes.
func (s *Service) buildIndexes() (*names.Index, *names.Index, error) {
	maps, err := s.maps.GetAll()
	if err != nil {
		return nil, nil, err
	}
	mapEntries := make([]names.Entry, 0, len(maps))
	for _, m := range maps {
		mapEntries = append(mapEntries, names.Entry{ID: uint32(m.ID), Name: m.Name})
	}

	servers, err := s.servers.GetAll()
	if err != nil {
		return nil, nil, err
	}
	serverEntries := make([]names.Entry, 0, len(servers))
	for _, srv := range servers {
		serverEntries = append(serverEntries, names.Entry{ID: uint32(srv.ID), Name: srv.Name})
	}

	return names.NewIndex(mapEntries), names.NewIndex(serverEntries), nil
}

// processPage converts one page and persists it: players first so the
// record foreign keys hold, then any courses the original expansion didn't
// cover, then the records themselves.
func (s *Service) processPage(ctx context.Context, payload *esdata.Payload, mapIdx, serverIdx *names.Index) error {
	rows, players, courses := s.convert(payload.Records, mapIdx, serverIdx)
	if len(rows) == 0 {
		return nil
	}

	if _, err := s.players.UpsertBatch(ctx, players, database.PolicyIgnore); err != nil {
		return err
	}

	if len(courses) > 0 {
		if _, err := s.maps.UpsertCourseBatch(ctx, courses); err != nil {
			return err
		}
	}

	if _, err := s.records.CreateBatch(ctx, rows); err != nil {
		return err
	}

	return nil
}

// convert reconciles one page of documents into store rows, dropping the
// ones that can't be tied to a known map or server.
func (s *Service) convert(page []esdata.Record, mapIdx, serverIdx *names.Index) ([]*models.Record, []*models.Player, []*models.Course) {
	rows := make([]*models.Record, 0, len(page))
	players := make([]*models.Player, 0, len(page))
	courses := make([]*models.Course, 0)

	seen := make(map[uint32]bool, len(page))
	seenCourses := make(map[uint32]bool)

	for _, doc := range page {
		if seen[doc.ID] {
			continue
		}

		modeID, ok := models.ModeIDFromName(doc.ModeName)
		if !ok {
			s.log.Errorf("Dropping record %d with unknown mode %q", doc.ID, doc.ModeName)
			continue
		}

		mapID, ok := mapIdx.Lookup(doc.MapName)
		if !ok {
			s.log.Errorf("Dropping record %d referencing unknown map %q", doc.ID, doc.MapName)
			continue
		}

		serverID, ok := serverIdx.Lookup(doc.ServerName)
		if !ok {
			s.log.Errorf("Dropping record %d referencing unknown server %q", doc.ID, doc.ServerName)
			continue
		}

		playerID, err := steamid.ParseID64(doc.SteamID64)
		if err != nil {
			s.log.Errorf("Dropping record %d with invalid steam id %q: %v", doc.ID, doc.SteamID64, err)
			continue
		}

		if doc.Stage >= models.MaxStages {
			s.log.Errorf("Dropping record %d with out-of-range stage %d", doc.ID, doc.Stage)
			continue
		}

		if doc.Time < 0 {
			s.log.Errorf("Dropping record %d with negative time %f", doc.ID, doc.Time)
			continue
		}

		teleports, err := errs.NarrowUint16("teleports", int64(doc.Teleports))
		if err != nil {
			s.log.Errorf("Dropping record %d: %v", doc.ID, err)
			continue
		}

		courseID := models.CourseID(uint16(mapID), doc.Stage)
		if !seenCourses[courseID] {
			seenCourses[courseID] = true
			courses = append(courses, &models.Course{
				ID:    courseID,
				MapID: uint16(mapID),
				Stage: doc.Stage,
			})
		}

		seen[doc.ID] = true
		players = append(players, &models.Player{ID: playerID, Name: doc.PlayerName})
		rows = append(rows, &models.Record{
			ID:        doc.ID,
			CourseID:  courseID,
			ModeID:    modeID,
			PlayerID:  playerID,
			ServerID:  uint16(serverID),
			Time:      doc.Time,
			Teleports: teleports,
			CreatedOn: doc.CreatedOn.Time,
		})
	}

	return rows, players, courses
}
