package sync

import (
	"context"
	"time"

	"kzsync/pkg/database"
	"kzsync/pkg/database/models"
	"kzsync/pkg/errs"
	"kzsync/pkg/logger"
	"kzsync/pkg/steamid"
	"kzsync/scraper/data/globalapi"
	"kzsync/scraper/data/kzgo"
	"kzsync/scraper/repositories"
	"kzsync/scraper/resolver"
)

// Source is the slice of the leaderboard API the full syncs consume.
type Source interface {
	GetMaps(ctx context.Context) ([]globalapi.Map, error)
	GetServers(ctx context.Context, offset int, limit int) ([]globalapi.Server, error)
}

// Service runs the periodic full synchronizations: unlike the record
// pipeline, which materializes entities lazily, these walk the complete
// upstream listings so renames and new approvals land without waiting for a
// record to reference them.
type Service struct {
	global    Source
	meta      resolver.MapMetadata
	players   repositories.PlayerRepository
	maps      repositories.MapRepository
	servers   repositories.ServerRepository
	mappers   repositories.MapperRepository
	filters   repositories.FilterRepository
	log       *logger.Logger
	chunkSize int
}

// NewService creates the full sync service.
func NewService(
	global Source,
	meta resolver.MapMetadata,
	players repositories.PlayerRepository,
	maps repositories.MapRepository,
	servers repositories.ServerRepository,
	mappers repositories.MapperRepository,
	filters repositories.FilterRepository,
	log *logger.Logger,
	chunkSize int,
) *Service {
	return &Service{
		global:    global,
		meta:      meta,
		players:   players,
		maps:      maps,
		servers:   servers,
		mappers:   mappers,
		filters:   filters,
		log:       log,
		chunkSize: chunkSize,
	}
}

// SyncMaps merges both map providers and rewrites maps, courses, mapper
// pairs and mode filters in one pass.
func (s *Service) SyncMaps(ctx context.Context) error {
	globalMaps, err := s.global.GetMaps(ctx)
	if err != nil {
		return err
	}

	metaMaps, err := s.meta.GetMaps(ctx)
	if err != nil {
		return err
	}

	return s.ApplyMaps(ctx, globalMaps, metaMaps)
}

// ApplyMaps persists an already-fetched snapshot of both providers. The
// offline loader feeds it from dump files. A map that fails to merge is
// logged and skipped rather than failing the whole pass.
func (s *Service) ApplyMaps(ctx context.Context, globalMaps []globalapi.Map, metaMaps []kzgo.Map) error {
	started := time.Now()

	metaByName := make(map[string]*kzgo.Map, len(metaMaps))
	for i := range metaMaps {
		metaByName[metaMaps[i].Name] = &metaMaps[i]
	}

	var (
		mapRows    []*models.Map
		courseRows []*models.Course
		filterRows []*models.Filter
	)

	for i := range globalMaps {
		meta := metaByName[globalMaps[i].Name]

		merged, courses, err := resolver.MergeMap(&globalMaps[i], meta)
		if err != nil {
			s.log.Errorf("Skipping map %q during sync: %v", globalMaps[i].Name, err)
			continue
		}

		mapRows = append(mapRows, merged)
		courseRows = append(courseRows, courses...)
		filterRows = append(filterRows, deriveFilters(merged.Name, meta, courses)...)
	}

	// Approvers must exist before the map rows reference them.
	if err := s.ensureApprovers(ctx, mapRows); err != nil {
		return err
	}

	if _, err := s.maps.UpsertBatch(ctx, mapRows, database.PolicyUpdate); err != nil {
		return err
	}
	if _, err := s.maps.UpsertCourseBatch(ctx, courseRows); err != nil {
		return err
	}
	if _, err := s.filters.UpsertBatch(ctx, filterRows); err != nil {
		return err
	}

	if err := s.syncMappers(ctx, metaMaps, mapRows); err != nil {
		return err
	}

	s.log.Infof("Synced %d maps with %d courses in %s", len(mapRows), len(courseRows), time.Since(started))
	return nil
}

// SyncServers walks the paginated server listing, ensuring every owner
// player exists before its server row is written.
func (s *Service) SyncServers(ctx context.Context) error {
	started := time.Now()
	total := 0

	for offset := 0; ; offset += s.chunkSize {
		page, err := s.global.GetServers(ctx, offset, s.chunkSize)
		if err != nil {
			return err
		}
		if len(page) == 0 {
			break
		}

		owners := make([]*models.Player, 0, len(page))
		rows := make([]*models.Server, 0, len(page))

		for _, srv := range page {
			id, err := errs.NarrowUint16("server_id", srv.ID)
			if err != nil {
				s.log.Errorf("Skipping server %q during sync: %v", srv.Name, err)
				continue
			}

			ownerID, err := steamid.ParseID64(srv.OwnerSteamID64)
			if err != nil {
				s.log.Errorf("Skipping server %q with invalid owner id %q: %v", srv.Name, srv.OwnerSteamID64, err)
				continue
			}

			// The listing doesn't carry the owner's name; the stub row
			// gets refreshed once the player shows up anywhere else.
			owners = append(owners, &models.Player{ID: ownerID, Name: "unknown"})
			rows = append(rows, &models.Server{ID: id, Name: srv.Name, OwnedBy: ownerID})
		}

		if _, err := s.players.UpsertBatch(ctx, owners, database.PolicyIgnore); err != nil {
			return err
		}
		if _, err := s.servers.UpsertBatch(ctx, rows, database.PolicyUpdate); err != nil {
			return err
		}

		total += len(rows)
	}

	s.log.Infof("Synced %d servers in %s", total, time.Since(started))
	return nil
}

// ensureApprovers inserts a stub player row for every approver referenced
// by the merged maps.
func (s *Service) ensureApprovers(ctx context.Context, maps []*models.Map) error {
	seen := make(map[uint32]bool)
	stubs := make([]*models.Player, 0)

	for _, m := range maps {
		if m.ApprovedBy == nil || seen[*m.ApprovedBy] {
			continue
		}
		seen[*m.ApprovedBy] = true
		stubs = append(stubs, &models.Player{ID: *m.ApprovedBy, Name: "unknown"})
	}

	if len(stubs) == 0 {
		return nil
	}

	_, err := s.players.UpsertBatch(ctx, stubs, database.PolicyIgnore)
	return err
}

// syncMappers loads the authorship pairs the metadata provider knows about,
// creating the named player rows first.
func (s *Service) syncMappers(ctx context.Context, metaMaps []kzgo.Map, mapRows []*models.Map) error {
	idByName := make(map[string]uint16, len(mapRows))
	for _, m := range mapRows {
		idByName[m.Name] = m.ID
	}

	var (
		authors []*models.Player
		pairs   []*models.Mapper
	)
	seenPair := make(map[uint64]bool)

	for _, meta := range metaMaps {
		mapID, ok := idByName[meta.Name]
		if !ok {
			continue
		}

		for i, rawID := range meta.MapperIDs {
			playerID, err := steamid.ParseID64(rawID)
			if err != nil {
				s.log.Errorf("Skipping mapper %q of %q: %v", rawID, meta.Name, err)
				continue
			}

			name := "unknown"
			if i < len(meta.MapperNames) {
				name = meta.MapperNames[i]
			}

			key := uint64(playerID)<<16 | uint64(mapID)
			if seenPair[key] {
				continue
			}
			seenPair[key] = true

			authors = append(authors, &models.Player{ID: playerID, Name: name})
			pairs = append(pairs, &models.Mapper{PlayerID: playerID, MapID: mapID})
		}
	}

	if _, err := s.players.UpsertBatch(ctx, authors, database.PolicyIgnore); err != nil {
		return err
	}

	_, err := s.mappers.UpsertBatch(ctx, pairs)
	return err
}

// deriveFilters derives the mode support rows for a map's courses: maps not
// prefixed skz_ or vnl_ support the default mode, and the metadata flags add
// the other two.
func deriveFilters(name string, meta *kzgo.Map, courses []*models.Course) []*models.Filter {
	var modes []uint16

	if len(name) < 4 || (name[:4] != "skz_" && name[:4] != "vnl_") {
		modes = append(modes, models.ModeKZTimer)
	}
	if meta != nil && meta.SupportsSKZ {
		modes = append(modes, models.ModeSimpleKZ)
	}
	if meta != nil && meta.SupportsVNL {
		modes = append(modes, models.ModeVanilla)
	}

	filters := make([]*models.Filter, 0, len(modes)*len(courses))
	for _, course := range courses {
		for _, mode := range modes {
			filters = append(filters, &models.Filter{CourseID: course.ID, ModeID: mode})
		}
	}

	return filters
}
