package resolver

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"kzsync/pkg/database/models"
	"kzsync/pkg/errs"
	"kzsync/pkg/steamid"
	"kzsync/scraper/data/globalapi"
	"kzsync/scraper/data/kzgo"
	"kzsync/scraper/repositories"
)

// Identifier selects an entity either by its numeric id or by a fuzzy name.
type Identifier struct {
	ID   uint32
	Name string
	byID bool
}

// ByID builds an identifier matching on the numeric id.
func ByID(id uint32) Identifier {
	return Identifier{ID: id, byID: true}
}

// ByName builds an identifier matching on the name.
func ByName(name string) Identifier {
	return Identifier{Name: name}
}

// GlobalAPI is the slice of the leaderboard API the resolver needs to
// materialize missing entities.
type GlobalAPI interface {
	GetPlayerByCommunityID(ctx context.Context, id uint32) (*globalapi.Player, error)
	GetPlayerByName(ctx context.Context, name string) (*globalapi.Player, error)
	GetServer(ctx context.Context, id uint16) (*globalapi.Server, error)
	GetServerByName(ctx context.Context, name string) (*globalapi.Server, error)
	GetMaps(ctx context.Context) ([]globalapi.Map, error)
}

// MapMetadata is the secondary metadata provider, merged by map name.
type MapMetadata interface {
	GetMaps(ctx context.Context) ([]kzgo.Map, error)
}

// EntityResolver turns loose identifiers into canonical store rows,
// fetching and inserting missing entities from upstream on demand.
type EntityResolver struct {
	players repositories.PlayerRepository
	maps    repositories.MapRepository
	servers repositories.ServerRepository
	global  GlobalAPI
	meta    MapMetadata
}

// NewEntityResolver creates a resolver over the given store and upstreams.
func NewEntityResolver(
	players repositories.PlayerRepository,
	maps repositories.MapRepository,
	servers repositories.ServerRepository,
	global GlobalAPI,
	meta MapMetadata,
) *EntityResolver {
	return &EntityResolver{
		players: players,
		maps:    maps,
		servers: servers,
		global:  global,
		meta:    meta,
	}
}

// ResolvePlayer returns the canonical player row for an identifier. A
// non-empty activeName is a proof-of-life hint: the player just submitted a
// record, so a stored ban flag is cleared and a stale name refreshed.
func (r *EntityResolver) ResolvePlayer(ctx context.Context, ident Identifier, activeName string) (*models.Player, error) {
	var (
		player *models.Player
		err    error
	)

	if ident.byID {
		player, err = r.players.GetByID(ident.ID)
	} else {
		player, err = r.players.GetByName(ident.Name)
	}
	if err != nil {
		return nil, err
	}

	if player != nil {
		if activeName != "" && (player.IsBanned || player.Name != activeName) {
			if err := r.players.SetActive(player.ID, activeName); err != nil {
				return nil, err
			}
			player.IsBanned = false
			player.Name = activeName
		}
		return player, nil
	}

	var upstream *globalapi.Player
	if ident.byID {
		upstream, err = r.global.GetPlayerByCommunityID(ctx, ident.ID)
	} else {
		upstream, err = r.global.GetPlayerByName(ctx, ident.Name)
	}
	if err != nil {
		return nil, err
	}

	id, err := steamid.ParseID64(upstream.SteamID64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMalformed, err)
	}

	created := &models.Player{
		ID:       id,
		Name:     upstream.Name,
		IsBanned: upstream.IsBanned && activeName == "",
	}
	if err := r.players.CreateIgnore(created); err != nil {
		return nil, err
	}

	// Re-read so a concurrent insert of the same id still yields the
	// persisted row.
	return r.players.GetByID(id)
}

// ResolveMap returns the canonical map row for an identifier. On a local
// miss the two metadata providers are merged by name, the map inserted and
// its courses derived in the same transaction.
func (r *EntityResolver) ResolveMap(ctx context.Context, ident Identifier) (*models.Map, error) {
	var (
		m   *models.Map
		err error
	)

	if ident.byID {
		m, err = r.maps.GetByID(uint16(ident.ID))
	} else {
		m, err = r.maps.GetByName(ident.Name)
	}
	if err != nil {
		return nil, err
	}
	if m != nil {
		return m, nil
	}

	globalMaps, err := r.global.GetMaps(ctx)
	if err != nil {
		return nil, err
	}

	source := matchGlobalMap(globalMaps, ident)
	if source == nil {
		return nil, fmt.Errorf("%w: map %s", errs.ErrNotFound, ident)
	}

	metaMaps, err := r.meta.GetMaps(ctx)
	if err != nil {
		return nil, err
	}

	merged, courses, err := MergeMap(source, matchMetaMap(metaMaps, source.Name))
	if err != nil {
		return nil, err
	}

	if err := r.maps.InsertWithCourses(merged, courses); err != nil {
		return nil, err
	}

	return r.maps.GetByID(merged.ID)
}

// ResolveServer returns the canonical server row for an identifier. On a
// local miss the owning player is resolved first so the foreign key always
// holds.
func (r *EntityResolver) ResolveServer(ctx context.Context, ident Identifier) (*models.Server, error) {
	var (
		server *models.Server
		err    error
	)

	if ident.byID {
		server, err = r.servers.GetByID(uint16(ident.ID))
	} else {
		server, err = r.servers.GetByName(ident.Name)
	}
	if err != nil {
		return nil, err
	}
	if server != nil {
		return server, nil
	}

	var upstream *globalapi.Server
	if ident.byID {
		upstream, err = r.global.GetServer(ctx, uint16(ident.ID))
	} else {
		upstream, err = r.global.GetServerByName(ctx, ident.Name)
	}
	if err != nil {
		return nil, err
	}

	id, err := errs.NarrowUint16("server_id", upstream.ID)
	if err != nil {
		return nil, err
	}

	ownerID, err := steamid.ParseID64(upstream.OwnerSteamID64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrMalformed, err)
	}

	owner, err := r.ResolvePlayer(ctx, ByID(ownerID), "")
	if err != nil {
		return nil, err
	}

	created := &models.Server{
		ID:      id,
		Name:    upstream.Name,
		OwnedBy: owner.ID,
	}
	if err := r.servers.CreateIgnore(created); err != nil {
		return nil, err
	}

	return r.servers.GetByID(id)
}

// EnsureCourse guarantees the course row for a (map, stage) pair exists,
// creating an untiered bonus row when a record references a stage the map's
// original expansion didn't know about.
func (r *EntityResolver) EnsureCourse(ctx context.Context, mapID uint16, stage uint8) (uint32, error) {
	if stage >= models.MaxStages {
		return 0, &errs.RangeError{Field: "stage", Value: int64(stage), Max: models.MaxStages - 1}
	}

	id := models.CourseID(mapID, stage)

	exists, err := r.maps.CourseExists(id)
	if err != nil {
		return 0, err
	}
	if exists {
		return id, nil
	}

	course := &models.Course{ID: id, MapID: mapID, Stage: stage}
	if _, err := r.maps.UpsertCourseBatch(ctx, []*models.Course{course}); err != nil {
		return 0, err
	}

	return id, nil
}

// String renders the identifier for error messages.
func (i Identifier) String() string {
	if i.byID {
		return strconv.FormatUint(uint64(i.ID), 10)
	}
	return strconv.Quote(i.Name)
}

// matchGlobalMap finds the listing entry for an identifier: id match, exact
// name match, then substring containment in either direction.
func matchGlobalMap(maps []globalapi.Map, ident Identifier) *globalapi.Map {
	if ident.byID {
		for i := range maps {
			if maps[i].ID == int64(ident.ID) {
				return &maps[i]
			}
		}
		return nil
	}

	for i := range maps {
		if maps[i].Name == ident.Name {
			return &maps[i]
		}
	}
	for i := range maps {
		if strings.Contains(maps[i].Name, ident.Name) || strings.Contains(ident.Name, maps[i].Name) {
			return &maps[i]
		}
	}

	return nil
}

func matchMetaMap(maps []kzgo.Map, name string) *kzgo.Map {
	for i := range maps {
		if maps[i].Name == name {
			return &maps[i]
		}
	}
	return nil
}

// MergeMap combines the two provider shapes into the canonical row and its
// derived courses. Absent or unparseable optional fields become nil.
func MergeMap(source *globalapi.Map, meta *kzgo.Map) (*models.Map, []*models.Course, error) {
	id, err := errs.NarrowUint16("map_id", source.ID)
	if err != nil {
		return nil, nil, err
	}

	m := &models.Map{
		ID:        id,
		Name:      source.Name,
		Global:    source.Validated,
		CreatedOn: source.CreatedOn.Time,
		UpdatedOn: source.UpdatedOn.Time,
	}

	if source.Filesize > 0 {
		size := uint64(source.Filesize)
		m.Filesize = &size
	}

	if approver, err := steamid.ParseID64(source.ApprovedBy); err == nil && approver != 0 {
		m.ApprovedBy = &approver
	}

	m.WorkshopID = parseWorkshopURL(source.WorkshopURL)

	tier := source.Difficulty
	var bonuses int64
	if meta != nil {
		if m.WorkshopID == nil {
			if parsed, err := strconv.ParseUint(meta.WorkshopID, 10, 64); err == nil {
				m.WorkshopID = &parsed
			}
		}
		tier = meta.Tier
		bonuses = meta.Bonuses
	}

	tier8, err := errs.NarrowUint8("tier", tier)
	if err != nil {
		return nil, nil, err
	}
	bonuses8, err := errs.NarrowUint8("bonus_count", bonuses)
	if err != nil {
		return nil, nil, err
	}

	courses, err := models.ExpandCourses(id, tier8, bonuses8)
	if err != nil {
		return nil, nil, err
	}

	return m, courses, nil
}

// parseWorkshopURL extracts the workshop id from the query part of the
// workshop URL, e.g. ".../filedetails/?id=123456".
func parseWorkshopURL(url string) *uint64 {
	idx := strings.LastIndex(url, "?")
	if idx < 0 {
		return nil
	}

	raw := strings.TrimPrefix(url[idx+1:], "id=")
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil
	}

	return &parsed
}

// IsTransient reports whether a resolution failure should be retried for
// the same unit of work.
func IsTransient(err error) bool {
	return errors.Is(err, errs.ErrUnavailable)
}
