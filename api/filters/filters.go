package filters

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// Pagination is shared by every list endpoint.
type Pagination struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// Clamp keeps the page size inside sane bounds.
func (p *Pagination) Clamp() {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
}

// Query parameters for the player listing.
type PlayerParams struct {
	Pagination
	Name     string `form:"name"`
	IsBanned *bool  `form:"is_banned"`
}

// Get the query parameters as a map.
func (q *PlayerParams) AsMap() map[string]any {
	filters := make(map[string]any)

	filters["name"] = q.Name
	if q.IsBanned != nil {
		filters["is_banned"] = *q.IsBanned
	}

	return filters
}

// Query parameters for the map listing.
type MapParams struct {
	Pagination
	Name   string `form:"name"`
	Global *bool  `form:"global"`
}

// Get the query parameters as a map.
func (q *MapParams) AsMap() map[string]any {
	filters := make(map[string]any)

	filters["name"] = q.Name
	if q.Global != nil {
		filters["global"] = *q.Global
	}

	return filters
}

// Query parameters for the server listing.
type ServerParams struct {
	Pagination
	Name    string `form:"name"`
	OwnedBy uint32 `form:"owned_by"`
}

// Get the query parameters as a map.
func (q *ServerParams) AsMap() map[string]any {
	filters := make(map[string]any)

	filters["name"] = q.Name
	if q.OwnedBy != 0 {
		filters["owned_by"] = q.OwnedBy
	}

	return filters
}

// Query parameters for the record listing.
type RecordParams struct {
	Pagination
	PlayerID uint32 `form:"player_id"`
	MapID    uint16 `form:"map_id"`
	Stage    *uint8 `form:"stage"`
	ModeID   uint16 `form:"mode_id"`
	ServerID uint16 `form:"server_id"`
}

// Get the query parameters as a map.
func (q *RecordParams) AsMap() map[string]any {
	filters := make(map[string]any)

	if q.PlayerID != 0 {
		filters["player_id"] = q.PlayerID
	}
	if q.MapID != 0 {
		filters["map_id"] = q.MapID
	}
	if q.Stage != nil {
		filters["stage"] = *q.Stage
	}
	if q.ModeID != 0 {
		filters["mode_id"] = q.ModeID
	}
	if q.ServerID != 0 {
		filters["server_id"] = q.ServerID
	}

	return filters
}
