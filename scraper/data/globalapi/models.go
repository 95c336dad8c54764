package globalapi

import "kzsync/pkg/kztime"

// Record is a single run as returned by the sequential record endpoint.
type Record struct {
	ID         uint32      `json:"id"`
	SteamID64  string      `json:"steamid64"`
	PlayerName string      `json:"player_name"`
	ServerID   int64       `json:"server_id"`
	ServerName string      `json:"server_name"`
	MapID      int64       `json:"map_id"`
	MapName    string      `json:"map_name"`
	Stage      int64       `json:"stage"`
	ModeName   string      `json:"mode"`
	Time       float64     `json:"time"`
	Teleports  int64       `json:"teleports"`
	CreatedOn  kztime.Time `json:"created_on"`
}

// Player is one entry of the paginated player listing.
type Player struct {
	SteamID64 string `json:"steamid64"`
	Name      string `json:"name"`
	IsBanned  bool   `json:"is_banned"`
}

// Server is one entry of the server listing.
type Server struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	OwnerSteamID64 string `json:"owner_steamid64"`
}

// Map is the map metadata of provider A. Provider B (kzgo) supplies the
// bonus count and the mode support flags.
type Map struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Filesize    int64       `json:"filesize"`
	Validated   bool        `json:"validated"`
	Difficulty  int64       `json:"difficulty"`
	WorkshopURL string      `json:"workshop_url"`
	ApprovedBy  string      `json:"approved_by_steamid64"`
	CreatedOn   kztime.Time `json:"created_on"`
	UpdatedOn   kztime.Time `json:"updated_on"`
}
