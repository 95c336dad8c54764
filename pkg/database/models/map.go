package models

import "time"

// Map is a KZ map as merged from both metadata providers.
// Global mirrors the upstream "validated" flag.
type Map struct {
	ID         uint16    `gorm:"primaryKey;type:int" json:"id"`
	Name       string    `gorm:"type:varchar(255);not null;index" json:"name"`
	Global     bool      `gorm:"not null;default:false" json:"global"`
	WorkshopID *uint64   `json:"workshop_id"`
	Filesize   *uint64   `json:"filesize"`
	ApprovedBy *uint32   `gorm:"type:bigint" json:"approved_by"`
	CreatedOn  time.Time `gorm:"not null" json:"created_on"`
	UpdatedOn  time.Time `gorm:"not null" json:"updated_on"`

	Approver *Player `gorm:"foreignKey:ApprovedBy" json:"-"`
}

// Mapper links a player to a map they worked on. Deduplicated by the pair.
type Mapper struct {
	PlayerID uint32 `gorm:"not null;uniqueIndex:idx_mapper_pair;type:bigint" json:"player_id"`
	MapID    uint16 `gorm:"not null;uniqueIndex:idx_mapper_pair;type:int" json:"map_id"`

	Player *Player `gorm:"foreignKey:PlayerID" json:"-"`
	Map    *Map    `gorm:"foreignKey:MapID" json:"-"`
}
