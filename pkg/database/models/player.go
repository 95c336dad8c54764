package models

// Player is a KZ player identified by its 32 bit community id.
// Rows are created lazily on first reference and never deleted.
type Player struct {
	ID       uint32 `gorm:"primaryKey;type:bigint" json:"id"`
	Name     string `gorm:"type:varchar(255);not null" json:"name"`
	IsBanned bool   `gorm:"not null;default:false" json:"is_banned"`
}
