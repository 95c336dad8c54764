package models

import "time"

// Record is a single run submission. Append only: records are never updated
// or deleted, and a duplicate id is a logic bug rather than a valid retry.
type Record struct {
	ID        uint32    `gorm:"primaryKey;type:bigint" json:"id"`
	CourseID  uint32    `gorm:"not null;index;type:int" json:"course_id"`
	ModeID    uint16    `gorm:"not null;type:int" json:"mode_id"`
	PlayerID  uint32    `gorm:"not null;index;type:bigint" json:"player_id"`
	ServerID  uint16    `gorm:"not null;type:int" json:"server_id"`
	Time      float64   `gorm:"not null" json:"time"`
	Teleports uint16    `gorm:"not null;type:int" json:"teleports"`
	CreatedOn time.Time `gorm:"not null" json:"created_on"`

	Course *Course `gorm:"foreignKey:CourseID" json:"-"`
	Player *Player `gorm:"foreignKey:PlayerID" json:"-"`
	Server *Server `gorm:"foreignKey:ServerID" json:"-"`
}
