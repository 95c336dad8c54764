package models

// Server is a game server records are submitted from. The owner player is
// resolved before the server row is written, so OwnedBy never dangles.
type Server struct {
	ID         uint16  `gorm:"primaryKey;type:int" json:"id"`
	Name       string  `gorm:"type:varchar(255);not null" json:"name"`
	OwnedBy    uint32  `gorm:"not null;type:bigint" json:"owned_by"`
	ApprovedBy *uint32 `gorm:"type:bigint" json:"approved_by"`

	Owner    *Player `gorm:"foreignKey:OwnedBy" json:"-"`
	Approver *Player `gorm:"foreignKey:ApprovedBy" json:"-"`
}
