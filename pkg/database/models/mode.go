package models

// Upstream mode ids. These are fixed by the game and seeded by migration.
const (
	ModeKZTimer  uint16 = 200
	ModeSimpleKZ uint16 = 201
	ModeVanilla  uint16 = 202
)

// ModeCount is the expected number of rows in the modes table. A different
// count at startup means the schema is corrupted.
const ModeCount = 3

// ModeIDFromName maps the upstream mode name to its fixed id.
func ModeIDFromName(name string) (uint16, bool) {
	switch name {
	case "kz_timer":
		return ModeKZTimer, true
	case "kz_simple":
		return ModeSimpleKZ, true
	case "kz_vanilla":
		return ModeVanilla, true
	default:
		return 0, false
	}
}

// Mode is one of the three fixed game modes.
type Mode struct {
	ID   uint16 `gorm:"primaryKey;type:int" json:"id"`
	Name string `gorm:"type:varchar(255);not null;unique" json:"name"`
}

// Filter marks a (course, mode) combination a map supports. Derived from
// the map name prefix and the mode support flags of the metadata provider.
type Filter struct {
	CourseID uint32 `gorm:"not null;uniqueIndex:idx_filter_pair;type:int" json:"course_id"`
	ModeID   uint16 `gorm:"not null;uniqueIndex:idx_filter_pair;type:int" json:"mode_id"`

	Course *Course `gorm:"foreignKey:CourseID" json:"-"`
	Mode   *Mode   `gorm:"foreignKey:ModeID" json:"-"`
}
