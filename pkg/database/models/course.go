package models

import "kzsync/pkg/errs"

// MaxStages bounds the number of stages a map can have. The course id
// encodes (map_id, stage) as map_id*100+stage, so a stage at or above 100
// would collide with the next map's courses.
const MaxStages = 100

// Course is one stage of a map. Stage 0 is the main course and is the only
// stage carrying a difficulty tier.
type Course struct {
	ID    uint32 `gorm:"primaryKey;type:int" json:"id"`
	MapID uint16 `gorm:"not null;index;type:int" json:"map_id"`
	Stage uint8  `gorm:"not null" json:"stage"`
	Tier  *uint8 `json:"tier"`

	Map *Map `gorm:"foreignKey:MapID" json:"-"`
}

// CourseID derives the unique course id for a (map, stage) pair.
func CourseID(mapID uint16, stage uint8) uint32 {
	return uint32(mapID)*100 + uint32(stage)
}

// ExpandCourses derives the course rows for a map: one per stage from 0 to
// bonusCount inclusive, with the tier set only on stage 0. A zero tier means
// the map is unrated and stays null.
func ExpandCourses(mapID uint16, tier uint8, bonusCount uint8) ([]*Course, error) {
	if int(bonusCount)+1 > MaxStages {
		return nil, &errs.RangeError{Field: "bonus_count", Value: int64(bonusCount), Max: MaxStages - 1}
	}

	courses := make([]*Course, 0, int(bonusCount)+1)
	for stage := uint8(0); stage <= bonusCount; stage++ {
		course := &Course{
			ID:    CourseID(mapID, stage),
			MapID: mapID,
			Stage: stage,
		}

		if stage == 0 && tier > 0 {
			mainTier := tier
			course.Tier = &mainTier
		}

		courses = append(courses, course)
	}

	return courses, nil
}
