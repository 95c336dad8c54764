// Package legacy maps the historical MySQL schema onto the canonical models.
// The old schema stores everything in narrow integer columns; every
// conversion out of it is checked here and nowhere else.
package legacy

import (
	"time"

	"kzsync/pkg/database/models"
	"kzsync/pkg/errs"
)

// PlayerRow is a row of the legacy players table.
type PlayerRow struct {
	ID       int64  `gorm:"column:id"`
	Name     string `gorm:"column:name"`
	IsBanned bool   `gorm:"column:is_banned"`
}

func (PlayerRow) TableName() string { return "players" }

func (r PlayerRow) Canonical() (*models.Player, error) {
	id, err := errs.NarrowUint32("player_id", r.ID)
	if err != nil {
		return nil, err
	}

	return &models.Player{ID: id, Name: r.Name, IsBanned: r.IsBanned}, nil
}

// MapRow is a row of the legacy maps table. The old schema has no workshop
// id and stores the approver as a bare integer with zero meaning nobody.
type MapRow struct {
	ID         int64     `gorm:"column:id"`
	Name       string    `gorm:"column:name"`
	Global     bool      `gorm:"column:global"`
	Filesize   int64     `gorm:"column:filesize"`
	ApprovedBy int64     `gorm:"column:approved_by"`
	CreatedOn  time.Time `gorm:"column:created_on"`
	UpdatedOn  time.Time `gorm:"column:updated_on"`
}

func (MapRow) TableName() string { return "maps" }

func (r MapRow) Canonical() (*models.Map, error) {
	id, err := errs.NarrowUint16("map_id", r.ID)
	if err != nil {
		return nil, err
	}

	m := &models.Map{
		ID:        id,
		Name:      r.Name,
		Global:    r.Global,
		CreatedOn: r.CreatedOn,
		UpdatedOn: r.UpdatedOn,
	}

	if r.Filesize > 0 {
		size := uint64(r.Filesize)
		m.Filesize = &size
	}

	if r.ApprovedBy != 0 {
		approver, err := errs.NarrowUint32("approved_by", r.ApprovedBy)
		if err != nil {
			return nil, err
		}
		m.ApprovedBy = &approver
	}

	return m, nil
}

// CourseRow is a row of the legacy courses table, which carries a tier on
// every stage. Only the main stage's tier is meaningful. The old schema
// encoded course ids as map_id*1000+stage; the stored id is discarded and
// the canonical map_id*100+stage id derived from the pair instead.
type CourseRow struct {
	ID    int64 `gorm:"column:id"`
	MapID int64 `gorm:"column:map_id"`
	Stage int64 `gorm:"column:stage"`
	Tier  int64 `gorm:"column:tier"`
}

func (CourseRow) TableName() string { return "courses" }

func (r CourseRow) Canonical() (*models.Course, error) {
	mapID, err := errs.NarrowUint16("map_id", r.MapID)
	if err != nil {
		return nil, err
	}

	stage, err := errs.NarrowUint8("stage", r.Stage)
	if err != nil {
		return nil, err
	}
	if stage >= models.MaxStages {
		return nil, &errs.RangeError{Field: "stage", Value: int64(stage), Max: models.MaxStages - 1}
	}

	course := &models.Course{ID: models.CourseID(mapID, stage), MapID: mapID, Stage: stage}

	if stage == 0 && r.Tier > 0 {
		tier, err := errs.NarrowUint8("tier", r.Tier)
		if err != nil {
			return nil, err
		}
		course.Tier = &tier
	}

	return course, nil
}

// ServerRow is a row of the legacy servers table.
type ServerRow struct {
	ID         int64  `gorm:"column:id"`
	Name       string `gorm:"column:name"`
	OwnedBy    int64  `gorm:"column:owned_by"`
	ApprovedBy int64  `gorm:"column:approved_by"`
}

func (ServerRow) TableName() string { return "servers" }

func (r ServerRow) Canonical() (*models.Server, error) {
	id, err := errs.NarrowUint16("server_id", r.ID)
	if err != nil {
		return nil, err
	}

	ownedBy, err := errs.NarrowUint32("owned_by", r.OwnedBy)
	if err != nil {
		return nil, err
	}

	server := &models.Server{ID: id, Name: r.Name, OwnedBy: ownedBy}

	if r.ApprovedBy != 0 {
		approver, err := errs.NarrowUint32("approved_by", r.ApprovedBy)
		if err != nil {
			return nil, err
		}
		server.ApprovedBy = &approver
	}

	return server, nil
}

// MapperRow is a row of the legacy mappers table. The old column is named
// mapper_id rather than player_id.
type MapperRow struct {
	MapID    int64 `gorm:"column:map_id"`
	MapperID int64 `gorm:"column:mapper_id"`
}

func (MapperRow) TableName() string { return "mappers" }

func (r MapperRow) Canonical() (*models.Mapper, error) {
	mapID, err := errs.NarrowUint16("map_id", r.MapID)
	if err != nil {
		return nil, err
	}

	playerID, err := errs.NarrowUint32("mapper_id", r.MapperID)
	if err != nil {
		return nil, err
	}

	return &models.Mapper{PlayerID: playerID, MapID: mapID}, nil
}

// remapCourseID rebuilds a canonical course id out of a legacy one, which
// encoded the pair as map_id*1000+stage.
func remapCourseID(field string, legacyID int64) (uint32, error) {
	if _, err := errs.NarrowUint32(field, legacyID); err != nil {
		return 0, err
	}

	stage := legacyID % 1000
	if stage >= models.MaxStages {
		return 0, &errs.RangeError{Field: field, Value: legacyID, Max: models.MaxStages - 1}
	}

	mapID, err := errs.NarrowUint16(field, legacyID/1000)
	if err != nil {
		return 0, err
	}

	return models.CourseID(mapID, uint8(stage)), nil
}

// FilterRow is a row of the legacy filters table. Its course_id carries the
// legacy encoding and is remapped like the course rows themselves.
type FilterRow struct {
	CourseID int64 `gorm:"column:course_id"`
	ModeID   int64 `gorm:"column:mode_id"`
}

func (FilterRow) TableName() string { return "filters" }

func (r FilterRow) Canonical() (*models.Filter, error) {
	courseID, err := remapCourseID("course_id", r.CourseID)
	if err != nil {
		return nil, err
	}

	modeID, err := errs.NarrowUint16("mode_id", r.ModeID)
	if err != nil {
		return nil, err
	}

	return &models.Filter{CourseID: courseID, ModeID: modeID}, nil
}

// RecordRow is a row of the legacy records table. Its course_id carries the
// legacy encoding and is remapped like the course rows themselves.
type RecordRow struct {
	ID        int64     `gorm:"column:id"`
	CourseID  int64     `gorm:"column:course_id"`
	ModeID    int64     `gorm:"column:mode_id"`
	PlayerID  int64     `gorm:"column:player_id"`
	ServerID  int64     `gorm:"column:server_id"`
	Time      float64   `gorm:"column:time"`
	Teleports int64     `gorm:"column:teleports"`
	CreatedOn time.Time `gorm:"column:created_on"`
}

func (RecordRow) TableName() string { return "records" }

func (r RecordRow) Canonical() (*models.Record, error) {
	id, err := errs.NarrowUint32("record_id", r.ID)
	if err != nil {
		return nil, err
	}

	courseID, err := remapCourseID("course_id", r.CourseID)
	if err != nil {
		return nil, err
	}

	modeID, err := errs.NarrowUint16("mode_id", r.ModeID)
	if err != nil {
		return nil, err
	}

	playerID, err := errs.NarrowUint32("player_id", r.PlayerID)
	if err != nil {
		return nil, err
	}

	serverID, err := errs.NarrowUint16("server_id", r.ServerID)
	if err != nil {
		return nil, err
	}

	teleports, err := errs.NarrowUint16("teleports", r.Teleports)
	if err != nil {
		return nil, err
	}

	return &models.Record{
		ID:        id,
		CourseID:  courseID,
		ModeID:    modeID,
		PlayerID:  playerID,
		ServerID:  serverID,
		Time:      r.Time,
		Teleports: teleports,
		CreatedOn: r.CreatedOn,
	}, nil
}
