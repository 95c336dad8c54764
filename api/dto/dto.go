package dto

import "kzsync/pkg/database/models"

// MapDetail is a map together with its expanded courses.
type MapDetail struct {
	models.Map
	Courses []*models.Course `json:"courses"`
}
