package model

// Course is an admin-maintained course record. Identity is the UUID; Code is a
// display field with no uniqueness enforcement in storage.
// swagger:model Course
type Course struct {
	UUIDBase
	Code string `gorm:"size:50;not null" json:"code"`
	Name string `gorm:"size:255;not null" json:"name"`
}

func (Course) TableName() string {
	return "courses"
}
