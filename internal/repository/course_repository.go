package repository

import (
	"uas_practice_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id string) (*model.Course, error) {
	var c model.Course
	err := r.DB.First(&c, "id = ?", id).Error
	return &c, err
}

func (r *CourseRepository) ListAll() ([]model.Course, error) {
	var cs []model.Course
	err := r.DB.Order("created_at asc").Find(&cs).Error
	return cs, err
}

func (r *CourseRepository) Update(course *model.Course) error {
	return r.DB.Save(course).Error
}

// Delete removes the course only. Questions referencing it are left in place
// as dangling references; the read side tolerates those.
func (r *CourseRepository) Delete(id string) error {
	return r.DB.Delete(&model.Course{}, "id = ?", id).Error
}
