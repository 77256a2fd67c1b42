package repository

import (
	"uas_practice_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionRepository struct {
	DB *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{DB: db}
}

func (r *QuestionRepository) Create(question *model.Question) error {
	return r.DB.Create(question).Error
}

func (r *QuestionRepository) FindByID(id string) (*model.Question, error) {
	var q model.Question
	err := r.DB.First(&q, "id = ?", id).Error
	return &q, err
}

func (r *QuestionRepository) ListAll() ([]model.Question, error) {
	var qs []model.Question
	err := r.DB.Order("created_at asc").Find(&qs).Error
	return qs, err
}

func (r *QuestionRepository) ListByCourse(courseID string, page, limit int) ([]model.Question, int64, error) {
	var qs []model.Question
	var total int64
	query := r.DB.Model(&model.Question{})
	if courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&qs).Error
	return qs, total, err
}

func (r *QuestionRepository) Update(question *model.Question) error {
	return r.DB.Save(question).Error
}

func (r *QuestionRepository) Delete(id string) error {
	return r.DB.Delete(&model.Question{}, "id = ?", id).Error
}

// CreateBatch inserts all records in a single transaction. Either the whole
// batch lands or none of it does.
func (r *QuestionRepository) CreateBatch(questions []model.Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		for i := range questions {
			if err := tx.Create(&questions[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
