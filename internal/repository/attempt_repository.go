package repository

import (
	"provafacil_backend/internal/model"

	"gorm.io/gorm"
)

type AttemptRepository struct {
	DB *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) *AttemptRepository {
	return &AttemptRepository{DB: db}
}

// CreateWithAnswers 答题记录与每题作答在同一事务中写入，
// 不允许出现只有部分答案落库的中间状态
func (r *AttemptRepository) CreateWithAnswers(attempt *model.Attempt, answers []model.Answer) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(attempt).Error; err != nil {
			return err
		}
		for i := range answers {
			answers[i].AttemptID = attempt.ID
		}
		if len(answers) > 0 {
			if err := tx.Create(&answers).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *AttemptRepository) FindByUser(userID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Preload("Answers").
		Where("user_id = ?", userID).
		Order("completed_at desc").
		Find(&attempts).Error
	return attempts, err
}

func (r *AttemptRepository) FindByUserWithExam(userID uint) ([]model.Attempt, error) {
	var attempts []model.Attempt
	err := r.DB.Preload("Answers").
		Preload("Exam.Questions").
		Where("user_id = ?", userID).
		Order("completed_at desc").
		Find(&attempts).Error
	return attempts, err
}

// FindForResults 查找某用户在某试卷下的答题记录；attemptID 为空时取最近一次
func (r *AttemptRepository) FindForResults(userID uint, examID, attemptID string) (*model.Attempt, error) {
	query := r.DB.Preload("Answers").
		Preload("Exam.Questions").
		Where("user_id = ? AND exam_id = ?", userID, examID)
	if attemptID != "" {
		query = query.Where("id = ?", attemptID)
	}

	var attempt model.Attempt
	if err := query.Order("completed_at desc").First(&attempt).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *AttemptRepository) CountByUserAndExam(userID uint, examID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.Attempt{}).Where("user_id = ? AND exam_id = ?", userID, examID).Count(&count).Error
	return count, err
}
