package repository

import (
	"provafacil_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

// CreateWithQuestions 试卷及其题目在同一事务中写入
func (r *ExamRepository) CreateWithQuestions(exam *model.Exam, questions []model.Question) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(exam).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].ExamID = exam.ID
		}
		if len(questions) > 0 {
			if err := tx.Create(&questions).Error; err != nil {
				return err
			}
		}
		exam.Questions = questions
		return nil
	})
}

func (r *ExamRepository) FindByID(id string) (*model.Exam, error) {
	var exam model.Exam
	err := r.DB.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("`order` asc, created_at asc")
	}).First(&exam, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &exam, nil
}

func (r *ExamRepository) ListByCreator(creatorID uint) ([]model.Exam, error) {
	var exams []model.Exam
	err := r.DB.Preload("Questions").
		Where("creator_id = ?", creatorID).
		Order("created_at desc").
		Find(&exams).Error
	return exams, err
}

// ExamListRow 试卷列表投影，带指定用户的最近一次答题信息
type ExamListRow struct {
	model.Exam
	QuestionCount int        `json:"questionCount"`
	AttemptCount  int        `json:"attemptCount"`
	LastAttemptID *string    `json:"lastAttemptId"`
	LastScore     *int       `json:"lastScore"`
	LastCompleted *time.Time `json:"lastCompleted"`
}

func (r *ExamRepository) ListWithUserAttempts(userID uint) ([]ExamListRow, error) {
	var rows []ExamListRow
	err := r.DB.Table("exams e").
		Select("e.*, "+
			"(SELECT COUNT(*) FROM questions q WHERE q.exam_id = e.id AND q.deleted_at IS NULL) as question_count, "+
			"(SELECT COUNT(*) FROM attempts a WHERE a.exam_id = e.id AND a.user_id = ? AND a.deleted_at IS NULL) as attempt_count, "+
			"(SELECT a.id FROM attempts a WHERE a.exam_id = e.id AND a.user_id = ? AND a.deleted_at IS NULL ORDER BY a.completed_at DESC LIMIT 1) as last_attempt_id, "+
			"(SELECT a.score FROM attempts a WHERE a.exam_id = e.id AND a.user_id = ? AND a.deleted_at IS NULL ORDER BY a.completed_at DESC LIMIT 1) as last_score, "+
			"(SELECT a.completed_at FROM attempts a WHERE a.exam_id = e.id AND a.user_id = ? AND a.deleted_at IS NULL ORDER BY a.completed_at DESC LIMIT 1) as last_completed",
			userID, userID, userID, userID).
		Where("e.deleted_at IS NULL").
		Order("e.created_at desc").
		Scan(&rows).Error
	return rows, err
}

// Delete 删除试卷及其题目、答题记录
func (r *ExamRepository) Delete(id string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var attemptIDs []string
		if err := tx.Model(&model.Attempt{}).Where("exam_id = ?", id).Pluck("id", &attemptIDs).Error; err != nil {
			return err
		}
		if len(attemptIDs) > 0 {
			if err := tx.Where("attempt_id IN ?", attemptIDs).Delete(&model.Answer{}).Error; err != nil {
				return err
			}
			if err := tx.Where("exam_id = ?", id).Delete(&model.Attempt{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("exam_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Exam{}, "id = ?", id).Error
	})
}
