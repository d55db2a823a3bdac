package service

import (
	"fmt"
	"provafacil_backend/internal/model"
	"provafacil_backend/internal/repository"
	"provafacil_backend/internal/util"
	"time"

	"gorm.io/gorm"
)

type ExamService struct {
	ExamRepo    *repository.ExamRepository
	AttemptRepo *repository.AttemptRepository
}

func NewExamService(examRepo *repository.ExamRepository, attemptRepo *repository.AttemptRepository) *ExamService {
	return &ExamService{ExamRepo: examRepo, AttemptRepo: attemptRepo}
}

type QuestionReq struct {
	Statement     string   `json:"statement"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
}

type ExamReq struct {
	Title     string        `json:"title"`
	Questions []QuestionReq `json:"questions"`
}

// ValidateExam 校验试卷结构，创建和导入共用同一套规则
func ValidateExam(req *ExamReq) error {
	if req.Title == "" {
		return util.NewValidationError("title", "must not be empty")
	}
	if len(req.Questions) == 0 {
		return util.NewValidationError("questions", "at least one question is required")
	}

	for i, q := range req.Questions {
		if q.Statement == "" {
			return util.NewQuestionValidationError(i, "statement", "must not be empty")
		}
		if len(q.Options) < util.MinOptionsPerQuestion {
			return util.NewQuestionValidationError(i, "options", fmt.Sprintf("at least %d options are required", util.MinOptionsPerQuestion))
		}
		for _, opt := range q.Options {
			if opt == "" {
				return util.NewQuestionValidationError(i, "options", "option text must not be empty")
			}
		}
		if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
			return util.NewQuestionValidationError(i, "correctAnswer", "index out of range")
		}
	}
	return nil
}

func (s *ExamService) CreateExam(creatorID uint, req *ExamReq) (*model.Exam, error) {
	if err := ValidateExam(req); err != nil {
		return nil, err
	}

	exam := &model.Exam{
		Title:         req.Title,
		Difficulty:    "medium",
		EstimatedTime: len(req.Questions) * util.EstimatedMinutesPerQuestion,
		CreatorID:     creatorID,
	}

	questions := make([]model.Question, 0, len(req.Questions))
	for i, q := range req.Questions {
		question := model.Question{
			Statement:     q.Statement,
			CorrectAnswer: q.CorrectAnswer,
			Order:         i,
		}
		if err := question.SetOptions(q.Options); err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}

	if err := s.ExamRepo.CreateWithQuestions(exam, questions); err != nil {
		return nil, err
	}
	return exam, nil
}

// ImportExam 从上传的 JSON 数据创建试卷，校验规则与表单创建完全一致
func (s *ExamService) ImportExam(creatorID uint, req *ExamReq) (*model.Exam, error) {
	return s.CreateExam(creatorID, req)
}

func (s *ExamService) GetExamByID(id string) (*model.Exam, error) {
	exam, err := s.ExamRepo.FindByID(id)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrExamNotFound
	}
	return exam, err
}

// CanViewFullExam 含正确答案的完整视图只开放给创建者、管理员，
// 以及至少交过一次卷的用户；答题中的用户只能走脱敏视图
func CanViewFullExam(userID uint, role model.UserRole, creatorID uint, attempts int64) bool {
	return creatorID == userID || role == model.Admin || attempts > 0
}

// GetExamDetail 按调用者身份返回完整试卷，无权限时报 ErrPermissionDenied
func (s *ExamService) GetExamDetail(userID uint, role model.UserRole, id string) (*model.Exam, error) {
	exam, err := s.GetExamByID(id)
	if err != nil {
		return nil, err
	}

	var attempts int64
	if !CanViewFullExam(userID, role, exam.CreatorID, 0) {
		attempts, err = s.AttemptRepo.CountByUserAndExam(userID, id)
		if err != nil {
			return nil, err
		}
	}
	if !CanViewFullExam(userID, role, exam.CreatorID, attempts) {
		return nil, util.ErrPermissionDenied
	}
	return exam, nil
}

// QuestionView 答题过程中下发的题目视图，不含正确答案
type QuestionView struct {
	ID        string   `json:"id"`
	Statement string   `json:"statement"`
	Options   []string `json:"options"`
}

type ExamDelivery struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Difficulty    string         `json:"difficulty"`
	EstimatedTime int            `json:"estimatedTime"`
	Questions     []QuestionView `json:"questions"`
}

// GetExamForTaking 获取答题用的脱敏视图；完整题目（含答案）只在交卷后的结果接口返回
func (s *ExamService) GetExamForTaking(id string) (*ExamDelivery, error) {
	exam, err := s.GetExamByID(id)
	if err != nil {
		return nil, err
	}
	return NewExamDelivery(exam), nil
}

// NewExamDelivery 从完整试卷构造脱敏视图
func NewExamDelivery(exam *model.Exam) *ExamDelivery {
	views := make([]QuestionView, 0, len(exam.Questions))
	for _, q := range exam.Questions {
		views = append(views, QuestionView{
			ID:        q.ID,
			Statement: q.Statement,
			Options:   q.OptionList(),
		})
	}

	return &ExamDelivery{
		ID:            exam.ID,
		Title:         exam.Title,
		Difficulty:    exam.Difficulty,
		EstimatedTime: exam.EstimatedTime,
		Questions:     views,
	}
}

type LastAttempt struct {
	ID          string    `json:"id"`
	Score       int       `json:"score"`
	CompletedAt time.Time `json:"completedAt"`
}

type ExamSummary struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Questions     int          `json:"questions"`
	Difficulty    string       `json:"difficulty"`
	EstimatedTime string       `json:"estimatedTime"`
	Completed     bool         `json:"completed"`
	LastAttempt   *LastAttempt `json:"lastAttempt"`
}

// ListAvailableExams 所有试卷按创建时间倒序，附带该用户是否已完成及最近一次成绩
func (s *ExamService) ListAvailableExams(userID uint) ([]ExamSummary, error) {
	rows, err := s.ExamRepo.ListWithUserAttempts(userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ExamSummary, 0, len(rows))
	for _, row := range rows {
		estimated := row.EstimatedTime
		if estimated == 0 {
			estimated = row.QuestionCount * util.EstimatedMinutesPerQuestion
		}

		summary := ExamSummary{
			ID:            row.Exam.ID,
			Title:         row.Title,
			Questions:     row.QuestionCount,
			Difficulty:    row.Difficulty,
			EstimatedTime: fmt.Sprintf("%d min", estimated),
			Completed:     row.AttemptCount > 0,
		}
		if row.LastAttemptID != nil {
			summary.LastAttempt = &LastAttempt{ID: *row.LastAttemptID}
			if row.LastScore != nil {
				summary.LastAttempt.Score = *row.LastScore
			}
			if row.LastCompleted != nil {
				summary.LastAttempt.CompletedAt = *row.LastCompleted
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *ExamService) ListMyExams(creatorID uint) ([]model.Exam, error) {
	return s.ExamRepo.ListByCreator(creatorID)
}

func (s *ExamService) DeleteExam(userID uint, role model.UserRole, examID string) error {
	exam, err := s.GetExamByID(examID)
	if err != nil {
		return err
	}
	if exam.CreatorID != userID && role != model.Admin {
		return util.ErrPermissionDenied
	}
	return s.ExamRepo.Delete(examID)
}
