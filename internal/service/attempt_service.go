package service

import (
	"context"
	"fmt"
	"math"
	"provafacil_backend/internal/model"
	"provafacil_backend/internal/repository"
	"provafacil_backend/internal/util"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

type AttemptService struct {
	ExamRepo    *repository.ExamRepository
	AttemptRepo *repository.AttemptRepository
	Redis       *redis.Client
}

func NewAttemptService(examRepo *repository.ExamRepository, attemptRepo *repository.AttemptRepository, rdb *redis.Client) *AttemptService {
	return &AttemptService{
		ExamRepo:    examRepo,
		AttemptRepo: attemptRepo,
		Redis:       rdb,
	}
}

type SubmitResult struct {
	AttemptID string `json:"attemptId"`
	Score     int    `json:"score"`
}

// GradeAnswers 为试卷中的每一道题生成作答记录，未作答按答错处理，
// 返回记录和答对数量
func GradeAnswers(questions []model.Question, selections map[string]int) ([]model.Answer, int) {
	answers := make([]model.Answer, 0, len(questions))
	correct := 0

	for _, q := range questions {
		answer := model.Answer{QuestionID: q.ID}
		if selected, ok := selections[q.ID]; ok {
			sel := selected
			answer.Selected = &sel
			answer.IsCorrect = selected == q.CorrectAnswer
		}
		if answer.IsCorrect {
			correct++
		}
		answers = append(answers, answer)
	}
	return answers, correct
}

// ComputeScore 百分制得分，四舍五入
func ComputeScore(correct, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(correct) / float64(total) * 100))
}

// Submit 交卷。重复调用会生成新的答题记录（重考是正常功能，不做去重）
func (s *AttemptService) Submit(userID uint, examID string, selections map[string]int, timeSpent int) (*SubmitResult, error) {
	exam, err := s.ExamRepo.FindByID(examID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrExamNotFound
	}
	if err != nil {
		return nil, err
	}

	answers, correct := GradeAnswers(exam.Questions, selections)

	attempt := &model.Attempt{
		UserID:      userID,
		ExamID:      examID,
		Score:       ComputeScore(correct, len(exam.Questions)),
		TimeSpent:   timeSpent,
		CompletedAt: time.Now(),
	}

	if err := s.AttemptRepo.CreateWithAnswers(attempt, answers); err != nil {
		return nil, err
	}

	s.invalidateStatsCache(userID)

	return &SubmitResult{AttemptID: attempt.ID, Score: attempt.Score}, nil
}

// 交卷后仪表盘/历史的缓存视图失效
func (s *AttemptService) invalidateStatsCache(userID uint) {
	if s.Redis == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	s.Redis.Del(ctx, fmt.Sprintf(userStatsCacheKey, userID))
}
