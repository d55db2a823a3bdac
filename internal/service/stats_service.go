package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"provafacil_backend/internal/model"
	"provafacil_backend/internal/repository"
	"provafacil_backend/internal/util"
	"provafacil_backend/pkg/logger"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	userStatsCacheKey = "user_stats:%d"
	userStatsCacheTTL = 5 * time.Minute
)

type StatsService struct {
	AttemptRepo *repository.AttemptRepository
	Redis       *redis.Client
}

func NewStatsService(attemptRepo *repository.AttemptRepository, rdb *redis.Client) *StatsService {
	return &StatsService{AttemptRepo: attemptRepo, Redis: rdb}
}

type UserStats struct {
	TotalExams     int    `json:"totalExams"`
	CorrectAnswers int    `json:"correctAnswers"`
	WrongAnswers   int    `json:"wrongAnswers"`
	AverageTime    string `json:"averageTime"`
}

// ComputeUserStats 汇总一个用户的全部答题记录
func ComputeUserStats(attempts []model.Attempt) UserStats {
	stats := UserStats{AverageTime: util.FormatDuration(0)}

	totalTime := 0
	for _, attempt := range attempts {
		totalTime += attempt.TimeSpent
		for _, answer := range attempt.Answers {
			if answer.IsCorrect {
				stats.CorrectAnswers++
			} else {
				stats.WrongAnswers++
			}
		}
	}

	stats.TotalExams = len(attempts)
	if stats.TotalExams > 0 {
		avg := int(math.Round(float64(totalTime) / float64(stats.TotalExams)))
		stats.AverageTime = util.FormatDuration(avg)
	}
	return stats
}

// GetUserStats 查询失败时返回全零默认值而不是错误，汇总视图不因此崩溃
func (s *StatsService) GetUserStats(userID uint) UserStats {
	if cached, ok := s.statsFromCache(userID); ok {
		return cached
	}

	attempts, err := s.AttemptRepo.FindByUser(userID)
	if err != nil {
		logger.Log.Error("failed to load attempts for stats", zap.Uint("userId", userID), zap.Error(err))
		return ComputeUserStats(nil)
	}

	stats := ComputeUserStats(attempts)
	s.cacheStats(userID, stats)
	return stats
}

func (s *StatsService) statsFromCache(userID uint) (UserStats, bool) {
	if s.Redis == nil {
		return UserStats{}, false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	val, err := s.Redis.Get(ctx, fmt.Sprintf(userStatsCacheKey, userID)).Result()
	if err != nil {
		return UserStats{}, false
	}
	var stats UserStats
	if err := json.Unmarshal([]byte(val), &stats); err != nil {
		return UserStats{}, false
	}
	return stats, true
}

func (s *StatsService) cacheStats(userID uint, stats UserStats) {
	if s.Redis == nil {
		return
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.Redis.Set(ctx, fmt.Sprintf(userStatsCacheKey, userID), data, userStatsCacheTTL).Err(); err != nil {
		logger.Log.Warn("failed to cache user stats", zap.Uint("userId", userID), zap.Error(err))
	}
}

type HistoryEntry struct {
	ExamID         string    `json:"id"`
	AttemptID      string    `json:"attemptId"`
	Title          string    `json:"title"`
	CompletedAt    time.Time `json:"completedAt"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"totalQuestions"`
	CorrectAnswers int       `json:"correctAnswers"`
	TimeSpent      int       `json:"timeSpent"`
	Status         string    `json:"status"`
}

// GetUserExamHistory 按完成时间倒序的答题历史；查询失败时返回空列表
func (s *StatsService) GetUserExamHistory(userID uint) []HistoryEntry {
	attempts, err := s.AttemptRepo.FindByUserWithExam(userID)
	if err != nil {
		logger.Log.Error("failed to load exam history", zap.Uint("userId", userID), zap.Error(err))
		return []HistoryEntry{}
	}

	entries := make([]HistoryEntry, 0, len(attempts))
	for _, attempt := range attempts {
		entry := HistoryEntry{
			AttemptID:   attempt.ID,
			ExamID:      attempt.ExamID,
			CompletedAt: attempt.CompletedAt,
			Score:       attempt.Score,
			TimeSpent:   attempt.TimeSpent,
			Status:      "completed",
		}
		if attempt.Exam != nil {
			entry.Title = attempt.Exam.Title
			entry.TotalQuestions = len(attempt.Exam.Questions)
		}
		for _, answer := range attempt.Answers {
			if answer.IsCorrect {
				entry.CorrectAnswers++
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

type QuestionResult struct {
	ID            string   `json:"id"`
	Statement     string   `json:"statement"`
	Options       []string `json:"options"`
	CorrectAnswer int      `json:"correctAnswer"`
	UserAnswer    *int     `json:"userAnswer"`
	IsCorrect     bool     `json:"isCorrect"`
}

type ExamResults struct {
	ExamID         string           `json:"examId"`
	AttemptID      string           `json:"attemptId"`
	ExamTitle      string           `json:"examTitle"`
	TotalQuestions int              `json:"totalQuestions"`
	CorrectAnswers int              `json:"correctAnswers"`
	WrongAnswers   int              `json:"wrongAnswers"`
	TimeSpent      int              `json:"timeSpent"`
	Score          int              `json:"score"`
	Questions      []QuestionResult `json:"questions"`
}

// GetExamResults 交卷后的逐题回顾，attemptID 为空时取最近一次
func (s *StatsService) GetExamResults(userID uint, examID, attemptID string) (*ExamResults, error) {
	attempt, err := s.AttemptRepo.FindForResults(userID, examID, attemptID)
	if err == gorm.ErrRecordNotFound {
		return nil, util.ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	return buildExamResults(attempt), nil
}

// buildExamResults 逐题结果按试卷题序输出，与答题时看到的顺序一致
func buildExamResults(attempt *model.Attempt) *ExamResults {
	results := &ExamResults{
		ExamID:    attempt.ExamID,
		AttemptID: attempt.ID,
		TimeSpent: attempt.TimeSpent,
		Score:     attempt.Score,
	}

	answersByQuestion := make(map[string]*model.Answer, len(attempt.Answers))
	for i := range attempt.Answers {
		answer := &attempt.Answers[i]
		if answer.IsCorrect {
			results.CorrectAnswers++
		} else {
			results.WrongAnswers++
		}
		answersByQuestion[answer.QuestionID] = answer
	}

	if attempt.Exam == nil {
		return results
	}

	results.ExamTitle = attempt.Exam.Title
	results.TotalQuestions = len(attempt.Exam.Questions)

	questions := make([]model.Question, len(attempt.Exam.Questions))
	copy(questions, attempt.Exam.Questions)
	sort.Slice(questions, func(i, j int) bool {
		return questions[i].Order < questions[j].Order
	})

	for _, q := range questions {
		result := QuestionResult{
			ID:            q.ID,
			Statement:     q.Statement,
			Options:       q.OptionList(),
			CorrectAnswer: q.CorrectAnswer,
		}
		if answer, ok := answersByQuestion[q.ID]; ok {
			result.UserAnswer = answer.Selected
			result.IsCorrect = answer.IsCorrect
		}
		results.Questions = append(results.Questions, result)
	}

	return results
}
