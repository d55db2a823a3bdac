package util

import (
	"errors"
	"fmt"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrEmailRegistered   = errors.New("该邮箱已被注册")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrExamNotFound      = errors.New("exam not found")
	ErrAttemptNotFound   = errors.New("attempt not found")
	ErrSessionNotFound   = errors.New("session not found")
	ErrSessionFinished   = errors.New("session already finished")
	ErrQuestionNotInExam = errors.New("question does not belong to this exam")
)

// ValidationError 提交的试卷/题目数据不合法
// QuestionIndex 为 -1 时表示试卷级字段错误
type ValidationError struct {
	Field         string
	QuestionIndex int
	Message       string
}

func (e *ValidationError) Error() string {
	if e.QuestionIndex >= 0 {
		return fmt.Sprintf("question %d: %s: %s", e.QuestionIndex+1, e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, QuestionIndex: -1, Message: message}
}

func NewQuestionValidationError(index int, field, message string) *ValidationError {
	return &ValidationError{Field: field, QuestionIndex: index, Message: message}
}

// IsValidationError 判断是否为输入校验错误
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
