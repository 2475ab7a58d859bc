package course

import (
	"time"

	"gorm.io/gorm"
)

// QuestionType distinguishes auto-scored questions from graded ones
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "MULTIPLE_CHOICE"
	QuestionEssay          QuestionType = "ESSAY"
)

// Quiz is an assessment attached to a course
type Quiz struct {
	gorm.Model
	CourseID         uint   `json:"course_id" gorm:"index;not null"`
	Title            string `json:"title"`
	PassingScore     int    `json:"passing_score" gorm:"not null"`
	Duration         *int   `json:"duration"` // minutes, nil = unlimited
	MaxAttempts      int    `json:"max_attempts" gorm:"not null"`
	ShuffleQuestions bool   `json:"shuffle_questions" gorm:"not null"`
	ShowResult       bool   `json:"show_result" gorm:"not null"`

	Questions []Question `json:"questions,omitempty" gorm:"foreignKey:QuizID"`
}

// Question belongs to a quiz
type Question struct {
	gorm.Model
	QuizID     uint         `json:"quiz_id" gorm:"index;not null"`
	Type       QuestionType `json:"type" gorm:"type:varchar(20);not null"`
	Text       string       `json:"text" gorm:"type:text"`
	Points     int          `json:"points" gorm:"not null"` // 1-100
	OrderIndex int          `json:"order_index" gorm:"default:0"`

	Options []QuestionOption `json:"options,omitempty" gorm:"foreignKey:QuestionID"`
}

// QuestionOption represents an option for a multiple choice question
type QuestionOption struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct" gorm:"not null"`
	OrderIndex int    `json:"order_index" gorm:"default:0"`
}

// QuizAttempt is one sitting of a quiz. Score and Passed stay nil while any
// answer is waiting for a grader.
type QuizAttempt struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	QuizID       uint       `json:"quiz_id" gorm:"index;not null"`
	EnrollmentID uint       `json:"enrollment_id" gorm:"index;not null"`
	StartedAt    time.Time  `json:"started_at" gorm:"not null"`
	SubmittedAt  *time.Time `json:"submitted_at"`
	Score        *int       `json:"score"`
	Passed       *bool      `json:"passed"`
	RewardedAt   *time.Time `json:"rewarded_at"` // set once quiz points are paid
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	Answers []AttemptAnswer `json:"answers,omitempty" gorm:"foreignKey:AttemptID"`
}

// AttemptAnswer is the learner's response to one question of an attempt
type AttemptAnswer struct {
	ID         uint       `json:"id" gorm:"primaryKey"`
	AttemptID  uint       `json:"attempt_id" gorm:"not null;uniqueIndex:idx_answer_attempt_question"`
	QuestionID uint       `json:"question_id" gorm:"not null;uniqueIndex:idx_answer_attempt_question"`
	OptionID   *uint      `json:"option_id"`
	EssayText  *string    `json:"essay_text" gorm:"type:text"`
	Score      *int       `json:"score"`
	Feedback   *string    `json:"feedback" gorm:"type:text"`
	GradedBy   *uint      `json:"graded_by"`
	GradedAt   *time.Time `json:"graded_at"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
