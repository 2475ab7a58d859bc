package learning

import (
	"context"
	"fmt"
	"lms/models"
	"lms/models/course"
	"time"

	"gorm.io/gorm"
)

type gradeInput struct {
	Feedback string `json:"feedback" validate:"max=5000"`
}

// GradeResult reports the state of the parent attempt after a grade
type GradeResult struct {
	AnswerID          uint  `json:"answer_id"`
	AttemptID         uint  `json:"attempt_id"`
	RemainingUngraded int64 `json:"remaining_ungraded"`
	AttemptScore      *int  `json:"attempt_score"`
	AttemptPassed     *bool `json:"attempt_passed"`
	PointsAwarded     int   `json:"points_awarded"`
}

// PendingEssay is an essay answer waiting for a grader
type PendingEssay struct {
	AnswerID     uint      `json:"answer_id"`
	AttemptID    uint      `json:"attempt_id"`
	QuestionID   uint      `json:"question_id"`
	QuestionText string    `json:"question_text"`
	MaxPoints    int       `json:"max_points"`
	EssayText    *string   `json:"essay_text"`
	SubmittedAt  time.Time `json:"submitted_at"`
}

// GradeEssay scores one essay answer. Once no answer of the attempt is left
// ungraded the attempt score is re-derived from every answer; re-grading a
// finalized attempt derives it again.
func (s *Service) GradeEssay(ctx context.Context, caller *Caller, answerID uint, score int, feedback string) (*GradeResult, error) {
	if err := requireCapability(caller, models.CapGradeEssays); err != nil {
		return nil, err
	}
	if err := validateStruct(gradeInput{Feedback: feedback}); err != nil {
		return nil, err
	}

	var (
		result  *GradeResult
		effects []sideEffect
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var answer course.AttemptAnswer
		if err := tx.First(&answer, answerID).Error; err != nil {
			return notFound(err, "answer")
		}
		var question course.Question
		if err := tx.Unscoped().First(&question, answer.QuestionID).Error; err != nil {
			return notFound(err, "question")
		}
		if question.Type != course.QuestionEssay {
			return invalidField("answer_id", "is not an essay answer")
		}
		if score < 0 || score > question.Points {
			return fmt.Errorf("%w: score must be between 0 and %d", ErrOutOfRange, question.Points)
		}

		gradedAt := s.now()
		if err := tx.Model(&answer).Updates(map[string]any{
			"score":     score,
			"feedback":  feedback,
			"graded_by": caller.UserID,
			"graded_at": gradedAt,
		}).Error; err != nil {
			return fmt.Errorf("save grade: %w", err)
		}

		var attempt course.QuizAttempt
		if err := tx.First(&attempt, answer.AttemptID).Error; err != nil {
			return notFound(err, "attempt")
		}
		var enrollment course.Enrollment
		if err := tx.Select("id", "user_id").First(&enrollment, attempt.EnrollmentID).Error; err != nil {
			return notFound(err, "enrollment")
		}
		var quiz course.Quiz
		if err := tx.Unscoped().First(&quiz, attempt.QuizID).Error; err != nil {
			return notFound(err, "quiz")
		}

		result = &GradeResult{AnswerID: answer.ID, AttemptID: attempt.ID}
		if err := tx.Model(&course.AttemptAnswer{}).
			Where("attempt_id = ? AND score IS NULL", attempt.ID).
			Count(&result.RemainingUngraded).Error; err != nil {
			return fmt.Errorf("count ungraded answers: %w", err)
		}

		effects = append(effects, s.notify(NotificationPayload{
			UserID:    enrollment.UserID,
			Type:      NotifyEssayGraded,
			Title:     "Essay graded",
			Message:   fmt.Sprintf("Your essay in %s was graded: %d/%d.", quiz.Title, score, question.Points),
			ActionURL: fmt.Sprintf("/attempts/%d/result", attempt.ID),
			Metadata:  map[string]any{"attempt_id": attempt.ID, "answer_id": answer.ID},
		}))
		if result.RemainingUngraded > 0 {
			return nil
		}

		earned, total, err := tallyAttempt(tx, attempt.ID)
		if err != nil {
			return err
		}
		finalScore := percentage(earned, total)
		passed := finalScore >= quiz.PassingScore
		updates := map[string]any{"score": finalScore, "passed": passed}
		// points are paid once per attempt, whatever later re-grades do
		rewarded := passed && finalScore > 0 && attempt.RewardedAt == nil
		if rewarded {
			updates["rewarded_at"] = gradedAt
		}
		if err := tx.Model(&attempt).Updates(updates).Error; err != nil {
			return fmt.Errorf("update attempt score: %w", err)
		}
		result.AttemptScore = &finalScore
		result.AttemptPassed = &passed

		if rewarded {
			result.PointsAwarded = quizReward(finalScore)
			effects = append(effects, s.awardPoints(enrollment.UserID, result.PointsAwarded,
				fmt.Sprintf("Essay graded, passed quiz: %s (score %d)", quiz.Title, finalScore)))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, effects)
	return result, nil
}

// tallyAttempt sums question points and awarded scores over every answer row
func tallyAttempt(tx *gorm.DB, attemptID uint) (earned, total int64, err error) {
	var answers []course.AttemptAnswer
	if err := tx.Where("attempt_id = ?", attemptID).Find(&answers).Error; err != nil {
		return 0, 0, fmt.Errorf("load answers: %w", err)
	}
	questions, err := questionsByID(tx, answers)
	if err != nil {
		return 0, 0, err
	}
	for _, a := range answers {
		q, ok := questions[a.QuestionID]
		if !ok {
			continue
		}
		total += int64(q.Points)
		if a.Score != nil {
			earned += int64(*a.Score)
		}
	}
	return earned, total, nil
}

// PendingEssays lists ungraded essay answers of submitted attempts for a quiz,
// oldest submission first
func (s *Service) PendingEssays(ctx context.Context, caller *Caller, quizID uint) ([]PendingEssay, error) {
	if err := requireCapability(caller, models.CapGradeEssays); err != nil {
		return nil, err
	}
	var out []PendingEssay
	err := s.db.WithContext(ctx).
		Table("attempt_answers").
		Select(`attempt_answers.id AS answer_id, attempt_answers.attempt_id, attempt_answers.question_id,
			questions.text AS question_text, questions.points AS max_points,
			attempt_answers.essay_text, quiz_attempts.submitted_at`).
		Joins("JOIN quiz_attempts ON quiz_attempts.id = attempt_answers.attempt_id").
		Joins("JOIN questions ON questions.id = attempt_answers.question_id").
		Where("quiz_attempts.quiz_id = ? AND quiz_attempts.submitted_at IS NOT NULL", quizID).
		Where("questions.type = ? AND attempt_answers.score IS NULL", course.QuestionEssay).
		Order("quiz_attempts.submitted_at asc, attempt_answers.id asc").
		Scan(&out).Error
	if err != nil {
		return nil, fmt.Errorf("list pending essays: %w", err)
	}
	return out, nil
}
