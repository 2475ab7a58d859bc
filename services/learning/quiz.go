package learning

import (
	"context"
	"errors"
	"fmt"
	"lms/models/course"
	"math/rand"
	"time"

	"gorm.io/gorm"
)

// AnswerInput is one submitted answer. OptionID is used for multiple choice
// questions and EssayText for essays.
type AnswerInput struct {
	QuestionID uint    `json:"question_id" validate:"required"`
	OptionID   *uint   `json:"option_id"`
	EssayText  *string `json:"essay_text" validate:"omitempty,max=20000"`
}

type submission struct {
	Answers []AnswerInput `json:"answers" validate:"dive"`
}

// SubmitResult reports the outcome of a submission. Score and Passed are nil
// while essay answers wait for grading.
type SubmitResult struct {
	AttemptID      uint  `json:"attempt_id"`
	Score          *int  `json:"score"`
	Passed         *bool `json:"passed"`
	PendingGrading bool  `json:"pending_grading"`
	PointsAwarded  int   `json:"points_awarded"`
}

// AttemptSheet is what a learner sees while taking a quiz
type AttemptSheet struct {
	AttemptID uint            `json:"attempt_id"`
	QuizID    uint            `json:"quiz_id"`
	Title     string          `json:"title"`
	StartedAt time.Time       `json:"started_at"`
	ExpiresAt *time.Time      `json:"expires_at"`
	Questions []SheetQuestion `json:"questions"`
}

type SheetQuestion struct {
	ID      uint                `json:"id"`
	Type    course.QuestionType `json:"type"`
	Text    string              `json:"text"`
	Points  int                 `json:"points"`
	Options []SheetOption       `json:"options,omitempty"`
}

type SheetOption struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// AttemptResult is the full detail of an attempt for its owner
type AttemptResult struct {
	AttemptID    uint           `json:"attempt_id"`
	QuizID       uint           `json:"quiz_id"`
	QuizTitle    string         `json:"quiz_title"`
	PassingScore int            `json:"passing_score"`
	StartedAt    time.Time      `json:"started_at"`
	SubmittedAt  *time.Time     `json:"submitted_at"`
	Score        *int           `json:"score"`
	Passed       *bool          `json:"passed"`
	Answers      []AnswerResult `json:"answers"`
}

// AnswerResult describes one answer. CorrectOptionID and IsCorrect are only
// filled when the quiz reveals results.
type AnswerResult struct {
	QuestionID      uint                `json:"question_id"`
	QuestionText    string              `json:"question_text"`
	Type            course.QuestionType `json:"type"`
	Points          int                 `json:"points"`
	OptionID        *uint               `json:"option_id"`
	EssayText       *string             `json:"essay_text"`
	Score           *int                `json:"score"`
	Feedback        *string             `json:"feedback"`
	CorrectOptionID *uint               `json:"correct_option_id,omitempty"`
	IsCorrect       *bool               `json:"is_correct,omitempty"`
}

// StartAttempt opens a new attempt for the caller. Open attempts are not
// limited; only the total number of attempts is.
func (s *Service) StartAttempt(ctx context.Context, caller *Caller, quizID, courseID uint) (uint, error) {
	if err := requireCaller(caller); err != nil {
		return 0, err
	}

	var attemptID uint
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		enrollment, err := findEnrollment(tx, caller.UserID, courseID)
		if err != nil {
			return err
		}

		var quiz course.Quiz
		if err := tx.Where("id = ? AND course_id = ?", quizID, courseID).First(&quiz).Error; err != nil {
			return notFound(err, "quiz")
		}

		var used int64
		if err := tx.Model(&course.QuizAttempt{}).
			Where("quiz_id = ? AND enrollment_id = ?", quiz.ID, enrollment.ID).
			Count(&used).Error; err != nil {
			return fmt.Errorf("count attempts: %w", err)
		}
		if used >= int64(max(quiz.MaxAttempts, 1)) {
			return ErrAttemptLimitReached
		}

		attempt := course.QuizAttempt{
			QuizID:       quiz.ID,
			EnrollmentID: enrollment.ID,
			StartedAt:    s.now(),
		}
		if err := tx.Create(&attempt).Error; err != nil {
			return fmt.Errorf("create attempt: %w", err)
		}
		attemptID = attempt.ID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return attemptID, nil
}

// AttemptQuestions returns the questions of an owned attempt without
// revealing correct options. Shuffled quizzes keep a stable order per attempt.
func (s *Service) AttemptQuestions(ctx context.Context, caller *Caller, attemptID uint) (*AttemptSheet, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	attempt, err := loadOwnedAttempt(db, caller, attemptID)
	if err != nil {
		return nil, err
	}
	quiz, err := loadQuiz(db, attempt.QuizID)
	if err != nil {
		return nil, err
	}

	sheet := &AttemptSheet{
		AttemptID: attempt.ID,
		QuizID:    quiz.ID,
		Title:     quiz.Title,
		StartedAt: attempt.StartedAt,
		ExpiresAt: expiresAt(quiz, attempt),
		Questions: make([]SheetQuestion, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		sq := SheetQuestion{ID: q.ID, Type: q.Type, Text: q.Text, Points: q.Points}
		for _, o := range q.Options {
			sq.Options = append(sq.Options, SheetOption{ID: o.ID, Text: o.OptionText})
		}
		sheet.Questions = append(sheet.Questions, sq)
	}
	if quiz.ShuffleQuestions {
		rng := rand.New(rand.NewSource(int64(attempt.ID)))
		rng.Shuffle(len(sheet.Questions), func(i, j int) {
			sheet.Questions[i], sheet.Questions[j] = sheet.Questions[j], sheet.Questions[i]
		})
	}
	return sheet, nil
}

// SubmitAttempt scores an attempt. Multiple choice answers are scored at once;
// essays are left for a grader, in which case the attempt stays unscored.
// Answers for questions no longer in the quiz are dropped, and every current
// question gets an answer row so later recalculation sees the full quiz.
func (s *Service) SubmitAttempt(ctx context.Context, caller *Caller, attemptID uint, answers []AnswerInput) (*SubmitResult, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	if err := validateStruct(submission{Answers: answers}); err != nil {
		return nil, err
	}

	var (
		result  *SubmitResult
		effects []sideEffect
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		attempt, err := loadOwnedAttempt(tx, caller, attemptID)
		if err != nil {
			return err
		}
		if attempt.SubmittedAt != nil {
			return ErrAlreadySubmitted
		}

		quiz, err := loadQuiz(tx, attempt.QuizID)
		if err != nil {
			return err
		}
		submittedAt := s.now()
		if s.opts.EnforceQuizExpiry {
			if deadline := expiresAt(quiz, attempt); deadline != nil && submittedAt.After(deadline.Add(s.opts.ExpiryGrace)) {
				return ErrAttemptExpired
			}
		}

		given := make(map[uint]AnswerInput, len(answers))
		for _, a := range answers {
			if _, seen := given[a.QuestionID]; !seen {
				given[a.QuestionID] = a
			}
		}

		rows := make([]course.AttemptAnswer, 0, len(quiz.Questions))
		var earned, total int64
		pending := false
		for _, q := range quiz.Questions {
			in := given[q.ID]
			row := course.AttemptAnswer{AttemptID: attempt.ID, QuestionID: q.ID}
			total += int64(q.Points)

			switch q.Type {
			case course.QuestionEssay:
				row.EssayText = in.EssayText
				pending = true
			default:
				row.OptionID = in.OptionID
				score, feedback := 0, feedbackWrong
				if correct := correctOption(q); correct != nil && in.OptionID != nil && *in.OptionID == *correct {
					score, feedback = q.Points, feedbackCorrect
				}
				row.Score = &score
				row.Feedback = &feedback
				earned += int64(score)
			}
			rows = append(rows, row)
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("save answers: %w", err)
			}
		}

		result = &SubmitResult{AttemptID: attempt.ID, PendingGrading: pending}
		updates := map[string]any{"submitted_at": submittedAt}
		if !pending {
			score := percentage(earned, total)
			passed := score >= quiz.PassingScore
			updates["score"] = score
			updates["passed"] = passed
			result.Score = &score
			result.Passed = &passed
			if passed && score > 0 {
				updates["rewarded_at"] = submittedAt
				result.PointsAwarded = quizReward(score)
				effects = append(effects, s.awardPoints(caller.UserID, result.PointsAwarded,
					fmt.Sprintf("Passed quiz: %s (score %d)", quiz.Title, score)))
			}
		}
		if err := tx.Model(attempt).Updates(updates).Error; err != nil {
			return fmt.Errorf("finalize attempt: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.dispatch(ctx, effects)
	return result, nil
}

// GetAttemptResult returns an attempt's detail to its owner. Attempts that do
// not exist and attempts owned by someone else are both ErrNotFound.
func (s *Service) GetAttemptResult(ctx context.Context, caller *Caller, attemptID uint) (*AttemptResult, error) {
	if err := requireCaller(caller); err != nil {
		return nil, err
	}
	db := s.db.WithContext(ctx)
	attempt, err := loadOwnedAttempt(db, caller, attemptID)
	if errors.Is(err, ErrAccessDenied) {
		return nil, fmt.Errorf("attempt %w", ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	var quiz course.Quiz
	if err := db.Unscoped().First(&quiz, attempt.QuizID).Error; err != nil {
		return nil, notFound(err, "quiz")
	}
	var answers []course.AttemptAnswer
	if err := db.Where("attempt_id = ?", attempt.ID).Order("id asc").Find(&answers).Error; err != nil {
		return nil, fmt.Errorf("load answers: %w", err)
	}
	questions, err := questionsByID(db, answers)
	if err != nil {
		return nil, err
	}

	reveal := quiz.ShowResult && attempt.SubmittedAt != nil
	result := &AttemptResult{
		AttemptID:    attempt.ID,
		QuizID:       quiz.ID,
		QuizTitle:    quiz.Title,
		PassingScore: quiz.PassingScore,
		StartedAt:    attempt.StartedAt,
		SubmittedAt:  attempt.SubmittedAt,
		Score:        attempt.Score,
		Passed:       attempt.Passed,
		Answers:      make([]AnswerResult, 0, len(answers)),
	}
	for _, a := range answers {
		q := questions[a.QuestionID]
		ar := AnswerResult{
			QuestionID:   a.QuestionID,
			QuestionText: q.Text,
			Type:         q.Type,
			Points:       q.Points,
			OptionID:     a.OptionID,
			EssayText:    a.EssayText,
			Score:        a.Score,
			Feedback:     a.Feedback,
		}
		if reveal && q.Type == course.QuestionMultipleChoice {
			ar.CorrectOptionID = correctOption(q)
			isCorrect := ar.CorrectOptionID != nil && a.OptionID != nil && *a.OptionID == *ar.CorrectOptionID
			ar.IsCorrect = &isCorrect
		}
		result.Answers = append(result.Answers, ar)
	}
	return result, nil
}

func loadOwnedAttempt(db *gorm.DB, caller *Caller, attemptID uint) (*course.QuizAttempt, error) {
	var attempt course.QuizAttempt
	if err := db.First(&attempt, attemptID).Error; err != nil {
		return nil, notFound(err, "attempt")
	}
	var enrollment course.Enrollment
	err := db.Select("id", "user_id").First(&enrollment, attempt.EnrollmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && enrollment.UserID != caller.UserID) {
		return nil, ErrAccessDenied
	}
	if err != nil {
		return nil, fmt.Errorf("load attempt enrollment: %w", err)
	}
	return &attempt, nil
}

// loadQuiz loads a quiz with its current questions and options in order
func loadQuiz(db *gorm.DB, quizID uint) (*course.Quiz, error) {
	var quiz course.Quiz
	err := db.
		Preload("Questions", func(db *gorm.DB) *gorm.DB { return db.Order("order_index asc, id asc") }).
		Preload("Questions.Options", func(db *gorm.DB) *gorm.DB { return db.Order("order_index asc, id asc") }).
		First(&quiz, quizID).Error
	if err != nil {
		return nil, notFound(err, "quiz")
	}
	return &quiz, nil
}

// questionsByID loads the questions behind a set of answers, including
// questions removed from the quiz after the attempt was submitted.
func questionsByID(db *gorm.DB, answers []course.AttemptAnswer) (map[uint]course.Question, error) {
	ids := make([]uint, 0, len(answers))
	for _, a := range answers {
		ids = append(ids, a.QuestionID)
	}
	out := make(map[uint]course.Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var questions []course.Question
	if err := db.Unscoped().Preload("Options").Where("id IN ?", ids).Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	for _, q := range questions {
		out[q.ID] = q
	}
	return out, nil
}

// correctOption returns the first option flagged correct
func correctOption(q course.Question) *uint {
	for _, o := range q.Options {
		if o.IsCorrect {
			id := o.ID
			return &id
		}
	}
	return nil
}

func expiresAt(quiz *course.Quiz, attempt *course.QuizAttempt) *time.Time {
	if quiz.Duration == nil || *quiz.Duration <= 0 {
		return nil
	}
	deadline := attempt.StartedAt.Add(time.Duration(*quiz.Duration) * time.Minute)
	return &deadline
}
