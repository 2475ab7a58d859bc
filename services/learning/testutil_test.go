package learning

import (
	"context"
	"errors"
	"fmt"
	"lms/database"
	"lms/models"
	"lms/models/course"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type pointAward struct {
	UserID uint
	Amount int
	Reason string
}

// recorder captures every hook invocation
type recorder struct {
	mu         sync.Mutex
	points     []pointAward
	notes      []NotificationPayload
	emails     []EmailPayload
	failPoints error
}

func (r *recorder) AwardPoints(_ context.Context, userID uint, amount int, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failPoints != nil {
		return r.failPoints
	}
	r.points = append(r.points, pointAward{UserID: userID, Amount: amount, Reason: reason})
	return nil
}

func (r *recorder) CreateNotification(_ context.Context, n NotificationPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
	return nil
}

func (r *recorder) SendEmail(_ context.Context, e EmailPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails = append(r.emails, e)
	return nil
}

func (r *recorder) notesOfType(kind string) []NotificationPayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []NotificationPayload
	for _, n := range r.notes {
		if n.Type == kind {
			out = append(out, n)
		}
	}
	return out
}

type testEnv struct {
	t     *testing.T
	db    *gorm.DB
	svc   *Service
	hooks *recorder
	clock time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))

	env := &testEnv{
		t:     t,
		db:    db,
		hooks: &recorder{},
		clock: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
	}
	env.svc = NewService(db, Hooks{Points: env.hooks, Notifier: env.hooks, Mailer: env.hooks}, Options{
		ExpiryGrace: time.Minute,
		BaseURL:     "https://learn.test",
	})
	env.svc.now = func() time.Time { return env.clock }
	return env
}

func (e *testEnv) advance(d time.Duration) { e.clock = e.clock.Add(d) }

func (e *testEnv) user(name string, role models.Role) *Caller {
	e.t.Helper()
	u := models.User{Name: name, Email: strings.ToLower(name) + "@example.com", Role: role}
	require.NoError(e.t, e.db.Create(&u).Error)
	return &Caller{UserID: u.ID, Role: u.Role}
}

func (e *testEnv) student(name string) *Caller { return e.user(name, models.RoleStudent) }

// course creates a published course with n lessons in a single module
func (e *testEnv) course(title string, lessons int) (course.Course, []course.Lesson) {
	e.t.Helper()
	c := course.Course{Title: title, IsPublished: true}
	require.NoError(e.t, e.db.Create(&c).Error)
	m := course.Module{CourseID: c.ID, Title: title + " module"}
	require.NoError(e.t, e.db.Create(&m).Error)

	out := make([]course.Lesson, 0, lessons)
	for i := 0; i < lessons; i++ {
		l := course.Lesson{CourseID: c.ID, ModuleID: m.ID, Title: fmt.Sprintf("%s lesson %d", title, i+1), OrderIndex: i}
		require.NoError(e.t, e.db.Create(&l).Error)
		out = append(out, l)
	}
	return c, out
}

func (e *testEnv) enroll(caller *Caller, courseID uint) course.Enrollment {
	e.t.Helper()
	enrollment, err := e.svc.Enroll(context.Background(), caller, courseID)
	require.NoError(e.t, err)
	return *enrollment
}

// completeCourse completes every lesson and returns the final progress
func (e *testEnv) completeCourse(caller *Caller, courseID uint, lessons []course.Lesson) int {
	e.t.Helper()
	progress := 0
	for _, l := range lessons {
		var err error
		progress, err = e.svc.CompleteLesson(context.Background(), caller, courseID, l.ID)
		require.NoError(e.t, err)
	}
	return progress
}

// mcq is a multiple choice question whose first option is correct
func mcq(points int) course.Question {
	return course.Question{
		Type:   course.QuestionMultipleChoice,
		Text:   "Pick the right one",
		Points: points,
		Options: []course.QuestionOption{
			{OptionText: "right", IsCorrect: true, OrderIndex: 0},
			{OptionText: "wrong", OrderIndex: 1},
		},
	}
}

func essay(points int) course.Question {
	return course.Question{Type: course.QuestionEssay, Text: "Explain", Points: points}
}

func (e *testEnv) quiz(courseID uint, passing, maxAttempts int, questions ...course.Question) course.Quiz {
	e.t.Helper()
	for i := range questions {
		questions[i].OrderIndex = i
	}
	q := course.Quiz{
		CourseID:     courseID,
		Title:        "Checkpoint",
		PassingScore: passing,
		MaxAttempts:  maxAttempts,
		Questions:    questions,
	}
	require.NoError(e.t, e.db.Create(&q).Error)
	return q
}

func right(q course.Question) AnswerInput {
	id := q.Options[0].ID
	return AnswerInput{QuestionID: q.ID, OptionID: &id}
}

func wrong(q course.Question) AnswerInput {
	id := q.Options[1].ID
	return AnswerInput{QuestionID: q.ID, OptionID: &id}
}

func written(q course.Question, text string) AnswerInput {
	return AnswerInput{QuestionID: q.ID, EssayText: &text}
}

func (e *testEnv) answerFor(attemptID, questionID uint) course.AttemptAnswer {
	e.t.Helper()
	var a course.AttemptAnswer
	require.NoError(e.t, e.db.Where("attempt_id = ? AND question_id = ?", attemptID, questionID).First(&a).Error)
	return a
}

func (e *testEnv) enrollmentOf(caller *Caller, courseID uint) (course.Enrollment, bool) {
	var enrollment course.Enrollment
	err := e.db.Where("user_id = ? AND course_id = ?", caller.UserID, courseID).First(&enrollment).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return enrollment, false
	}
	require.NoError(e.t, err)
	return enrollment, true
}
