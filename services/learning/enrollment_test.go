package learning

import (
	"context"
	"lms/models/course"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.student("Ana")
	c, _ := env.course("Go Basics", 2)

	first, err := env.svc.Enroll(ctx, ana, c.ID)
	require.NoError(t, err)
	assert.Equal(t, course.EnrollmentEnrolled, first.Status)
	assert.Zero(t, first.Progress)

	again, err := env.svc.Enroll(ctx, ana, c.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	list, err := env.svc.ListEnrollments(ctx, ana)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEnrollRequiresPublishedCourse(t *testing.T) {
	env := newTestEnv(t)
	ana := env.student("Ana")
	draft := course.Course{Title: "Draft"}
	require.NoError(t, env.db.Create(&draft).Error)

	_, err := env.svc.Enroll(context.Background(), ana, draft.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = env.svc.Enroll(context.Background(), nil, draft.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestProgressReportsCompletedLessons(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.student("Ana")
	c, lessons := env.course("Go Basics", 3)

	_, err := env.svc.Progress(ctx, ana, c.ID)
	assert.ErrorIs(t, err, ErrNotEnrolled)

	env.enroll(ana, c.ID)
	_, err = env.svc.CompleteLesson(ctx, ana, c.ID, lessons[1].ID)
	require.NoError(t, err)

	progress, err := env.svc.Progress(ctx, ana, c.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, progress.TotalLessons)
	assert.Equal(t, []uint{lessons[1].ID}, progress.CompletedLessonIDs)
	assert.Equal(t, 33, progress.Enrollment.Progress)
}

func TestUnenrollRemovesLearnerState(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.student("Ana")
	c, lessons := env.course("Go Basics", 2)
	enrollment := env.enroll(ana, c.ID)
	quiz := env.quiz(c.ID, 50, 1, mcq(10))

	_, err := env.svc.CompleteLesson(ctx, ana, c.ID, lessons[0].ID)
	require.NoError(t, err)
	attempt, err := env.svc.StartAttempt(ctx, ana, quiz.ID, c.ID)
	require.NoError(t, err)
	_, err = env.svc.SubmitAttempt(ctx, ana, attempt, []AnswerInput{right(quiz.Questions[0])})
	require.NoError(t, err)

	require.NoError(t, env.svc.Unenroll(ctx, ana, c.ID))

	for _, model := range []any{&course.LessonCompletion{}, &course.QuizAttempt{}} {
		var n int64
		require.NoError(t, env.db.Model(model).Where("enrollment_id = ?", enrollment.ID).Count(&n).Error)
		assert.Zero(t, n)
	}
	var answers int64
	require.NoError(t, env.db.Model(&course.AttemptAnswer{}).Where("attempt_id = ?", attempt).Count(&answers).Error)
	assert.Zero(t, answers)

	assert.ErrorIs(t, env.svc.Unenroll(ctx, ana, c.ID), ErrNotEnrolled)

	// a fresh enrollment gets a fresh attempt budget
	env.enroll(ana, c.ID)
	_, err = env.svc.StartAttempt(ctx, ana, quiz.ID, c.ID)
	assert.NoError(t, err)
}

func TestEnrollPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	ana := env.student("Ana")
	p, steps := env.path("Backend Track", "Go", "SQL")

	first, err := env.svc.EnrollPath(ctx, ana, p.ID)
	require.NoError(t, err)
	again, err := env.svc.EnrollPath(ctx, ana, p.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Nil(t, first.CompletedAt)

	_, ok := env.enrollmentOf(ana, steps[0].course.ID)
	assert.True(t, ok)

	empty := course.LearningPath{Title: "Empty"}
	require.NoError(t, env.db.Create(&empty).Error)
	_, err = env.svc.EnrollPath(ctx, ana, empty.ID)
	assert.NoError(t, err)

	_, err = env.svc.EnrollPath(ctx, ana, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}
