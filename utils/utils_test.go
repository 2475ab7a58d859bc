package utils

import (
	"context"
	"errors"
	"lms/config"
	"lms/services/learning"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeReconciler struct {
	calls int
	err   error
}

func (f *fakeReconciler) ReconcilePaths(context.Context) (int, error) {
	f.calls++
	return 3, f.err
}

func TestMailerWithoutAPIKeyOnlyLogs(t *testing.T) {
	m := NewMailer(&config.Config{EmailSender: "noreply@learn.test", EmailSenderName: "Learn"})
	assert.Nil(t, m.client)

	err := m.SendEmail(context.Background(), learning.EmailPayload{
		To:      "ana@example.com",
		Subject: "Course completed: Go Basics",
		Body:    "<p>Well done</p>",
	})
	assert.NoError(t, err)
}

func TestEmailTemplate(t *testing.T) {
	html := getEmailTemplate("Learn", "Course completed", "<p>Well done</p>")
	assert.Contains(t, html, "<h1>Learn</h1>")
	assert.Contains(t, html, "<h2>Course completed</h2>")
	assert.Contains(t, html, "<p>Well done</p>")
}

func TestProgressScheduler(t *testing.T) {
	_, err := InitializeProgressScheduler(&fakeReconciler{}, "not a cron spec")
	assert.Error(t, err)

	r := &fakeReconciler{}
	c, err := InitializeProgressScheduler(r, "@every 1h")
	require.NoError(t, err)
	defer c.Stop()
	assert.Len(t, c.Entries(), 1)

	RunPathReconciliation(r)
	r.err = errors.New("database gone")
	RunPathReconciliation(r)
	assert.Equal(t, 2, r.calls)
}
