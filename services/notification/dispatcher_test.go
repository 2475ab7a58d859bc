package notification

import (
	"context"
	"encoding/json"
	"lms/database"
	"lms/models"
	"lms/services/learning"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestCreateNotificationStoresAndForwards(t *testing.T) {
	db := newTestDB(t)

	var (
		mu       sync.Mutex
		received []map[string]any
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		mu.Lock()
		received = append(received, body)
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	d := NewDispatcher(db, srv.URL)
	err := d.CreateNotification(context.Background(), learning.NotificationPayload{
		UserID:    7,
		Type:      learning.NotifyCourseCompleted,
		Title:     "Course completed",
		Message:   "You completed Go Basics.",
		ActionURL: "https://learn.test/certificates/abc",
		Metadata:  map[string]any{"course_id": 3},
	})
	require.NoError(t, err)

	var row models.Notification
	require.NoError(t, db.Where("user_id = ?", 7).First(&row).Error)
	assert.Equal(t, learning.NotifyCourseCompleted, row.Type)
	assert.False(t, row.IsRead)
	assert.JSONEq(t, `{"course_id":3}`, string(row.Metadata))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, received, 1)
	assert.EqualValues(t, row.ID, received[0]["id"])
	forwarded, ok := received[0]["notification"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Course completed", forwarded["title"])
}

func TestCreateNotificationWebhookRejects(t *testing.T) {
	db := newTestDB(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	err := NewDispatcher(db, srv.URL).CreateNotification(context.Background(), learning.NotificationPayload{
		UserID: 7,
		Type:   learning.NotifyEssayGraded,
		Title:  "Essay graded",
	})
	assert.ErrorContains(t, err, "webhook returned")

	var n int64
	require.NoError(t, db.Model(&models.Notification{}).Count(&n).Error)
	assert.EqualValues(t, 1, n, "the in-app notification is kept")
}

func TestListAndMarkRead(t *testing.T) {
	db := newTestDB(t)
	d := NewDispatcher(db, "")
	ctx := context.Background()

	for _, title := range []string{"one", "two", "three"} {
		require.NoError(t, d.CreateNotification(ctx, learning.NotificationPayload{UserID: 1, Type: learning.NotifyCourseUnlocked, Title: title}))
	}
	require.NoError(t, d.CreateNotification(ctx, learning.NotificationPayload{UserID: 2, Type: learning.NotifyCourseUnlocked, Title: "other"}))

	all, err := d.List(ctx, 1, false, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "three", all[0].Title)

	require.NoError(t, d.MarkRead(ctx, 1, all[0].ID))
	unread, err := d.List(ctx, 1, true, 10)
	require.NoError(t, err)
	assert.Len(t, unread, 2)

	assert.ErrorIs(t, d.MarkRead(ctx, 2, all[1].ID), ErrNotificationNotFound)
	assert.ErrorIs(t, d.MarkRead(ctx, 1, 9999), ErrNotificationNotFound)
}
