package rewards

import (
	"context"
	"lms/database"
	"lms/models"
	"strings"
	"testing"
	"time"

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

func createUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{Name: "Learner", Email: email}
	require.NoError(t, db.Create(&u).Error)
	return u
}

func TestAwardPoints(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()
	u := createUser(t, db, "ana@example.com")

	require.NoError(t, ledger.AwardPoints(ctx, u.ID, 100, "Completed course: Go Basics"))
	require.NoError(t, ledger.AwardPoints(ctx, u.ID, 25, "Passed quiz: Checkpoint (score 50)"))
	require.NoError(t, ledger.AwardPoints(ctx, u.ID, 0, "nothing"))

	var reloaded models.User
	require.NoError(t, db.First(&reloaded, u.ID).Error)
	assert.Equal(t, 125, reloaded.Points)

	var entries []models.PointTransaction
	require.NoError(t, db.Where("user_id = ?", u.ID).Order("id").Find(&entries).Error)
	require.Len(t, entries, 2)
	assert.Equal(t, 0, entries[0].BalanceBefore)
	assert.Equal(t, 100, entries[0].BalanceAfter)
	assert.Equal(t, 100, entries[1].BalanceBefore)
	assert.Equal(t, 125, entries[1].BalanceAfter)
	assert.Equal(t, "Passed quiz: Checkpoint (score 50)", entries[1].Reason)
}

func TestAwardPointsUnknownUser(t *testing.T) {
	db := newTestDB(t)
	err := NewLedger(db).AwardPoints(context.Background(), 404, 10, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)

	var n int64
	require.NoError(t, db.Model(&models.PointTransaction{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestSummaryAndHistory(t *testing.T) {
	db := newTestDB(t)
	ledger := NewLedger(db)
	ctx := context.Background()
	u := createUser(t, db, "ana@example.com")

	setClock := func(month time.Month, day int) {
		ledger.clock = func() time.Time { return time.Date(2026, month, day, 10, 0, 0, 0, time.UTC) }
	}
	setClock(time.February, 20)
	require.NoError(t, ledger.AwardPoints(ctx, u.ID, 10, "february"))
	setClock(time.March, 10)
	require.NoError(t, ledger.AwardPoints(ctx, u.ID, 20, "last week"))
	// Wednesday; the week began on Sunday the 15th
	setClock(time.March, 18)
	require.NoError(t, ledger.AwardPoints(ctx, u.ID, 30, "today"))

	summary, err := ledger.Summary(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, &Summary{Balance: 60, ThisWeek: 30, ThisMonth: 50, TotalAward: 3}, summary)

	page, total, err := ledger.History(ctx, u.ID, 1, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, page, 2)
	assert.Equal(t, "today", page[0].Reason)
	assert.Equal(t, "last week", page[1].Reason)

	rest, _, err := ledger.History(ctx, u.ID, 2, 2)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "february", rest[0].Reason)

	_, err = ledger.Summary(ctx, 404)
	assert.ErrorIs(t, err, ErrUserNotFound)
}
