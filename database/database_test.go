package database

import (
	"lms/config"
	courseModels "lms/models/course"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "oracle"})
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}

func TestMigrateSQLite(t *testing.T) {
	db, err := Open(&config.Config{DBDriver: "sqlite", DBName: "file:migrate_test?mode=memory&cache=shared"})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []any{&courseModels.Enrollment{}, &courseModels.QuizAttempt{}, &courseModels.Certificate{}} {
		assert.True(t, db.Migrator().HasTable(table))
	}
	assert.True(t, db.Migrator().HasIndex(&courseModels.Enrollment{}, "idx_enrollment_user_course"))
	assert.True(t, db.Migrator().HasIndex(&courseModels.Certificate{}, "idx_certificate_user_path"))
}
