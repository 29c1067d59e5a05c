package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sahilchouksey/devcamper-api/model"
	"github.com/sahilchouksey/devcamper-api/utils/auth"
	"github.com/sahilchouksey/devcamper-api/utils/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newManager(t *testing.T) (*CronManager, *auth.BlacklistService) {
	db := testutil.NewTestDB(t)
	blacklist := auth.NewBlacklistService(db)
	return NewCronManager(db, blacklist, zap.NewNop()), blacklist
}

func TestRunRecordsLog(t *testing.T) {
	m, _ := newManager(t)

	m.Run("ok_job", func(ctx context.Context) (string, error) { return "done", nil })
	m.Run("bad_job", func(ctx context.Context) (string, error) { return "", errors.New("boom") })

	var ok model.CronJobLog
	require.NoError(t, m.db.Where("job_name = ?", "ok_job").First(&ok).Error)
	assert.Equal(t, model.CronStatusCompleted, ok.Status)
	assert.Equal(t, "done", ok.Message)
	assert.NotNil(t, ok.CompletedAt)

	var bad model.CronJobLog
	require.NoError(t, m.db.Where("job_name = ?", "bad_job").First(&bad).Error)
	assert.Equal(t, model.CronStatusFailed, bad.Status)
	assert.Equal(t, "boom", bad.ErrorMsg)
}

func TestCleanupJobs(t *testing.T) {
	m, blacklist := newManager(t)
	ctx := context.Background()
	user := testutil.CreateUser(t, m.db, "john", model.RoleUser)

	require.NoError(t, blacklist.RevokeToken(ctx, "old", user.ID, time.Now().Add(-time.Minute), "logout"))
	require.NoError(t, blacklist.RevokeToken(ctx, "new", user.ID, time.Now().Add(time.Hour), "logout"))

	message, err := m.CleanupExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Removed 1 expired blacklist entries", message)

	used := time.Now()
	require.NoError(t, m.db.Create(&model.PasswordResetToken{UserID: user.ID, TokenHash: "a", ExpiresAt: time.Now().Add(-time.Minute)}).Error)
	require.NoError(t, m.db.Create(&model.PasswordResetToken{UserID: user.ID, TokenHash: "b", ExpiresAt: time.Now().Add(time.Hour), UsedAt: &used}).Error)
	require.NoError(t, m.db.Create(&model.PasswordResetToken{UserID: user.ID, TokenHash: "c", ExpiresAt: time.Now().Add(time.Hour)}).Error)

	message, err = m.CleanupResetTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Removed 2 reset tokens", message)
}

func TestRecomputeAverages(t *testing.T) {
	m, _ := newManager(t)
	owner := testutil.CreateUser(t, m.db, "publisher", model.RolePublisher)
	bootcamp := testutil.CreateBootcamp(t, m.db, owner.ID, "Devworks", 42.35, -71.1)
	testutil.CreateCourse(t, m.db, bootcamp, "A", 8000)
	testutil.CreateCourse(t, m.db, bootcamp, "B", 10001)

	require.NoError(t, m.db.Model(bootcamp).UpdateColumn("average_cost", nil).Error)

	message, err := m.RecomputeAverages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Recomputed averages of 1 bootcamps", message)

	var reloaded model.Bootcamp
	require.NoError(t, m.db.First(&reloaded, bootcamp.ID).Error)
	require.NotNil(t, reloaded.AverageCost)
	assert.Equal(t, 9010.0, *reloaded.AverageCost)
	assert.Nil(t, reloaded.AverageRating)
}

func TestRegisterJobs(t *testing.T) {
	m, _ := newManager(t)
	require.NoError(t, m.registerJobs())
	assert.Len(t, m.cron.Entries(), 4)
}
