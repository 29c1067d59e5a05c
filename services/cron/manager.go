package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sahilchouksey/devcamper-api/model"
	"github.com/sahilchouksey/devcamper-api/utils/auth"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Job is one unit of scheduled maintenance. The returned message is stored
// in the job log.
type Job func(ctx context.Context) (string, error)

// CronManager manages all scheduled cron jobs
type CronManager struct {
	cron      *cron.Cron
	db        *gorm.DB
	blacklist *auth.BlacklistService
	logger    *zap.Logger
	timeout   time.Duration
}

// NewCronManager creates a new cron manager
func NewCronManager(db *gorm.DB, blacklist *auth.BlacklistService, logger *zap.Logger) *CronManager {
	// Create cron with seconds precision
	c := cron.New(cron.WithSeconds(), cron.WithChain(cron.Recover(cronLogger{logger})))

	return &CronManager{
		cron:      c,
		db:        db,
		blacklist: blacklist,
		logger:    logger,
		timeout:   5 * time.Minute,
	}
}

// Start starts all cron jobs
func (m *CronManager) Start() error {
	if err := m.registerJobs(); err != nil {
		return err
	}

	m.cron.Start()
	m.logger.Info("cron jobs started", zap.Int("jobs", len(m.cron.Entries())))
	return nil
}

// Stop stops all cron jobs and waits for running ones
func (m *CronManager) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	m.logger.Info("cron jobs stopped")
}

// registerJobs registers all cron jobs with their schedules
func (m *CronManager) registerJobs() error {
	jobs := []struct {
		spec string
		name string
		job  Job
	}{
		// Every hour: drop revoked tokens past their expiry
		{"0 0 * * * *", "cleanup_expired_tokens", m.CleanupExpiredTokens},
		// Every 30 minutes: drop used or expired reset tokens
		{"0 */30 * * * *", "cleanup_reset_tokens", m.CleanupResetTokens},
		// Daily at 3 AM: recompute bootcamp averages
		{"0 0 3 * * *", "recompute_averages", m.RecomputeAverages},
		// Daily at 4 AM: drop job logs older than 30 days
		{"0 0 4 * * *", "cleanup_cron_logs", m.CleanupCronLogs},
	}

	for _, j := range jobs {
		name, job := j.name, j.job
		if _, err := m.cron.AddFunc(j.spec, func() { m.Run(name, job) }); err != nil {
			return err
		}
	}
	return nil
}

// Run executes job with a timeout and records it in cron_job_logs
func (m *CronManager) Run(name string, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
	defer cancel()

	started := time.Now()
	entry := model.CronJobLog{
		JobName:   name,
		Status:    model.CronStatusRunning,
		StartedAt: started,
	}
	if err := m.db.WithContext(ctx).Create(&entry).Error; err != nil {
		m.logger.Error("create cron log", zap.String("job", name), zap.Error(err))
	}

	message, err := job(ctx)

	completed := time.Now()
	updates := map[string]interface{}{
		"status":       model.CronStatusCompleted,
		"completed_at": completed,
		"duration":     completed.Sub(started).Milliseconds(),
		"message":      message,
	}
	if err != nil {
		updates["status"] = model.CronStatusFailed
		updates["error_msg"] = err.Error()
		m.logger.Error("cron job failed", zap.String("job", name), zap.Error(err))
	} else {
		m.logger.Info("cron job completed", zap.String("job", name), zap.String("message", message))
	}

	if entry.ID != 0 {
		if err := m.db.WithContext(ctx).Model(&entry).Updates(updates).Error; err != nil {
			m.logger.Error("update cron log", zap.String("job", name), zap.Error(err))
		}
	}
}

// cronLogger adapts zap to cron.Logger
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Infow(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
