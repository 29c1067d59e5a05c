package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/sahilchouksey/devcamper-api/model"
)

// CleanupExpiredTokens removes blacklist entries whose token has expired anyway
func (m *CronManager) CleanupExpiredTokens(ctx context.Context) (string, error) {
	removed, err := m.blacklist.CleanupExpiredTokens(ctx)
	if err != nil {
		return "", fmt.Errorf("cleanup blacklist: %w", err)
	}
	return fmt.Sprintf("Removed %d expired blacklist entries", removed), nil
}

// CleanupResetTokens removes password reset tokens that were used or expired
func (m *CronManager) CleanupResetTokens(ctx context.Context) (string, error) {
	result := m.db.WithContext(ctx).
		Unscoped().
		Where("expires_at < ? OR used_at IS NOT NULL", time.Now()).
		Delete(&model.PasswordResetToken{})
	if result.Error != nil {
		return "", fmt.Errorf("cleanup reset tokens: %w", result.Error)
	}
	return fmt.Sprintf("Removed %d reset tokens", result.RowsAffected), nil
}

// RecomputeAverages recalculates the average cost and rating of every bootcamp
func (m *CronManager) RecomputeAverages(ctx context.Context) (string, error) {
	var ids []uint
	if err := m.db.WithContext(ctx).Model(&model.Bootcamp{}).Pluck("id", &ids).Error; err != nil {
		return "", fmt.Errorf("list bootcamps: %w", err)
	}

	tx := m.db.WithContext(ctx)
	for _, id := range ids {
		if err := model.UpdateAverageCost(tx, id); err != nil {
			return "", err
		}
		if err := model.UpdateAverageRating(tx, id); err != nil {
			return "", err
		}
	}
	return fmt.Sprintf("Recomputed averages of %d bootcamps", len(ids)), nil
}

// CleanupCronLogs removes job logs older than 30 days
func (m *CronManager) CleanupCronLogs(ctx context.Context) (string, error) {
	cutoff := time.Now().AddDate(0, 0, -30)
	result := m.db.WithContext(ctx).
		Unscoped().
		Where("started_at < ?", cutoff).
		Delete(&model.CronJobLog{})
	if result.Error != nil {
		return "", fmt.Errorf("cleanup cron logs: %w", result.Error)
	}
	return fmt.Sprintf("Removed %d job logs", result.RowsAffected), nil
}
