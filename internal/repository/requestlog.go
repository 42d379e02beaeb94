package repository

import (
	"context"
	"time"

	"github.com/playsight/backend/internal/models"
	"github.com/playsight/backend/internal/storage"
)

type RequestLogRepository struct {
	db *storage.Postgres
}

func NewRequestLogRepository(db *storage.Postgres) *RequestLogRepository {
	return &RequestLogRepository{db: db}
}

// Inserts multiple request logs (for batch insertion)
func (r *RequestLogRepository) CreateBatch(ctx context.Context, logs []models.RequestLog) error {
	if len(logs) == 0 {
		return nil
	}
	return r.db.DB.WithContext(ctx).Create(&logs).Error
}

func (r *RequestLogRepository) CountByTimeRange(ctx context.Context, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.RequestLog{}).
		Where("timestamp BETWEEN ? AND ?", from, to).
		Count(&count).Error

	return count, err
}

func (r *RequestLogRepository) CountByStatusCode(ctx context.Context, statusCode int, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.DB.WithContext(ctx).
		Model(&models.RequestLog{}).
		Where("status_code = ? AND timestamp BETWEEN ? AND ?", statusCode, from, to).
		Count(&count).Error

	return count, err
}

func (r *RequestLogRepository) GetAverageResponseTime(ctx context.Context, from, to time.Time) (float64, error) {
	var avg float64
	err := r.db.DB.WithContext(ctx).
		Model(&models.RequestLog{}).
		Where("timestamp BETWEEN ? AND ?", from, to).
		Select("COALESCE(AVG(response_time_ms), 0)").
		Scan(&avg).Error

	return avg, err
}

// Deletes logs older than the cutoff, returning how many rows went away.
func (r *RequestLogRepository) DeleteOldLogs(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.DB.WithContext(ctx).
		Where("timestamp < ?", cutoff).
		Delete(&models.RequestLog{})

	return result.RowsAffected, result.Error
}
