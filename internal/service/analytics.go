package service

import (
	"context"
	"net/http"
	"time"

	"github.com/playsight/backend/internal/repository"
)

type AnalyticsService struct {
	repository *repository.RequestLogRepository
}

func NewAnalyticsService(repo *repository.RequestLogRepository) *AnalyticsService {
	return &AnalyticsService{repository: repo}
}

// Holds traffic summary data
type TrafficSummary struct {
	TotalRequests   int64   `json:"total_requests"`
	DeniedRequests  int64   `json:"denied_requests"`
	DenialRate      float64 `json:"denial_rate"`
	AvgResponseTime float64 `json:"avg_response_time_ms"`
}

// Retrieves the traffic summary for a time range
func (s *AnalyticsService) GetSummary(ctx context.Context, from, to time.Time) (*TrafficSummary, error) {
	summary := &TrafficSummary{}

	totalRequests, err := s.repository.CountByTimeRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary.TotalRequests = totalRequests

	if totalRequests == 0 {
		return summary, nil
	}

	denied, err := s.repository.CountByStatusCode(ctx, http.StatusTooManyRequests, from, to)
	if err != nil {
		return nil, err
	}
	summary.DeniedRequests = denied
	summary.DenialRate = (float64(denied) / float64(totalRequests)) * 100

	avgResponseTime, err := s.repository.GetAverageResponseTime(ctx, from, to)
	if err != nil {
		return nil, err
	}
	summary.AvgResponseTime = avgResponseTime

	return summary, nil
}

// Deletes logs older than the retention period
func (s *AnalyticsService) CleanupOldLogs(ctx context.Context, retentionDays int) (int64, error) {
	cutOffDate := time.Now().AddDate(0, 0, -retentionDays)
	return s.repository.DeleteOldLogs(ctx, cutOffDate)
}
