package middleware

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/playsight/backend/internal/models"
	"github.com/playsight/backend/internal/repository"
)

const logBatchSize = 100

// RequestAuditLogger writes one row per request into postgres, batched in
// the background so the request path never waits on the database. Denied
// requests land here too, which is what the admin traffic summary reads.
type RequestAuditLogger struct {
	repo    *repository.RequestLogRepository
	entries chan models.RequestLog
}

func NewRequestAuditLogger(repo *repository.RequestLogRepository, bufferSize int) *RequestAuditLogger {
	l := &RequestAuditLogger{
		repo:    repo,
		entries: make(chan models.RequestLog, bufferSize),
	}
	go l.run()
	return l
}

// run drains the channel into batched inserts, flushing on size or every
// few seconds, whichever comes first.
func (l *RequestAuditLogger) run() {
	batch := make([]models.RequestLog, 0, logBatchSize)
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := l.repo.CreateBatch(context.Background(), batch); err != nil {
			log.Printf("request audit logger: batch insert failed: %v", err)
		}
		batch = make([]models.RequestLog, 0, logBatchSize)
	}

	for {
		select {
		case entry := <-l.entries:
			batch = append(batch, entry)
			if len(batch) >= logBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// Handler records every HTTP request after it completes.
func (l *RequestAuditLogger) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start)

		var userID *uuid.UUID
		if raw := c.GetString("user_id"); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				userID = &id
			}
		}

		entry := models.RequestLog{
			Timestamp:      start,
			UserID:         userID,
			Method:         c.Request.Method,
			Path:           c.Request.URL.Path,
			StatusCode:     c.Writer.Status(),
			ResponseTimeMs: int(duration.Milliseconds()),
			IPAddress:      clientIP(c),
			UserAgent:      c.Request.UserAgent(),
		}

		select {
		case l.entries <- entry:
		default:
			// Channel full, drop rather than block the response.
		}
	}
}
