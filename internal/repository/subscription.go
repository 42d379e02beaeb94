package repository

import (
	"context"

	"github.com/playsight/backend/internal/models"
	"github.com/playsight/backend/internal/storage"
	"gorm.io/gorm"
)

type SubscriptionRepository struct {
	db *storage.Postgres
}

func NewSubscriptionRepository(db *storage.Postgres) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

func (r *SubscriptionRepository) FindByUserID(ctx context.Context, userID string) (*models.Subscription, error) {
	var sub models.Subscription
	err := r.db.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&sub).Error

	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}

	return &sub, err
}

func (r *SubscriptionRepository) Upsert(ctx context.Context, sub *models.Subscription) error {
	existing, err := r.FindByUserID(ctx, sub.UserID.String())
	if err != nil {
		return err
	}

	if existing == nil {
		return r.db.DB.WithContext(ctx).Create(sub).Error
	}

	return r.db.DB.WithContext(ctx).
		Model(existing).
		Updates(map[string]interface{}{
			"tier":       sub.Tier,
			"expires_at": sub.ExpiresAt,
		}).Error
}
