package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/juanCamilo2002/gamer-buy-api/internal/models"
)

func (r *GormRepo) CreateSession(ctx context.Context, s *models.Session) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

// ListActiveSessions returns every non-revoked session of a user, expired ones included.
func (r *GormRepo) ListActiveSessions(ctx context.Context, userID uuid.UUID) ([]models.Session, error) {
	var sessions []models.Session
	if err := r.DB.WithContext(ctx).
		Where("user_id = ? AND revoked = ?", userID, false).
		Order("created_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *GormRepo) ListAllActiveSessions(ctx context.Context) ([]models.Session, error) {
	var sessions []models.Session
	if err := r.DB.WithContext(ctx).
		Where("revoked = ?", false).
		Order("created_at DESC").
		Find(&sessions).Error; err != nil {
		return nil, err
	}
	return sessions, nil
}

// RevokeSession flips revoked only if it is still false. The boolean reports
// whether this call did the revoking.
func (r *GormRepo) RevokeSession(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.DB.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND revoked = ?", id, false).
		Update("revoked", true)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *GormRepo) RevokeAllSessions(ctx context.Context, userID uuid.UUID) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Session{}).
		Where("user_id = ? AND revoked = ?", userID, false).
		Update("revoked", true)
	return res.RowsAffected, res.Error
}

func (r *GormRepo) FindSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	var s models.Session
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}
