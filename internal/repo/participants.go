package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/talangin/talangin/internal/errs"
	"github.com/talangin/talangin/internal/models"
)

// JoinRoom is idempotent: a participant row is unique per (room, user), so a
// second join with the same identity returns the existing row unchanged.
func (r *Repo) JoinRoom(ctx context.Context, roomID string, userID uint) (*models.RoomParticipant, error) {
	room, err := r.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	var existing models.RoomParticipant
	err = r.DB.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", room.ID, userID).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, dbErr(err)
	}

	part := models.RoomParticipant{
		ID:       uuid.New().String(),
		RoomID:   room.ID,
		UserID:   userID,
		JoinedAt: time.Now().UTC(),
	}
	if err := r.DB.WithContext(ctx).Create(&part).Error; err != nil {
		return nil, dbErr(err)
	}
	return &part, nil
}

func (r *Repo) ListParticipants(ctx context.Context, roomID string) ([]models.RoomParticipant, error) {
	id, err := parseID(roomID)
	if err != nil {
		return nil, err
	}
	var parts []models.RoomParticipant
	if err := r.DB.WithContext(ctx).
		Where("room_id = ?", id).
		Order("joined_at ASC").
		Find(&parts).Error; err != nil {
		return nil, dbErr(err)
	}
	return parts, nil
}

// ConfirmPayment marks the caller's participant row as paid via one of the
// runner's payment methods.
func (r *Repo) ConfirmPayment(ctx context.Context, roomID string, userID uint, methodID string) (*models.RoomParticipant, error) {
	mid, err := parseID(methodID)
	if err != nil {
		return nil, err
	}
	room, err := r.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}

	var method models.PaymentMethod
	if err := r.DB.WithContext(ctx).Where("id = ?", mid).First(&method).Error; err != nil {
		return nil, dbErr(err)
	}
	if method.UserID != room.RunnerID {
		return nil, fmt.Errorf("%w: payment method does not belong to the room runner", errs.ErrValidation)
	}

	var part models.RoomParticipant
	if err := r.DB.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", room.ID, userID).
		First(&part).Error; err != nil {
		return nil, dbErr(err)
	}

	now := time.Now().UTC()
	part.PaidAt = &now
	part.PaidVia = &method.ID
	if err := r.DB.WithContext(ctx).Save(&part).Error; err != nil {
		return nil, dbErr(err)
	}
	return &part, nil
}
