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

type PaymentMethodInput struct {
	Type    string `json:"type"`
	Label   string `json:"label"`
	Account string `json:"account"`
}

// RunnerPaymentMethod carries the decrypted account identifier. It is only
// handed to users who are in the room and need it to transfer money.
type RunnerPaymentMethod struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Label   string `json:"label"`
	Account string `json:"account"`
}

func validPaymentType(t string) bool {
	return t == models.PaymentTypeBankTransfer || t == models.PaymentTypeEWallet
}

func (r *Repo) CreatePaymentMethod(ctx context.Context, userID uint, in PaymentMethodInput) (*models.PaymentMethod, error) {
	if !validPaymentType(in.Type) {
		return nil, fmt.Errorf("%w: unknown payment type %q", errs.ErrValidation, in.Type)
	}
	if in.Account == "" {
		return nil, fmt.Errorf("%w: account identifier required", errs.ErrValidation)
	}

	enc, err := r.Cipher.Seal(in.Account)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrRemote, err)
	}

	method := models.PaymentMethod{
		ID:           uuid.New().String(),
		UserID:       userID,
		Type:         in.Type,
		Label:        in.Label,
		AccountEnc:   enc,
		AccountLast4: last4(in.Account),
		CreatedAt:    time.Now().UTC(),
	}
	if err := r.DB.WithContext(ctx).Create(&method).Error; err != nil {
		return nil, dbErr(err)
	}
	return &method, nil
}

func (r *Repo) ListPaymentMethods(ctx context.Context, userID uint) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&methods).Error; err != nil {
		return nil, dbErr(err)
	}
	return methods, nil
}

func (r *Repo) UpdatePaymentMethod(ctx context.Context, methodID string, callerID uint, in PaymentMethodInput) (*models.PaymentMethod, error) {
	method, err := r.getOwnedMethod(ctx, methodID, callerID)
	if err != nil {
		return nil, err
	}

	if in.Type != "" {
		if !validPaymentType(in.Type) {
			return nil, fmt.Errorf("%w: unknown payment type %q", errs.ErrValidation, in.Type)
		}
		method.Type = in.Type
	}
	if in.Label != "" {
		method.Label = in.Label
	}
	if in.Account != "" {
		enc, err := r.Cipher.Seal(in.Account)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrRemote, err)
		}
		method.AccountEnc = enc
		method.AccountLast4 = last4(in.Account)
	}

	if err := r.DB.WithContext(ctx).Save(method).Error; err != nil {
		return nil, dbErr(err)
	}
	return method, nil
}

func (r *Repo) DeletePaymentMethod(ctx context.Context, methodID string, callerID uint) error {
	method, err := r.getOwnedMethod(ctx, methodID, callerID)
	if err != nil {
		return err
	}
	if err := r.DB.WithContext(ctx).Delete(&models.PaymentMethod{}, "id = ?", method.ID).Error; err != nil {
		return dbErr(err)
	}
	return nil
}

// GetRunnerPaymentMethods returns the room runner's methods with decrypted
// accounts. The caller must be the runner or a participant of the room.
func (r *Repo) GetRunnerPaymentMethods(ctx context.Context, roomID string, callerID uint) ([]RunnerPaymentMethod, error) {
	room, err := r.GetRoom(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if callerID != room.RunnerID {
		var part models.RoomParticipant
		err := r.DB.WithContext(ctx).
			Where("room_id = ? AND user_id = ?", room.ID, callerID).
			First(&part).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: not a participant of this room", errs.ErrUnauthorized)
		}
		if err != nil {
			return nil, dbErr(err)
		}
	}

	methods, err := r.ListPaymentMethods(ctx, room.RunnerID)
	if err != nil {
		return nil, err
	}
	out := make([]RunnerPaymentMethod, 0, len(methods))
	for _, m := range methods {
		account, err := r.Cipher.Open(m.AccountEnc)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", errs.ErrRemote, err)
		}
		out = append(out, RunnerPaymentMethod{ID: m.ID, Type: m.Type, Label: m.Label, Account: account})
	}
	return out, nil
}

func (r *Repo) getOwnedMethod(ctx context.Context, methodID string, callerID uint) (*models.PaymentMethod, error) {
	id, err := parseID(methodID)
	if err != nil {
		return nil, err
	}
	var method models.PaymentMethod
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&method).Error; err != nil {
		return nil, dbErr(err)
	}
	if method.UserID != callerID {
		return nil, fmt.Errorf("%w: not the payment method owner", errs.ErrUnauthorized)
	}
	return &method, nil
}

func last4(s string) string {
	if len(s) <= 4 {
		return s
	}
	return s[len(s)-4:]
}
