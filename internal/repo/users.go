package repo

import (
	"context"
	"sort"
	"time"

	"github.com/talangin/talangin/internal/models"
)

// Profile is the public slice of a user record shown to other room members.
type Profile struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
}

type MonthlySpend struct {
	Month string  `json:"month"` // "2026-08"
	Total float64 `json:"total"`
}

func (r *Repo) GetUserProfiles(ctx context.Context, ids []uint) ([]Profile, error) {
	if len(ids) == 0 {
		return []Profile{}, nil
	}
	var users []models.User
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, dbErr(err)
	}
	out := make([]Profile, 0, len(users))
	for _, u := range users {
		out = append(out, Profile{ID: u.ID, FullName: u.FullName})
	}
	return out, nil
}

// MonthlySpending sums quantity*unit_price of the caller's order items,
// bucketed by calendar month of the item's creation.
func (r *Repo) MonthlySpending(ctx context.Context, userID uint) ([]MonthlySpend, error) {
	var items []models.OrderItem
	err := r.DB.WithContext(ctx).
		Joins("JOIN room_participants ON room_participants.id = order_items.participant_id").
		Where("room_participants.user_id = ?", userID).
		Find(&items).Error
	if err != nil {
		return nil, dbErr(err)
	}

	byMonth := map[string]float64{}
	for _, it := range items {
		m := it.CreatedAt.UTC().Format("2006-01")
		byMonth[m] += float64(it.Quantity) * it.UnitPrice
	}

	out := make([]MonthlySpend, 0, len(byMonth))
	for m, total := range byMonth {
		out = append(out, MonthlySpend{Month: m, Total: total})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month > out[j].Month })
	return out, nil
}

func (r *Repo) UpdateUserName(ctx context.Context, userID uint, fullName string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("id = ?", userID).First(&user).Error; err != nil {
		return nil, dbErr(err)
	}
	user.FullName = fullName
	if err := r.DB.WithContext(ctx).Save(&user).Error; err != nil {
		return nil, dbErr(err)
	}
	return &user, nil
}

func (r *Repo) ListNotificationsSince(ctx context.Context, since time.Time) ([]models.Notification, error) {
	var notifs []models.Notification
	if err := r.DB.WithContext(ctx).
		Where("created_at > ?", since).
		Order("created_at DESC").
		Find(&notifs).Error; err != nil {
		return nil, dbErr(err)
	}
	return notifs, nil
}
