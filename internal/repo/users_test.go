package repo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/talangin/talangin/internal/models"
)

func TestGetUserProfiles(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.DB.Create(&models.User{Email: "a@x.id", FullName: "Andi", PasswordHash: "h"}).Error)
	require.NoError(t, r.DB.Create(&models.User{Email: "b@x.id", FullName: "Budi", PasswordHash: "h"}).Error)

	profiles, err := r.GetUserProfiles(ctx, []uint{1, 2, 99})
	require.NoError(t, err)
	require.Len(t, profiles, 2)

	empty, err := r.GetUserProfiles(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestMonthlySpending(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	room, err := r.CreateRoom(ctx, &models.Room{Title: "T", Restaurant: "R", Platform: "gofood", RunnerID: 1})
	require.NoError(t, err)
	part, err := r.JoinRoom(ctx, room.ID, 2)
	require.NoError(t, err)

	august := time.Date(2026, 8, 5, 12, 0, 0, 0, time.UTC)
	july := time.Date(2026, 7, 20, 12, 0, 0, 0, time.UTC)
	seed := []models.OrderItem{
		{ID: "a0000000-0000-4000-8000-000000000001", ParticipantID: part.ID, Name: "A", Quantity: 2, UnitPrice: 10_000, CreatedAt: august},
		{ID: "a0000000-0000-4000-8000-000000000002", ParticipantID: part.ID, Name: "B", Quantity: 1, UnitPrice: 5000, CreatedAt: august},
		{ID: "a0000000-0000-4000-8000-000000000003", ParticipantID: part.ID, Name: "C", Quantity: 1, UnitPrice: 7000, CreatedAt: july},
	}
	for i := range seed {
		require.NoError(t, r.DB.Create(&seed[i]).Error)
	}

	spend, err := r.MonthlySpending(ctx, 2)
	require.NoError(t, err)
	require.Len(t, spend, 2)

	// Most recent month first.
	require.Equal(t, "2026-08", spend[0].Month)
	require.Equal(t, 25_000.0, spend[0].Total)
	require.Equal(t, "2026-07", spend[1].Month)
	require.Equal(t, 7000.0, spend[1].Total)

	// Another user's items never count.
	other, err := r.MonthlySpending(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, other)
}

func TestUpdateUserName(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, r.DB.Create(&models.User{Email: "a@x.id", FullName: "Andi", PasswordHash: "h"}).Error)

	user, err := r.UpdateUserName(ctx, 1, "Andi Wijaya")
	require.NoError(t, err)
	require.Equal(t, "Andi Wijaya", user.FullName)
}

func TestListNotificationsSince(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	old := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	require.NoError(t, r.DB.Create(&models.Notification{Type: "info", Title: "old", Message: "m", CreatedAt: old}).Error)
	require.NoError(t, r.DB.Create(&models.Notification{Type: "info", Title: "new", Message: "m", CreatedAt: recent}).Error)

	notifs, err := r.ListNotificationsSince(ctx, time.Date(2026, 8, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	require.Equal(t, "new", notifs[0].Title)
}
