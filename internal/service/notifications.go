package service

import (
	"context"
	"time"

	"github.com/talangin/talangin/internal/cache"
	"github.com/talangin/talangin/internal/logging"
	"github.com/talangin/talangin/internal/models"
	"github.com/talangin/talangin/internal/repo"
)

// CheckInterval is the minimum gap between two notification fetches for the
// same user.
const CheckInterval = 6 * time.Hour

type Notifications struct {
	Repo  *repo.Repo
	Cache *cache.Cache
	Now   func() time.Time // injectable for tests, defaults to time.Now
}

func (s *Notifications) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}

func checkKey(userID uint) string { return cache.Key("notifcheck", userID) }

// Check implements the throttled notification poll. The first check for a
// user stores "now" without fetching; later checks fetch only when the
// stored timestamp is at least CheckInterval old, then advance it.
func (s *Notifications) Check(ctx context.Context, userID uint) ([]models.Notification, error) {
	key := checkKey(userID)
	now := s.now()

	stored, ok, err := s.Cache.GetRaw(ctx, key)
	if err != nil {
		logging.FromContext(ctx).Warn("notification check state read failed", "error", err)
	}
	if !ok {
		if err := s.Cache.SetRaw(ctx, key, now.Format(time.RFC3339Nano), 0); err != nil {
			return nil, err
		}
		return nil, nil
	}

	last, err := time.Parse(time.RFC3339Nano, stored)
	if err != nil {
		// Unreadable state: reset the clock, fetch nothing.
		if err := s.Cache.SetRaw(ctx, key, now.Format(time.RFC3339Nano), 0); err != nil {
			return nil, err
		}
		return nil, nil
	}

	if now.Sub(last) < CheckInterval {
		return nil, nil
	}

	notifs, err := s.Repo.ListNotificationsSince(ctx, last)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.SetRaw(ctx, key, now.Format(time.RFC3339Nano), 0); err != nil {
		return nil, err
	}
	return notifs, nil
}
