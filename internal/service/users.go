package service

import (
	"context"

	"github.com/talangin/talangin/internal/cache"
	"github.com/talangin/talangin/internal/logging"
	"github.com/talangin/talangin/internal/models"
	"github.com/talangin/talangin/internal/repo"
)

type Users struct {
	Repo  *repo.Repo
	Cache *cache.Cache
}

func (s *Users) Profiles(ctx context.Context, ids []uint) ([]repo.Profile, error) {
	key := profilesKey(ids)
	var cached []repo.Profile
	if hit, err := s.Cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	profiles, err := s.Repo.GetUserProfiles(ctx, ids)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, key, profiles); err != nil {
		logging.FromContext(ctx).Warn("cache write failed", "key", key, "error", err)
	}
	return profiles, nil
}

func (s *Users) MonthlySpending(ctx context.Context, userID uint) ([]repo.MonthlySpend, error) {
	key := spendingKey(userID)
	var cached []repo.MonthlySpend
	if hit, err := s.Cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	spend, err := s.Repo.MonthlySpending(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, key, spend); err != nil {
		logging.FromContext(ctx).Warn("cache write failed", "key", key, "error", err)
	}
	return spend, nil
}

func (s *Users) UpdateName(ctx context.Context, userID uint, fullName string) (*models.User, error) {
	user, err := s.Repo.UpdateUserName(ctx, userID, fullName)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Invalidate(ctx, invalidateOnProfileChange()...); err != nil {
		logging.FromContext(ctx).Error("cache invalidation failed", "error", err)
	}
	return user, nil
}
