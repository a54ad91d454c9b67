package service

import (
	"context"

	"github.com/talangin/talangin/internal/cache"
	"github.com/talangin/talangin/internal/logging"
	"github.com/talangin/talangin/internal/models"
	"github.com/talangin/talangin/internal/repo"
)

type Payments struct {
	Repo  *repo.Repo
	Cache *cache.Cache
}

func (s *Payments) List(ctx context.Context, userID uint) ([]models.PaymentMethod, error) {
	key := methodsKey(userID)
	var cached []models.PaymentMethod
	if hit, err := s.Cache.Get(ctx, key, &cached); err == nil && hit {
		return cached, nil
	}

	methods, err := s.Repo.ListPaymentMethods(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, key, methods); err != nil {
		logging.FromContext(ctx).Warn("cache write failed", "key", key, "error", err)
	}
	return methods, nil
}

func (s *Payments) Create(ctx context.Context, userID uint, in repo.PaymentMethodInput) (*models.PaymentMethod, error) {
	method, err := s.Repo.CreatePaymentMethod(ctx, userID, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, invalidateOnMethodChange(userID))
	return method, nil
}

func (s *Payments) Update(ctx context.Context, methodID string, callerID uint, in repo.PaymentMethodInput) (*models.PaymentMethod, error) {
	method, err := s.Repo.UpdatePaymentMethod(ctx, methodID, callerID, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, invalidateOnMethodChange(callerID))
	return method, nil
}

func (s *Payments) Delete(ctx context.Context, methodID string, callerID uint) error {
	if err := s.Repo.DeletePaymentMethod(ctx, methodID, callerID); err != nil {
		return err
	}
	s.invalidate(ctx, invalidateOnMethodChange(callerID))
	return nil
}

func (s *Payments) invalidate(ctx context.Context, prefixes []string) {
	if err := s.Cache.Invalidate(ctx, prefixes...); err != nil {
		logging.FromContext(ctx).Error("cache invalidation failed", "prefixes", prefixes, "error", err)
	}
}
