package service

import (
	"context"
	"crypto/subtle"

	"go.uber.org/zap"

	"bendigotelco/connecthub/internal/model"
	"bendigotelco/connecthub/internal/repository"
	"bendigotelco/connecthub/pkg/apperr"
)

type InvalidationService interface {
	// Handle processes a webhook event, returning the number of cache
	// entries removed. Zero removals is a success, not an error.
	Handle(ctx context.Context, credential string, event model.WebhookEvent) (int, error)
}

type invalidationService struct {
	cache  repository.CacheStore
	secret string
	logger *zap.Logger
}

func NewInvalidationService(cache repository.CacheStore, secret string, logger *zap.Logger) InvalidationService {
	return &invalidationService{
		cache:  cache,
		secret: secret,
		logger: logger,
	}
}

func (s *invalidationService) Handle(ctx context.Context, credential string, event model.WebhookEvent) (int, error) {
	// Credential check comes first; nothing touches the cache before it.
	if subtle.ConstantTimeCompare([]byte(credential), []byte(s.secret)) != 1 {
		return 0, ErrWebhookUnauthorized
	}

	if event.EventType == "" {
		return 0, ErrEventMissingType
	}
	if event.CustomerID == "" {
		return 0, ErrEventMissingID
	}

	switch event.EventType {
	case model.EventCustomerUpdated:
		return s.invalidateCustomer(ctx, event.CustomerID)
	default:
		// Unknown but well-formed event types are acknowledged as no-ops
		// so webhook delivery never fails on forward-compatible payloads.
		s.logger.Info("ignoring webhook event",
			zap.String("event_type", event.EventType),
			zap.String("customer_id", event.CustomerID))
		return 0, nil
	}
}

func (s *invalidationService) invalidateCustomer(ctx context.Context, customerID string) (int, error) {
	keys, err := s.cache.FindByCustomerID(ctx, customerID)
	if err != nil {
		return 0, apperr.Wrap(apperr.KindUnknown, "cache lookup by customer id failed", err)
	}

	invalidated := 0
	for _, key := range keys {
		if err := s.cache.DeleteByKey(ctx, key); err != nil {
			// Dropped delete: the entry ages out at its TTL instead.
			s.logger.Warn("cache invalidation delete dropped",
				zap.String("key", key), zap.Error(err))
			continue
		}
		invalidated++
	}

	s.logger.Info("customer cache invalidated",
		zap.String("customer_id", customerID),
		zap.Int("invalidated", invalidated))
	return invalidated, nil
}
