package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bendigotelco/connecthub/internal/model"
	"bendigotelco/connecthub/internal/repository"
	"bendigotelco/connecthub/pkg/apperr"
)

// recordingStore counts mutating calls so tests can prove the cache was
// never touched.
type recordingStore struct {
	repository.CacheStore
	mu      sync.Mutex
	finds   int
	deletes int
}

func (r *recordingStore) FindByCustomerID(ctx context.Context, customerID string) ([]string, error) {
	r.mu.Lock()
	r.finds++
	r.mu.Unlock()
	return r.CacheStore.FindByCustomerID(ctx, customerID)
}

func (r *recordingStore) DeleteByKey(ctx context.Context, key string) error {
	r.mu.Lock()
	r.deletes++
	r.mu.Unlock()
	return r.CacheStore.DeleteByKey(ctx, key)
}

const webhookSecret = "shhh-rotate-me"

func seededStore(t *testing.T) *recordingStore {
	t.Helper()
	ctx := context.Background()
	cache := repository.NewMemoryCacheStore()
	require.NoError(t, cache.PutPositive(ctx, "+61412345678",
		&model.Customer{ID: "42", Name: "Jane"}, time.Hour))
	require.NoError(t, cache.PutPositive(ctx, "+15551234567",
		&model.Customer{ID: "42", Name: "Jane"}, time.Hour))
	require.NoError(t, cache.PutPositive(ctx, "+15559999999",
		&model.Customer{ID: "77", Name: "Sam"}, time.Hour))
	return &recordingStore{CacheStore: cache}
}

func TestInvalidationHandle(t *testing.T) {
	ctx := context.Background()

	t.Run("wrong credential rejected before any cache access", func(t *testing.T) {
		store := seededStore(t)
		svc := NewInvalidationService(store, webhookSecret, zap.NewNop())

		_, err := svc.Handle(ctx, "wrong", model.WebhookEvent{
			EventType: model.EventCustomerUpdated, CustomerID: "42",
		})
		require.Error(t, err)
		assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
		assert.Zero(t, store.finds)
		assert.Zero(t, store.deletes)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		store := seededStore(t)
		svc := NewInvalidationService(store, webhookSecret, zap.NewNop())

		_, err := svc.Handle(ctx, webhookSecret, model.WebhookEvent{CustomerID: "42"})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

		_, err = svc.Handle(ctx, webhookSecret, model.WebhookEvent{EventType: model.EventCustomerUpdated})
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

		assert.Zero(t, store.deletes)
	})

	t.Run("customer.updated removes matching rows only", func(t *testing.T) {
		store := seededStore(t)
		svc := NewInvalidationService(store, webhookSecret, zap.NewNop())

		count, err := svc.Handle(ctx, webhookSecret, model.WebhookEvent{
			EventType: model.EventCustomerUpdated, CustomerID: "42",
		})
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		gone, err := store.Get(ctx, "+61412345678")
		require.NoError(t, err)
		assert.Nil(t, gone)

		kept, err := store.Get(ctx, "+15559999999")
		require.NoError(t, err)
		require.NotNil(t, kept, "unrelated rows stay untouched")
		assert.Equal(t, "Sam", kept.CustomerData.Name)
	})

	t.Run("zero matches is a success", func(t *testing.T) {
		store := seededStore(t)
		svc := NewInvalidationService(store, webhookSecret, zap.NewNop())

		count, err := svc.Handle(ctx, webhookSecret, model.WebhookEvent{
			EventType: model.EventCustomerUpdated, CustomerID: "no-such-customer",
		})
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("unknown event type acknowledged as no-op", func(t *testing.T) {
		store := seededStore(t)
		svc := NewInvalidationService(store, webhookSecret, zap.NewNop())

		count, err := svc.Handle(ctx, webhookSecret, model.WebhookEvent{
			EventType: model.EventTicketCreated, CustomerID: "42",
		})
		require.NoError(t, err)
		assert.Zero(t, count)
		assert.Zero(t, store.finds)
		assert.Zero(t, store.deletes)
	})
}
