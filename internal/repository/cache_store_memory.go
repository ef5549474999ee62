package repository

import (
	"context"
	"sync"
	"time"

	"bendigotelco/connecthub/internal/model"
)

type memoryCacheStore struct {
	mu      sync.RWMutex
	entries map[string]model.CacheEntry
	custIdx map[string]map[string]struct{} // customerID -> set of keys

	now func() time.Time
}

func NewMemoryCacheStore() CacheStore {
	return &memoryCacheStore{
		entries: make(map[string]model.CacheEntry),
		custIdx: make(map[string]map[string]struct{}),
		now:     time.Now,
	}
}

func (s *memoryCacheStore) Get(_ context.Context, key string) (*model.CacheEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok || entry.Expired(s.now()) {
		return nil, nil
	}
	out := entry
	return &out, nil
}

func (s *memoryCacheStore) PutPositive(_ context.Context, key string, customer *model.Customer, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := *customer
	s.store(key, &c, ttl)
	if s.custIdx[c.ID] == nil {
		s.custIdx[c.ID] = make(map[string]struct{})
	}
	s.custIdx[c.ID][key] = struct{}{}
	return nil
}

func (s *memoryCacheStore) PutNegative(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.store(key, nil, NegativeTTL)
	return nil
}

func (s *memoryCacheStore) store(key string, customer *model.Customer, ttl time.Duration) {
	now := s.now()
	s.entries[key] = model.CacheEntry{
		PhoneNumber:  key,
		CustomerData: customer,
		TTL:          now.Add(ttl).Unix(),
		LastUpdated:  now,
	}
}

func (s *memoryCacheStore) DeleteByKey(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.entries[key]; ok && entry.CustomerData != nil {
		delete(s.custIdx[entry.CustomerData.ID], key)
	}
	delete(s.entries, key)
	return nil
}

func (s *memoryCacheStore) FindByCustomerID(_ context.Context, customerID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	var keys []string
	for key := range s.custIdx[customerID] {
		if entry, ok := s.entries[key]; ok && !entry.Expired(now) &&
			entry.CustomerData != nil && entry.CustomerData.ID == customerID {
			keys = append(keys, key)
		}
	}
	if len(keys) > 0 {
		return keys, nil
	}

	// Scan fallback, mirroring the redis implementation's baseline contract.
	for key, entry := range s.entries {
		if !entry.Expired(now) && entry.CustomerData != nil && entry.CustomerData.ID == customerID {
			keys = append(keys, key)
		}
	}
	return keys, nil
}
