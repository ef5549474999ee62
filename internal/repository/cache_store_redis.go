package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"bendigotelco/connecthub/internal/model"
)

const (
	cacheKeyPrefix = "halo:cache:"
	custIdxPrefix  = "halo:custidx:"
)

type redisCacheStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisCacheStore(client *redis.Client) CacheStore {
	return &redisCacheStore{client: client, now: time.Now}
}

func (s *redisCacheStore) Get(ctx context.Context, key string) (*model.CacheEntry, error) {
	raw, err := s.client.Get(ctx, cacheKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entry model.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	if entry.Expired(s.now()) {
		return nil, nil
	}
	return &entry, nil
}

func (s *redisCacheStore) PutPositive(ctx context.Context, key string, customer *model.Customer, ttl time.Duration) error {
	if err := s.put(ctx, key, customer, ttl); err != nil {
		return err
	}
	// Customer-id index for O(1) invalidation. A stale member left behind
	// by an overwrite is filtered out on read in FindByCustomerID.
	return s.client.SAdd(ctx, custIdxPrefix+customer.ID, key).Err()
}

func (s *redisCacheStore) PutNegative(ctx context.Context, key string) error {
	return s.put(ctx, key, nil, NegativeTTL)
}

func (s *redisCacheStore) put(ctx context.Context, key string, customer *model.Customer, ttl time.Duration) error {
	now := s.now()
	entry := model.CacheEntry{
		PhoneNumber:  key,
		CustomerData: customer,
		TTL:          now.Add(ttl).Unix(),
		LastUpdated:  now,
	}
	raw, err := json.Marshal(&entry)
	if err != nil {
		return err
	}
	// No physical expiry: the TTL is logical and checked on read, so the
	// row stays visible to the invalidation scan until overwritten.
	return s.client.Set(ctx, cacheKeyPrefix+key, raw, 0).Err()
}

func (s *redisCacheStore) DeleteByKey(ctx context.Context, key string) error {
	// Drop the index member first so a failed DEL leaves at worst a stale
	// index entry, never a dangling one.
	raw, err := s.client.Get(ctx, cacheKeyPrefix+key).Bytes()
	if err == nil {
		var entry model.CacheEntry
		if json.Unmarshal(raw, &entry) == nil && entry.CustomerData != nil {
			_ = s.client.SRem(ctx, custIdxPrefix+entry.CustomerData.ID, key).Err()
		}
	} else if err != redis.Nil {
		return err
	}
	return s.client.Del(ctx, cacheKeyPrefix+key).Err()
}

func (s *redisCacheStore) FindByCustomerID(ctx context.Context, customerID string) ([]string, error) {
	members, err := s.client.SMembers(ctx, custIdxPrefix+customerID).Result()
	if err != nil && err != redis.Nil {
		return nil, err
	}

	var keys []string
	for _, key := range members {
		entry, err := s.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if entry != nil && entry.CustomerData != nil && entry.CustomerData.ID == customerID {
			keys = append(keys, key)
		} else {
			// Index member no longer backed by a live matching entry.
			_ = s.client.SRem(ctx, custIdxPrefix+customerID, key).Err()
		}
	}
	if len(keys) > 0 {
		return keys, nil
	}

	// Scan fallback: the baseline contract for entries written before the
	// index existed. O(table size); acceptable only while the cache stays
	// small.
	iter := s.client.Scan(ctx, 0, cacheKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		fullKey := iter.Val()
		key := fullKey[len(cacheKeyPrefix):]
		entry, err := s.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if entry != nil && entry.CustomerData != nil && entry.CustomerData.ID == customerID {
			keys = append(keys, key)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}
