package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"bendigotelco/connecthub/internal/halo"
	"bendigotelco/connecthub/internal/model"
	"bendigotelco/connecthub/internal/phone"
	"bendigotelco/connecthub/internal/repository"
	"bendigotelco/connecthub/internal/secrets"
	"bendigotelco/connecthub/internal/telemetry"
)

// LookupResult is the logical outcome of a caller lookup. Found=false with
// a nil error is a legitimate negative answer, not a failure.
type LookupResult struct {
	Found     bool            `json:"found"`
	Customer  *model.Customer `json:"customer,omitempty"`
	FromCache bool            `json:"from_cache"`
}

type LookupService interface {
	Lookup(ctx context.Context, rawPhone string) (*LookupResult, error)
}

// lookupService is the read path: normalize, consult the cache (positive
// and negative entries both short-circuit), fall back to the external API,
// write the result back.
//
// There is no single-flight deduplication: concurrent lookups for the same
// number that both miss will each call the API and each overwrite the same
// key. Wasteful but correct, since writes are idempotent overwrites.
type lookupService struct {
	cache   repository.CacheStore
	secrets secrets.Provider
	api     halo.API
	sink    telemetry.Sink
	logger  *zap.Logger
	ttl     time.Duration
}

func NewLookupService(
	cache repository.CacheStore,
	secretsProvider secrets.Provider,
	api halo.API,
	sink telemetry.Sink,
	logger *zap.Logger,
	ttl time.Duration,
) LookupService {
	return &lookupService{
		cache:   cache,
		secrets: secretsProvider,
		api:     api,
		sink:    sink,
		logger:  logger,
		ttl:     ttl,
	}
}

func (s *lookupService) Lookup(ctx context.Context, rawPhone string) (*LookupResult, error) {
	start := time.Now()
	var stats telemetry.LookupStats
	defer func() {
		stats.Duration = time.Since(start)
		s.sink.PublishLookup(ctx, stats)
	}()

	// 1. Validate before touching cache or API.
	if strings.TrimSpace(rawPhone) == "" {
		return nil, ErrEmptyPhone
	}
	key := phone.Normalize(rawPhone)

	// 2. Cache read. A store error degrades to the slow path, never fails
	// the caller.
	entry, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("cache get failed, treating as miss",
			zap.String("key", key), zap.Error(err))
		entry = nil
	}
	if entry != nil {
		stats.CacheHit = true
		stats.Success = true
		if entry.Negative() {
			return &LookupResult{Found: false, FromCache: true}, nil
		}
		return &LookupResult{Found: true, Customer: entry.CustomerData, FromCache: true}, nil
	}

	// 3. Credentials first: a secrets failure fails the lookup before any
	// API traffic.
	if _, err := s.secrets.Fetch(ctx); err != nil {
		return nil, err
	}

	// 4. External search. Failures propagate with their kind and are never
	// cached as negative results.
	stats.APICall = true
	customer, err := s.api.SearchCustomerByPhone(ctx, key)
	if err != nil {
		return nil, err
	}

	if customer == nil {
		if err := s.cache.PutNegative(ctx, key); err != nil {
			s.logger.Warn("negative cache write dropped",
				zap.String("key", key), zap.Error(err))
		}
		stats.Success = true
		return &LookupResult{Found: false}, nil
	}

	if err := s.cache.PutPositive(ctx, key, customer, s.ttl); err != nil {
		s.logger.Warn("cache write dropped",
			zap.String("key", key), zap.Error(err))
	}
	stats.Success = true
	return &LookupResult{Found: true, Customer: customer}, nil
}
