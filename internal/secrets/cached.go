package secrets

import (
	"context"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"bendigotelco/connecthub/pkg/apperr"
)

// freshness is the process-wide window during which a fetched bundle is
// served without consulting the backend again. Independent of the API
// token's own lifetime.
const freshness = 5 * time.Minute

type cachedBundle struct {
	bundle    *Bundle
	fetchedAt time.Time
}

// Cached wraps a Provider with a last-writer-wins freshness window.
// Concurrent callers racing past an expired window may each trigger a
// fetch; the later write simply replaces the earlier one. Tolerated in
// exchange for staying lock-free.
type Cached struct {
	inner  Provider
	logger *zap.Logger
	now    func() time.Time

	current atomic.Pointer[cachedBundle]
}

func NewCached(inner Provider, logger *zap.Logger) *Cached {
	return &Cached{
		inner:  inner,
		logger: logger,
		now:    time.Now,
	}
}

func (c *Cached) Fetch(ctx context.Context) (*Bundle, error) {
	if cur := c.current.Load(); cur != nil && c.now().Sub(cur.fetchedAt) < freshness {
		return cur.bundle, nil
	}

	b, err := c.inner.Fetch(ctx)
	if err != nil {
		// A stale bundle beats no bundle: credentials rotate rarely and the
		// API will reject them if they are truly dead.
		if cur := c.current.Load(); cur != nil {
			c.logger.Warn("secret fetch failed, serving stale bundle", zap.Error(err))
			return cur.bundle, nil
		}
		if apperr.KindOf(err) == apperr.KindConfig {
			return nil, err
		}
		return nil, apperr.Wrap(apperr.KindSecrets, "secret bundle unavailable", err)
	}

	c.current.Store(&cachedBundle{bundle: b, fetchedAt: c.now()})
	return b, nil
}
