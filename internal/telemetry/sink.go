// Package telemetry is the fire-and-forget metrics boundary. Publishing
// must never fail or slow the primary operation; sinks have no error
// returns by construction.
package telemetry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

type LookupStats struct {
	CacheHit bool
	APICall  bool
	Success  bool
	Duration time.Duration
}

type CallLogStats struct {
	Success  bool
	Duration time.Duration
}

type Sink interface {
	PublishLookup(ctx context.Context, stats LookupStats)
	PublishCallLog(ctx context.Context, stats CallLogStats)
}

// LogSink emits metrics as structured log lines, standing in for a real
// metrics backend.
type LogSink struct {
	logger *zap.Logger
}

func NewLogSink(logger *zap.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) PublishLookup(_ context.Context, stats LookupStats) {
	s.logger.Info("lookup metrics",
		zap.Bool("cache_hit", stats.CacheHit),
		zap.Bool("api_call", stats.APICall),
		zap.Bool("success", stats.Success),
		zap.Duration("duration", stats.Duration),
	)
}

func (s *LogSink) PublishCallLog(_ context.Context, stats CallLogStats) {
	s.logger.Info("call log metrics",
		zap.Bool("success", stats.Success),
		zap.Duration("duration", stats.Duration),
	)
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) PublishLookup(context.Context, LookupStats)   {}
func (NopSink) PublishCallLog(context.Context, CallLogStats) {}
