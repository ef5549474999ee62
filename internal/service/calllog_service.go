package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"bendigotelco/connecthub/internal/halo"
	"bendigotelco/connecthub/internal/model"
	"bendigotelco/connecthub/internal/repository"
	"bendigotelco/connecthub/internal/telemetry"
)

type CallLogService interface {
	// Record creates the upstream ticket for a finished call and writes a
	// local audit row.
	Record(ctx context.Context, data model.CallData) (*model.Ticket, error)
}

type callLogService struct {
	api    halo.API
	repo   repository.CallLogRepository // nil when no audit database is configured
	sink   telemetry.Sink
	logger *zap.Logger
}

func NewCallLogService(api halo.API, repo repository.CallLogRepository, sink telemetry.Sink, logger *zap.Logger) CallLogService {
	return &callLogService{
		api:    api,
		repo:   repo,
		sink:   sink,
		logger: logger,
	}
}

func (s *callLogService) Record(ctx context.Context, data model.CallData) (*model.Ticket, error) {
	start := time.Now()
	var stats telemetry.CallLogStats
	defer func() {
		stats.Duration = time.Since(start)
		s.sink.PublishCallLog(ctx, stats)
	}()

	if data.CustomerID == "" || data.PhoneNumber == "" || data.AgentID == "" {
		return nil, ErrCallDataIncomplete
	}

	ticket, err := s.api.CreateCallLog(ctx, data)
	if err != nil {
		return nil, err
	}

	// The ticket already exists upstream; a failed audit write is logged,
	// not fatal.
	if s.repo != nil {
		log := &model.CallLog{
			ContactID:   data.ContactID,
			TicketID:    ticket.ID,
			PhoneNumber: data.PhoneNumber,
			AgentID:     data.AgentID,
			CustomerID:  data.CustomerID,
			StartedAt:   data.StartTime,
			EndedAt:     data.EndTime,
		}
		if err := s.repo.Create(ctx, log); err != nil {
			s.logger.Warn("call log audit write dropped",
				zap.Int("ticket_id", ticket.ID), zap.Error(err))
		}
	}

	stats.Success = true
	return ticket, nil
}
