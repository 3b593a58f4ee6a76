package service

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/twin-workflow-service/internal/domain"
	"github.com/spec-kit/twin-workflow-service/internal/persistence"
	"github.com/spec-kit/twin-workflow-service/internal/repository"
	apperrors "github.com/spec-kit/twin-workflow-service/pkg/util"
)

// StatusService loads the per-customer status/tab configuration with global
// fallback and caches the merged view.
type StatusService struct {
	repo   repository.TicketStatusRepository
	cache  persistence.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewStatusService constructs the service. cache may be nil, in which case
// every lookup hits the repository.
func NewStatusService(repo repository.TicketStatusRepository, cache persistence.Cache, ttl time.Duration, logger *zap.Logger) *StatusService {
	return &StatusService{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

type cachedStatusConfig struct {
	Statuses    []domain.TicketStatus     `json:"statuses"`
	Transitions []domain.StatusTransition `json:"transitions"`
}

// ConfigForCustomer returns the merged status configuration for a customer:
// global rows first, customer rows overriding per status code.
func (s *StatusService) ConfigForCustomer(ctx context.Context, customerID string) (*domain.StatusConfig, error) {
	if cached := s.fromCache(ctx, customerID); cached != nil {
		return cached, nil
	}

	rows, err := s.repo.ListForCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	transitions, err := s.repo.ListTransitions(ctx)
	if err != nil {
		return nil, err
	}

	cfg := buildStatusConfig(rows, transitions)
	s.toCache(ctx, customerID, rows, transitions)
	return cfg, nil
}

// CreateOrUpdateStatuses upserts the customer's rows and drops the cached
// configuration so the next read observes them.
func (s *StatusService) CreateOrUpdateStatuses(ctx context.Context, customerID string, rows []domain.TicketStatus) error {
	if customerID == "" {
		return apperrors.NewValidationError("customer id required", map[string]any{"field": "CustomerId"})
	}
	for _, row := range rows {
		if row.Status == "" {
			return apperrors.NewValidationError("status name required", map[string]any{"field": "Status", "status_code": row.StatusCode})
		}
		switch row.Tab {
		case domain.TabOpen, domain.TabResolved, domain.TabClosed:
		default:
			return apperrors.NewValidationError("unknown tab", map[string]any{"field": "Tab", "tab": string(row.Tab)})
		}
	}
	if err := s.repo.Upsert(ctx, customerID, rows); err != nil {
		return err
	}
	if s.cache != nil {
		if err := s.cache.Delete(ctx, statusCacheKey(customerID)); err != nil {
			s.logger.Warn("status cache invalidation failed", zap.String("customer_id", customerID), zap.Error(err))
		}
	}
	return nil
}

// ListStatuses exposes the merged rows for config endpoints.
func (s *StatusService) ListStatuses(ctx context.Context, customerID string) ([]domain.TicketStatus, error) {
	cfg, err := s.ConfigForCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	rows := make([]domain.TicketStatus, 0, len(cfg.Statuses))
	for _, row := range cfg.Statuses {
		rows = append(rows, row)
	}
	return rows, nil
}

func buildStatusConfig(rows []domain.TicketStatus, transitions []domain.StatusTransition) *domain.StatusConfig {
	cfg := &domain.StatusConfig{
		Statuses:    make(map[int]domain.TicketStatus),
		Transitions: make(map[domain.StatusTransition]bool),
	}
	// global rows first, then customer rows override per code
	for _, row := range rows {
		if row.CustomerID == nil {
			cfg.Statuses[row.StatusCode] = row
		}
	}
	for _, row := range rows {
		if row.CustomerID != nil {
			cfg.Statuses[row.StatusCode] = row
		}
	}
	for _, tr := range transitions {
		cfg.Transitions[tr] = true
	}
	return cfg
}

func (s *StatusService) fromCache(ctx context.Context, customerID string) *domain.StatusConfig {
	if s.cache == nil {
		return nil
	}
	raw, ok, err := s.cache.Get(ctx, statusCacheKey(customerID))
	if err != nil || !ok {
		return nil
	}
	var cached cachedStatusConfig
	if err := json.Unmarshal([]byte(raw), &cached); err != nil {
		return nil
	}
	return buildStatusConfig(cached.Statuses, cached.Transitions)
}

func (s *StatusService) toCache(ctx context.Context, customerID string, rows []domain.TicketStatus, transitions []domain.StatusTransition) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(cachedStatusConfig{Statuses: rows, Transitions: transitions})
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, statusCacheKey(customerID), string(raw), s.ttl); err != nil {
		s.logger.Debug("status cache write failed", zap.Error(err))
	}
}

func statusCacheKey(customerID string) string {
	return "statusconfig:" + customerID
}
