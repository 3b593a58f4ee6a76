package service

import (
	"context"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/twin-workflow-service/internal/config"
	"github.com/spec-kit/twin-workflow-service/internal/events"
)

// NotificationService forwards domain events to the configured webhook.
type NotificationService struct {
	dispatcher events.Dispatcher
	client     *resty.Client
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	client := resty.New().
		SetTimeout(cfg.Timeout()).
		SetHeader("Content-Type", "application/json")
	return &NotificationService{
		dispatcher: dispatcher,
		client:     client,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventTicketCreated, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketStatusChanged, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketAssigned, n.handleEvent)
	n.dispatcher.Subscribe(events.EventTicketCommentAdded, n.handleEvent)
}

func (n *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	n.logger.Info("dispatching notification",
		zap.String("event_type", string(event.Type)),
		zap.String("ticket_id", event.TicketID),
		zap.String("site_id", event.SiteID))
	n.sendWebhook(ctx, event)
	return nil
}

func (n *NotificationService) sendWebhook(ctx context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	resp, err := n.client.R().
		SetContext(ctx).
		SetBody(event).
		Post(n.cfg.WebhookURL)
	if err != nil {
		n.logger.Warn("webhook delivery failed", zap.String("event_id", event.ID), zap.Error(err))
		return
	}
	if resp.IsError() {
		n.logger.Warn("webhook rejected event",
			zap.String("event_id", event.ID),
			zap.Int("status", resp.StatusCode()))
	}
}
