package client

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/twin-workflow-service/internal/config"
	apperrors "github.com/spec-kit/twin-workflow-service/pkg/util"
)

// InsightClient notifies the insight service about ticket status changes.
// Callers treat notification as fire-and-forget: failures are logged and
// never roll back the ticket mutation.
type InsightClient interface {
	UpdateInsightStatus(ctx context.Context, siteID, insightID, status string) error
	BatchUpdateInsightStatus(ctx context.Context, siteID string, insightIDs []string, status string) error
}

type insightClient struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewInsightClient builds a client for the insight service.
func NewInsightClient(cfg config.CollaboratorConfig, logger *zap.Logger) InsightClient {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout()).
		SetRetryCount(cfg.RetryCount)
	return &insightClient{http: httpClient, logger: logger}
}

func (c *insightClient) UpdateInsightStatus(ctx context.Context, siteID, insightID, status string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"status": status}).
		Put(fmt.Sprintf("sites/%s/insights/%s/status", siteID, insightID))
	if err != nil {
		return apperrors.NewDependencyFailure("insight service", err)
	}
	if resp.IsError() {
		return apperrors.NewDependencyFailure("insight service",
			fmt.Errorf("unexpected status %d", resp.StatusCode()))
	}
	return nil
}

func (c *insightClient) BatchUpdateInsightStatus(ctx context.Context, siteID string, insightIDs []string, status string) error {
	if len(insightIDs) == 0 {
		return nil
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"ids": insightIDs, "status": status}).
		Put(fmt.Sprintf("sites/%s/insights/status", siteID))
	if err != nil {
		return apperrors.NewDependencyFailure("insight service", err)
	}
	if resp.IsError() {
		return apperrors.NewDependencyFailure("insight service",
			fmt.Errorf("unexpected status %d", resp.StatusCode()))
	}
	return nil
}
