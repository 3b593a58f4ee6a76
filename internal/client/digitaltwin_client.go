package client

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/twin-workflow-service/internal/config"
	apperrors "github.com/spec-kit/twin-workflow-service/pkg/util"
)

// TwinIdentity is one entry of the batch unique-id lookup response.
type TwinIdentity struct {
	ID       string `json:"id"`
	UniqueID string `json:"uniqueId"`
	Name     string `json:"name"`
}

// DigitalTwinClient resolves legacy unique ids against the twin graph.
type DigitalTwinClient interface {
	// GetTwinsByUniqueIDs performs one batched lookup for the site. Ids with
	// no match are simply absent from the response.
	GetTwinsByUniqueIDs(ctx context.Context, siteID string, uniqueIDs []string) ([]TwinIdentity, error)
}

type digitalTwinClient struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewDigitalTwinClient builds a client for the digital-twin service.
func NewDigitalTwinClient(cfg config.CollaboratorConfig, logger *zap.Logger) DigitalTwinClient {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout()).
		SetRetryCount(cfg.RetryCount)
	return &digitalTwinClient{http: httpClient, logger: logger}
}

func (c *digitalTwinClient) GetTwinsByUniqueIDs(ctx context.Context, siteID string, uniqueIDs []string) ([]TwinIdentity, error) {
	if len(uniqueIDs) == 0 {
		return nil, nil
	}

	var twins []TwinIdentity
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(map[string][]string{"uniqueIds": uniqueIDs}).
		SetResult(&twins).
		Get(fmt.Sprintf("admin/sites/%s/twins/byUniqueId/batch", siteID))
	if err != nil {
		return nil, apperrors.NewDependencyFailure("digital twin service", err)
	}
	if resp.IsError() {
		c.logger.Warn("twin batch lookup failed",
			zap.String("site_id", siteID),
			zap.Int("status", resp.StatusCode()))
		return nil, apperrors.NewDependencyFailure("digital twin service",
			fmt.Errorf("unexpected status %d", resp.StatusCode()))
	}
	return twins, nil
}
