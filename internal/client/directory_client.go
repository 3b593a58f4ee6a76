package client

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/twin-workflow-service/internal/config"
	apperrors "github.com/spec-kit/twin-workflow-service/pkg/util"
)

// SiteFeatures carries the per-site feature flags the workflow consults.
type SiteFeatures struct {
	IsScheduledTicketsEnabled bool `json:"isScheduledTicketsEnabled"`
	IsInspectionEnabled       bool `json:"isInspectionEnabled"`
}

// Site is the directory service's view of a site.
type Site struct {
	ID         string       `json:"id"`
	CustomerID string       `json:"customerId"`
	Name       string       `json:"name"`
	Code       string       `json:"code"`
	TimezoneID string       `json:"timezoneId"`
	Features   SiteFeatures `json:"features"`
}

// SiteUser is a directory user scoped to a site.
type SiteUser struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

// FullName joins the user's name parts for assignee display.
func (u SiteUser) FullName() string {
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// DirectoryClient looks up sites, customers and users.
type DirectoryClient interface {
	GetSite(ctx context.Context, siteID string) (*Site, error)
	GetSiteUsers(ctx context.Context, siteID string) ([]SiteUser, error)
}

type directoryClient struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewDirectoryClient builds a client for the directory service.
func NewDirectoryClient(cfg config.CollaboratorConfig, logger *zap.Logger) DirectoryClient {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout()).
		SetRetryCount(cfg.RetryCount)
	return &directoryClient{http: httpClient, logger: logger}
}

func (c *directoryClient) GetSite(ctx context.Context, siteID string) (*Site, error) {
	var site Site
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&site).
		Get(fmt.Sprintf("sites/%s", siteID))
	if err != nil {
		return nil, apperrors.NewDependencyFailure("directory service", err)
	}
	if resp.StatusCode() == 404 {
		return nil, apperrors.NewNotFound("site", map[string]any{"site_id": siteID})
	}
	if resp.IsError() {
		return nil, apperrors.NewDependencyFailure("directory service",
			fmt.Errorf("unexpected status %d", resp.StatusCode()))
	}
	return &site, nil
}

func (c *directoryClient) GetSiteUsers(ctx context.Context, siteID string) ([]SiteUser, error) {
	var users []SiteUser
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&users).
		Get(fmt.Sprintf("sites/%s/users", siteID))
	if err != nil {
		return nil, apperrors.NewDependencyFailure("directory service", err)
	}
	if resp.IsError() {
		c.logger.Warn("site users lookup failed",
			zap.String("site_id", siteID),
			zap.Int("status", resp.StatusCode()))
		return nil, apperrors.NewDependencyFailure("directory service",
			fmt.Errorf("unexpected status %d", resp.StatusCode()))
	}
	return users, nil
}
