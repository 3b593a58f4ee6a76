package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spec-kit/twin-workflow-service/internal/domain"
	apperrors "github.com/spec-kit/twin-workflow-service/pkg/util"
)

// TransitionValidator gates status changes against the configured allow-list.
// Enforcement only applies while the external-integration flag is on; legacy
// behavior allows every transition.
type TransitionValidator struct {
	statuses                 *StatusService
	mappedIntegrationEnabled bool
}

// NewTransitionValidator constructs the validator.
func NewTransitionValidator(statuses *StatusService, mappedIntegrationEnabled bool) *TransitionValidator {
	return &TransitionValidator{statuses: statuses, mappedIntegrationEnabled: mappedIntegrationEnabled}
}

// Validate allows or rejects a status transition. A nil from means creation,
// which is always allowed.
func (v *TransitionValidator) Validate(ctx context.Context, customerID string, from *int, to int) error {
	if from == nil || !v.mappedIntegrationEnabled {
		return nil
	}
	if *from == to {
		return nil
	}

	cfg, err := v.statuses.ConfigForCustomer(ctx, customerID)
	if err != nil {
		return err
	}
	if cfg.Allows(*from, to) {
		return nil
	}

	fromName := statusDisplayName(cfg, *from)
	toName := statusDisplayName(cfg, to)
	return apperrors.NewValidationError(
		fmt.Sprintf("Invalid status transition from %s to %s", fromName, toName),
		map[string]any{"field": "Status", "from": *from, "to": to},
	)
}

func statusDisplayName(cfg *domain.StatusConfig, code int) string {
	if name := cfg.Name(code); name != "" {
		return name
	}
	if name := domain.StatusName(code); name != "" {
		return name
	}
	return strconv.Itoa(code)
}
