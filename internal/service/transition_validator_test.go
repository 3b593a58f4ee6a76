package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/twin-workflow-service/internal/domain"
	apperrors "github.com/spec-kit/twin-workflow-service/pkg/util"
)

func newTestStatusService(repo *fakeStatusRepo) *StatusService {
	return NewStatusService(repo, nil, 0, zap.NewNop())
}

func TestValidateAllowsCreation(t *testing.T) {
	validator := NewTransitionValidator(newTestStatusService(&fakeStatusRepo{}), true)
	assert.NoError(t, validator.Validate(context.Background(), "cust-1", nil, domain.StatusOpen))
}

func TestValidateDisabledFlagAllowsEverything(t *testing.T) {
	validator := NewTransitionValidator(newTestStatusService(&fakeStatusRepo{}), false)
	from := domain.StatusClosed
	assert.NoError(t, validator.Validate(context.Background(), "cust-1", &from, domain.StatusOpen))
}

func TestValidateSameStatusAllowed(t *testing.T) {
	validator := NewTransitionValidator(newTestStatusService(&fakeStatusRepo{}), true)
	from := domain.StatusInProgress
	assert.NoError(t, validator.Validate(context.Background(), "cust-1", &from, domain.StatusInProgress))
}

func TestValidateEnforcesAllowList(t *testing.T) {
	repo := &fakeStatusRepo{
		rows: defaultStatusRows(),
		transitions: []domain.StatusTransition{
			{FromStatus: domain.StatusOpen, ToStatus: domain.StatusInProgress},
			{FromStatus: domain.StatusInProgress, ToStatus: domain.StatusResolved},
		},
	}
	validator := NewTransitionValidator(newTestStatusService(repo), true)

	from := domain.StatusOpen
	assert.NoError(t, validator.Validate(context.Background(), "cust-1", &from, domain.StatusInProgress))

	from = domain.StatusOpen
	err := validator.Validate(context.Background(), "cust-1", &from, domain.StatusClosed)
	require.Error(t, err)

	domainErr := apperrors.ToDomainError(err)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.Equal(t, "Invalid status transition from Open to Closed", domainErr.Message)
	assert.Equal(t, "Status", domainErr.Details["field"])
}

func TestValidateUnknownCodesFallBackToNumbers(t *testing.T) {
	repo := &fakeStatusRepo{rows: defaultStatusRows()}
	validator := NewTransitionValidator(newTestStatusService(repo), true)

	from := 99
	err := validator.Validate(context.Background(), "cust-1", &from, 42)
	require.Error(t, err)
	assert.Equal(t, "Invalid status transition from 99 to 42", apperrors.ToDomainError(err).Message)
}
