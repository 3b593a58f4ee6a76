package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/twin-workflow-service/internal/domain"
	apperrors "github.com/spec-kit/twin-workflow-service/pkg/util"
)

func TestConfigForCustomerMergesGlobalAndOverrides(t *testing.T) {
	customer := "cust-1"
	rows := defaultStatusRows()
	rows = append(rows, domain.TicketStatus{
		CustomerID: &customer, StatusCode: domain.StatusResolved, Status: "Fixed", Tab: domain.TabResolved,
	})
	svc := newTestStatusService(&fakeStatusRepo{rows: rows})

	cfg, err := svc.ConfigForCustomer(context.Background(), customer)
	require.NoError(t, err)

	assert.Equal(t, "Fixed", cfg.Statuses[domain.StatusResolved].Status)
	assert.Equal(t, "Open", cfg.Statuses[domain.StatusOpen].Status)
	assert.Len(t, cfg.Statuses, 6)
}

func TestConfigForCustomerCachesMergedView(t *testing.T) {
	repo := &fakeStatusRepo{rows: defaultStatusRows(), transitions: []domain.StatusTransition{
		{FromStatus: domain.StatusOpen, ToStatus: domain.StatusInProgress},
	}}
	cache := newFakeCache()
	svc := NewStatusService(repo, cache, time.Minute, zap.NewNop())

	first, err := svc.ConfigForCustomer(context.Background(), "cust-1")
	require.NoError(t, err)
	require.Equal(t, 1, repo.listCalls)
	require.Equal(t, 1, cache.sets)

	second, err := svc.ConfigForCustomer(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.listCalls)

	assert.Equal(t, first.Statuses, second.Statuses)
	assert.True(t, second.Transitions[domain.StatusTransition{FromStatus: domain.StatusOpen, ToStatus: domain.StatusInProgress}])
}

func TestCreateOrUpdateStatusesInvalidatesCache(t *testing.T) {
	repo := &fakeStatusRepo{rows: defaultStatusRows()}
	cache := newFakeCache()
	svc := NewStatusService(repo, cache, time.Minute, zap.NewNop())

	_, err := svc.ConfigForCustomer(context.Background(), "cust-1")
	require.NoError(t, err)
	require.Equal(t, 1, repo.listCalls)

	customer := "cust-1"
	err = svc.CreateOrUpdateStatuses(context.Background(), "cust-1", []domain.TicketStatus{
		{CustomerID: &customer, StatusCode: domain.StatusResolved, Status: "Fixed", Tab: domain.TabResolved},
	})
	require.NoError(t, err)
	require.Len(t, repo.upserted, 1)

	cfg, err := svc.ConfigForCustomer(context.Background(), "cust-1")
	require.NoError(t, err)
	assert.Equal(t, 2, repo.listCalls)
	assert.Equal(t, "Fixed", cfg.Statuses[domain.StatusResolved].Status)
}

func TestCreateOrUpdateStatusesValidation(t *testing.T) {
	svc := newTestStatusService(&fakeStatusRepo{})

	err := svc.CreateOrUpdateStatuses(context.Background(), "", nil)
	require.Error(t, err)
	assert.Equal(t, "CustomerId", apperrors.ToDomainError(err).Details["field"])

	err = svc.CreateOrUpdateStatuses(context.Background(), "cust-1", []domain.TicketStatus{
		{StatusCode: 40, Status: "", Tab: domain.TabOpen},
	})
	require.Error(t, err)
	assert.Equal(t, "Status", apperrors.ToDomainError(err).Details["field"])

	err = svc.CreateOrUpdateStatuses(context.Background(), "cust-1", []domain.TicketStatus{
		{StatusCode: 40, Status: "Parked", Tab: domain.Tab("Archived")},
	})
	require.Error(t, err)
	assert.Equal(t, "Tab", apperrors.ToDomainError(err).Details["field"])
}

func TestStatusConfigTabHelpers(t *testing.T) {
	cfg := buildStatusConfig(defaultStatusRows(), nil)

	assert.Equal(t, domain.TabOpen, cfg.TabOf(domain.StatusInProgress))
	assert.Equal(t, domain.TabClosed, cfg.TabOf(domain.StatusClosed))
	// unknown codes default to the open tab
	assert.Equal(t, domain.TabOpen, cfg.TabOf(99))

	assert.ElementsMatch(t,
		[]int{domain.StatusOpen, domain.StatusReassign, domain.StatusInProgress, domain.StatusLimitedAvailability},
		cfg.CodesInTab(domain.TabOpen))
	assert.ElementsMatch(t, []int{domain.StatusResolved}, cfg.CodesInTab(domain.TabResolved))
}
