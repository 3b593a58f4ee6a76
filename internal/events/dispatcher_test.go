package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublishDeliversToSubscribersInOrder(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	var got []string
	d.Subscribe(EventTicketCreated, func(ctx context.Context, event Event) error {
		got = append(got, "first:"+event.TicketID)
		return nil
	})
	d.Subscribe(EventTicketCreated, func(ctx context.Context, event Event) error {
		got = append(got, "second:"+event.TicketID)
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketCreated, TicketID: "ticket-1"})
	require.NoError(t, err)
	assert.Equal(t, []string{"first:ticket-1", "second:ticket-1"}, got)
}

func TestPublishContinuesPastFailingHandler(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())

	delivered := false
	d.Subscribe(EventTicketAssigned, func(ctx context.Context, event Event) error {
		return errors.New("webhook down")
	})
	d.Subscribe(EventTicketAssigned, func(ctx context.Context, event Event) error {
		delivered = true
		return nil
	})

	err := d.Publish(context.Background(), Event{Type: EventTicketAssigned, TicketID: "ticket-1"})
	require.NoError(t, err)
	assert.True(t, delivered)
}

func TestPublishIgnoresUnsubscribedTypes(t *testing.T) {
	d := NewInMemoryDispatcher(zap.NewNop())
	err := d.Publish(context.Background(), Event{Type: EventTicketCommentAdded})
	assert.NoError(t, err)
}
