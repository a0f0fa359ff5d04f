package events

import (
	"context"
	"errors"
	"testing"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	calls := 0
	dispatcher.Subscribe(EventTicketAssigned, func(_ context.Context, _ Event) error {
		calls++
		return nil
	})
	dispatcher.Subscribe(EventTicketAssigned, func(_ context.Context, _ Event) error {
		calls++
		return nil
	})
	dispatcher.Subscribe(EventTicketCancelled, func(_ context.Context, _ Event) error {
		calls++
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketAssigned}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 handler calls, got %d", calls)
	}
}

func TestHandlerErrorDoesNotStopDelivery(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	delivered := false
	dispatcher.Subscribe(EventTicketTransferred, func(_ context.Context, _ Event) error {
		return errors.New("handler failed")
	})
	dispatcher.Subscribe(EventTicketTransferred, func(_ context.Context, _ Event) error {
		delivered = true
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventTicketTransferred}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if !delivered {
		t.Fatal("a failing handler must not block later handlers")
	}
}
