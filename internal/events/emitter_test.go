package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	events []*NotificationEvent
	err    error
}

func (h *recordingHandler) HandleEvent(_ context.Context, event *NotificationEvent) error {
	h.events = append(h.events, event)
	return h.err
}

func testEmitter() *InMemoryEventEmitter {
	return NewInMemoryEventEmitter(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestEmitEventReachesAllHandlers(t *testing.T) {
	t.Parallel()

	emitter := testEmitter()
	first := &recordingHandler{}
	second := &recordingHandler{}
	emitter.RegisterHandler(first)
	emitter.RegisterHandler(second)

	event, err := NewNotificationEvent(TypeUserRegistered, UserRegisteredPayload{
		Email: "jane@example.com",
	})
	require.NoError(t, err)

	require.NoError(t, emitter.EmitEvent(context.Background(), event))
	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1)
	assert.Equal(t, TypeUserRegistered, first.events[0].Type)
}

func TestEmitEventContinuesPastFailingHandler(t *testing.T) {
	t.Parallel()

	emitter := testEmitter()
	failing := &recordingHandler{err: errors.New("smtp down")}
	healthy := &recordingHandler{}
	emitter.RegisterHandler(failing)
	emitter.RegisterHandler(healthy)

	event, err := NewNotificationEvent(TypeOfferGranted, OfferGrantedPayload{
		Email:     "jane@example.com",
		OfferName: "Spring Special",
	})
	require.NoError(t, err)

	emitErr := emitter.EmitEvent(context.Background(), event)
	assert.EqualError(t, emitErr, "smtp down")
	assert.Len(t, healthy.events, 1, "later handlers still run")
}

func TestEmitEventWithoutHandlers(t *testing.T) {
	t.Parallel()

	emitter := testEmitter()
	event, err := NewNotificationEvent(TypeOrderCancelled, OrderCancelledPayload{})
	require.NoError(t, err)

	assert.NoError(t, emitter.EmitEvent(context.Background(), event))
}

func TestNotificationEventPayloadRoundTrip(t *testing.T) {
	t.Parallel()

	event, err := NewNotificationEvent(TypeGiftCardPurchased, GiftCardPurchasedPayload{
		RecipientEmail: "friend@example.com",
		Code:           "ABCD-EFGH-JKLM",
		Amount:         75,
	})
	require.NoError(t, err)
	assert.NotEqual(t, "", event.ID.String())

	var payload GiftCardPurchasedPayload
	require.NoError(t, event.UnmarshalPayload(&payload))
	assert.Equal(t, "ABCD-EFGH-JKLM", payload.Code)
	assert.Equal(t, 75.0, payload.Amount)
}
