package eventbus_test

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orgkit/presence/pkg/eventbus"
)

type createdEvent struct {
	ID uint
}

func TestEventBus_PublishToMatchingSubscriber(t *testing.T) {
	t.Parallel()

	bus := eventbus.NewEventPublisher(logrus.New())

	var received []uint
	bus.Subscribe(func(e createdEvent) {
		received = append(received, e.ID)
	})
	bus.Subscribe(func(s string) {
		t.Errorf("string handler must not fire for createdEvent")
	})

	bus.Publish(createdEvent{ID: 7})
	require.Len(t, received, 1)
	assert.Equal(t, uint(7), received[0])
}

func TestEventBus_PanickingHandlerDoesNotStopOthers(t *testing.T) {
	t.Parallel()

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	bus := eventbus.NewEventPublisher(logger)

	var called bool
	bus.Subscribe(func(e createdEvent) { panic("boom") })
	bus.Subscribe(func(e createdEvent) { called = true })

	assert.NotPanics(t, func() { bus.Publish(createdEvent{ID: 1}) })
	assert.True(t, called)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	t.Parallel()

	bus := eventbus.NewEventPublisher(logrus.New())
	handler := func(e createdEvent) { t.Errorf("unsubscribed handler fired") }
	bus.Subscribe(handler)
	require.Equal(t, 1, bus.SubscribersCount())

	bus.Unsubscribe(handler)
	assert.Equal(t, 0, bus.SubscribersCount())
	bus.Publish(createdEvent{ID: 1})
}

func TestMatchSignature(t *testing.T) {
	t.Parallel()

	assert.True(t, eventbus.MatchSignature(func(e createdEvent) {}, []interface{}{createdEvent{}}))
	assert.False(t, eventbus.MatchSignature(func(e createdEvent) {}, []interface{}{"nope"}))
	assert.False(t, eventbus.MatchSignature(42, []interface{}{createdEvent{}}))
}
