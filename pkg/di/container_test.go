package di

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"task-tracker/domain/ports"
	"task-tracker/infrastructure/websocket"
)

type fakeBrokerPublisher struct{}

func (fakeBrokerPublisher) PublishTaskEvent(ctx context.Context, event *ports.TaskEvent) error {
	return nil
}

type fakeBrokerSubscriber struct {
	subscribeErr error
	handler      ports.TaskEventHandler
}

func (s *fakeBrokerSubscriber) Subscribe(ctx context.Context, handler ports.TaskEventHandler) error {
	if s.subscribeErr != nil {
		return s.subscribeErr
	}
	s.handler = handler
	return nil
}

func (s *fakeBrokerSubscriber) Unsubscribe() error { return nil }

func newMessagingContainer() *Container {
	broadcaster := websocket.NewTaskEventBroadcaster(websocket.NewWebSocketManager())
	return &Container{
		TaskEventBroadcaster: broadcaster,
		TaskEventPublisher:   broadcaster,
	}
}

func TestRouteTaskEvents_UsesBrokerWhenSubscribed(t *testing.T) {
	c := newMessagingContainer()
	defer c.TaskEventBroadcaster.Stop()

	publisher := fakeBrokerPublisher{}
	subscriber := &fakeBrokerSubscriber{}
	c.routeTaskEvents(publisher, subscriber)

	require.NotNil(t, subscriber.handler)
	assert.Equal(t, ports.TaskEventPublisher(publisher), c.TaskEventPublisher)
	assert.Same(t, subscriber, c.TaskEventSubscriber)
}

func TestRouteTaskEvents_FallsBackWhenSubscribeFails(t *testing.T) {
	c := newMessagingContainer()

	subscriber := &fakeBrokerSubscriber{subscribeErr: errors.New("nats: connection closed")}
	c.routeTaskEvents(fakeBrokerPublisher{}, subscriber)

	assert.Same(t, c.TaskEventBroadcaster, c.TaskEventPublisher)
	assert.Nil(t, c.TaskEventSubscriber)
}
