package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDispatcher_PublishFillsIDAndContinuesAfterFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	d := NewInMemoryDispatcher(zap.New(core))

	var seen []Event
	d.Subscribe(EventStaffDeleted, func(context.Context, Event) error {
		return errors.New("insert failed")
	})
	d.Subscribe(EventStaffDeleted, func(_ context.Context, e Event) error {
		seen = append(seen, e)
		return nil
	})
	d.Subscribe(EventStaffCreated, func(context.Context, Event) error {
		t.Fatal("wrong event type delivered")
		return nil
	})

	d.Publish(context.Background(), Event{Type: EventStaffDeleted, SubjectID: "s-1"})

	if assert.Len(t, seen, 1) {
		assert.NotEmpty(t, seen[0].ID)
		assert.False(t, seen[0].Timestamp.IsZero())
		assert.Equal(t, "s-1", seen[0].SubjectID)
	}
	assert.Equal(t, 1, logs.FilterMessage("event handler failed").Len())
}

func TestDispatcher_NoSubscribers(t *testing.T) {
	d := NewInMemoryDispatcher(nil)
	assert.NotPanics(t, func() {
		d.Publish(context.Background(), Event{Type: EventAuditLogViewed})
	})
}
