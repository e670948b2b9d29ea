package mq

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestDispatch(t *testing.T) {
	var got Event
	Dispatch(context.Background(), zap.NewNop(),
		[]byte(`{"type":"recipe.created","entity_id":"abc","at":"2026-02-01T10:00:00Z"}`),
		func(_ context.Context, ev Event) error {
			got = ev
			return nil
		})

	assert.Equal(t, EventRecipeCreated, got.Type)
	assert.Equal(t, "abc", got.EntityID)
	assert.Equal(t, 2026, got.At.Year())
}

func TestDispatchLogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	log := zap.New(core)
	called := 0

	Dispatch(context.Background(), log, []byte(`not json`), func(context.Context, Event) error {
		called++
		return nil
	})
	Dispatch(context.Background(), log, []byte(`{"type":"favorite.toggled"}`), func(context.Context, Event) error {
		called++
		return errors.New("boom")
	})

	assert.Equal(t, 1, called)
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "unreadable event", logs.All()[0].Message)
	assert.Equal(t, "event handler failed", logs.All()[1].Message)
}

func TestNop(t *testing.T) {
	var e Emitter = Nop{}
	assert.NoError(t, e.Emit(context.Background(), Event{Type: EventRecipeCreated}))
}
