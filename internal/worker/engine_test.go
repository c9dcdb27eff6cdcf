package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Additional-Code/procurement/internal/config"
	"github.com/Additional-Code/procurement/internal/messaging"
)

func TestEngine_DispatchByEventType(t *testing.T) {
	var got []string
	record := func(name string) messaging.Handler {
		return func(_ context.Context, msg messaging.Message) error {
			got = append(got, name+":"+string(msg.Value))
			return nil
		}
	}

	engine := NewEngine(Params{
		Client: messaging.NewNoop("events"),
		Logger: zap.NewNop(),
		Registrations: []HandlerRegistration{
			{EventType: "a", Handler: record("a")},
			{EventType: "b", Handler: record("b")},
			{EventType: "", Handler: record("ignored")},
		},
	})

	ctx := context.Background()
	require.NoError(t, engine.Dispatch(ctx, messaging.Message{Value: []byte("1"), Headers: map[string]string{messaging.HeaderEventType: "b"}}))
	require.NoError(t, engine.Dispatch(ctx, messaging.Message{Value: []byte("2"), Headers: map[string]string{messaging.HeaderEventType: "a"}}))
	require.NoError(t, engine.Dispatch(ctx, messaging.Message{Value: []byte("3"), Headers: map[string]string{messaging.HeaderEventType: "unknown"}}))
	require.NoError(t, engine.Dispatch(ctx, messaging.Message{Value: []byte("4")}))

	assert.Equal(t, []string{"b:1", "a:2"}, got)
}

func TestEngine_StartDisabled(t *testing.T) {
	engine := NewEngine(Params{
		Client: messaging.NewNoop("events"),
		Logger: zap.NewNop(),
		Config: config.Config{Messaging: config.Messaging{Enabled: false}},
		Registrations: []HandlerRegistration{
			{EventType: "a", Handler: func(context.Context, messaging.Message) error { return nil }},
		},
	})

	require.NoError(t, engine.Start(context.Background()))
	assert.Nil(t, engine.cancel)
	require.NoError(t, engine.Stop(context.Background()))
}

func TestEngine_StartAndStop(t *testing.T) {
	engine := NewEngine(Params{
		Client: messaging.NewNoop("events"),
		Logger: zap.NewNop(),
		Config: config.Config{Messaging: config.Messaging{
			Enabled: true,
			Workers: config.Worker{Enabled: true, Concurrency: 2},
		}},
		Registrations: []HandlerRegistration{
			{EventType: "a", Handler: func(context.Context, messaging.Message) error { return nil }},
		},
	})

	require.NoError(t, engine.Start(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, engine.Stop(ctx))
}
