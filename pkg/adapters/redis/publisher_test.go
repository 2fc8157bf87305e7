package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/genie/pkg/adapters/redis"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, opts ...redis.Option) (*miniredis.Miniredis, *redis.Publisher) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	pub := redis.NewFromClient(client, opts...)
	t.Cleanup(func() { _ = pub.Close() })
	return mr, pub
}

func receive(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()
	select {
	case msg := <-ch:
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestRedisPublisher_RoundTrip(t *testing.T) {
	_, pub := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, pub.Ping(ctx))

	ch, err := pub.Subscribe(ctx, "s1")
	require.NoError(t, err)

	require.NoError(t, pub.Publish(ctx, "s1", []byte(`{"phase":"busy"}`)))
	assert.JSONEq(t, `{"phase":"busy"}`, string(receive(t, ch)))
}

func TestRedisPublisher_IsolatesSessions(t *testing.T) {
	_, pub := setup(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s1, err := pub.Subscribe(ctx, "s1")
	require.NoError(t, err)
	s2, err := pub.Subscribe(ctx, "s2")
	require.NoError(t, err)

	require.NoError(t, pub.Publish(ctx, "s2", []byte("two")))
	assert.Equal(t, []byte("two"), receive(t, s2))

	select {
	case msg := <-s1:
		t.Fatalf("unexpected message on s1: %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRedisPublisher_Prefix(t *testing.T) {
	mr, pub := setup(t, redis.WithPrefix("test:"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err := pub.Subscribe(ctx, "s1")
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return mr.PubSubNumSub("test:s1")["test:s1"] == 1
	}, time.Second, 10*time.Millisecond)
}

func TestRedisPublisher_ClosesOnCancel(t *testing.T) {
	_, pub := setup(t)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := pub.Subscribe(ctx, "s1")
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-ch:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
