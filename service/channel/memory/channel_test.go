package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/conductor/internal/clock"
	"github.com/viant/conductor/service/channel"
)

func TestChannel_RoundTrip(t *testing.T) {
	ctx := context.Background()
	aChannel := New(channel.DefaultConfig())

	require.NoError(t, aChannel.Send(ctx, "42", []byte("result"), time.Minute))
	value, ok, err := aChannel.Receive(ctx, "42")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("result"), value)

	require.NoError(t, aChannel.Send(ctx, "42", []byte("overwritten"), 0))
	value, ok, err = aChannel.FlushMessage(ctx, "42")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("overwritten"), value)

	_, ok, err = aChannel.Receive(ctx, "42")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, aChannel.Len())
}

func TestChannel_Expiry(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	clock.NowFunc = func() time.Time { return now }
	defer func() { clock.NowFunc = time.Now }()

	ctx := context.Background()
	aChannel := New(channel.Config{TTL: time.Second})
	require.NoError(t, aChannel.Send(ctx, "short", []byte("a"), 0))
	require.NoError(t, aChannel.Send(ctx, "long", []byte("b"), time.Hour))

	now = now.Add(2 * time.Second)
	_, ok, err := aChannel.Receive(ctx, "short")
	require.NoError(t, err)
	assert.False(t, ok)
	value, ok, err := aChannel.Receive(ctx, "long")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("b"), value)
	assert.Equal(t, 1, aChannel.Len())
}

func TestChannel_Prefix(t *testing.T) {
	ctx := context.Background()
	first := New(channel.Config{Prefix: "a"})
	require.NoError(t, first.Send(ctx, "k", []byte("v"), 0))
	_, ok, err := first.Receive(ctx, "ak")
	require.NoError(t, err)
	assert.False(t, ok)
}
