package clipboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/kode4food/argyll/editor/internal/clipboard"
	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/builder"
)

func TestMemory(t *testing.T) {
	ctx := context.Background()
	cb := clipboard.NewMemory()

	text, err := cb.Read(ctx)
	assert.NoError(t, err)
	assert.Empty(t, text)

	assert.NoError(t, cb.Write(ctx, "hello"))
	text, err = cb.Read(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestRedis(t *testing.T) {
	server, err := miniredis.Run()
	assert.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer func() { _ = client.Close() }()

	ctx := context.Background()
	cb := clipboard.NewRedis(client, "clipboard:user-1", time.Minute)

	text, err := cb.Read(ctx)
	assert.NoError(t, err)
	assert.Empty(t, text)

	assert.NoError(t, cb.Write(ctx, "copied"))
	text, err = cb.Read(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "copied", text)

	other := clipboard.NewRedis(client, "clipboard:user-1", time.Minute)
	text, err = other.Read(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "copied", text)

	server.FastForward(2 * time.Minute)
	text, err = cb.Read(ctx)
	assert.NoError(t, err)
	assert.Empty(t, text)
}

func TestCopyPaste(t *testing.T) {
	ctx := context.Background()
	cb := clipboard.NewMemory()
	v := builder.NewFlow("flow-1").WithActions(
		builder.NewStep("step_1").Build(),
	).Build()

	n, err := clipboard.Copy(ctx, cb, v, []api.StepName{"step_1"})
	assert.NoError(t, err)
	assert.Equal(t, 1, n)

	ops, err := clipboard.Paste(ctx, cb, v, clipboard.AfterLastStep(v))
	assert.NoError(t, err)
	assert.Len(t, ops, 1)

	n, err = clipboard.Copy(ctx, cb, v, []api.StepName{"trigger"})
	assert.NoError(t, err)
	assert.Zero(t, n)

	assert.NoError(t, cb.Write(ctx, "hello, not ours"))
	ops, err = clipboard.Paste(ctx, cb, v, clipboard.AfterLastStep(v))
	assert.ErrorIs(t, err, clipboard.ErrNothingToPaste)
	assert.Empty(t, ops)

	ops, err = clipboard.Paste(ctx, clipboard.NewMemory(), v,
		clipboard.AfterLastStep(v),
	)
	assert.ErrorIs(t, err, clipboard.ErrNothingToPaste)
	assert.Empty(t, ops)
}
