package store_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"

	"github.com/kode4food/argyll/editor/internal/config"
	"github.com/kode4food/argyll/editor/internal/store"
	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/builder"

	_ "gocloud.dev/blob/memblob"
)

func stores(t *testing.T) map[string]store.Store {
	t.Helper()
	mr := miniredis.RunT(t)
	rs := store.NewRedisWithClient(
		redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test",
	)

	b, err := blob.OpenBucket(context.Background(), "mem://")
	require.NoError(t, err)
	bs := store.NewBlob(b, "editor")

	res := map[string]store.Store{"redis": rs, "blob": bs}
	t.Cleanup(func() {
		for _, s := range res {
			_ = s.Close()
		}
	})
	return res
}

func TestFlows(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := s.GetFlow(ctx, "flow-b")
			assert.ErrorIs(t, err, store.ErrNotFound)

			v := builder.NewFlow("flow-b").WithActions(
				builder.NewStep("step_1").
					WithPiece("http", "0.1.0", "send_request").
					Build(),
			).Build()
			require.NoError(t, s.PutFlow(ctx, v))
			require.NoError(t, s.PutFlow(ctx, builder.NewFlow("flow-a").Build()))

			got, err := s.GetFlow(ctx, "flow-b")
			require.NoError(t, err)
			assert.Equal(t, v.ID, got.ID)
			assert.Equal(t, api.StepName("step_1"), got.Trigger.Next.Name)

			ids, err := s.ListFlows(ctx)
			require.NoError(t, err)
			assert.Equal(t, []api.FlowID{"flow-a", "flow-b"}, ids)

			upd := v.Copy()
			upd.DisplayName = "Renamed"
			require.NoError(t, s.PutFlow(ctx, upd))
			got, err = s.GetFlow(ctx, "flow-b")
			require.NoError(t, err)
			assert.Equal(t, "Renamed", got.DisplayName)

			assert.ErrorIs(t, s.PutFlow(ctx, &api.FlowVersion{}), store.ErrMissingID)
		})
	}
}

func TestRuns(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := s.GetRun(ctx, "run-1")
			assert.ErrorIs(t, err, store.ErrNotFound)

			rec := &api.ExecutionRecord{
				ID:     "run-1",
				Status: api.RunFailed,
				Steps: map[api.StepName]*api.StepOutput{
					"step_1": {
						Status:       api.StepFailed,
						ErrorMessage: "timeout",
					},
				},
			}
			require.NoError(t, s.PutRun(ctx, rec))
			got, err := s.GetRun(ctx, "run-1")
			require.NoError(t, err)
			assert.Equal(t, api.RunFailed, got.Status)
			assert.Equal(t, "timeout", got.Steps["step_1"].ErrorMessage)

			assert.ErrorIs(t, s.PutRun(ctx, nil), store.ErrMissingID)
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	cfg := config.NewDefaultConfig().Store
	cfg.Kind = config.StoreKindBlob
	s, err := store.Open(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &store.Blob{}, s)
	assert.NoError(t, s.Close())

	mr := miniredis.RunT(t)
	cfg.Kind = config.StoreKindRedis
	cfg.Redis.Addr = mr.Addr()
	s, err = store.Open(ctx, cfg)
	require.NoError(t, err)
	assert.IsType(t, &store.Redis{}, s)
	assert.NoError(t, s.Close())

	cfg.Kind = "etcd"
	_, err = store.Open(ctx, cfg)
	assert.ErrorIs(t, err, store.ErrUnknownStore)
}
