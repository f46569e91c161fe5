package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"github.com/kode4food/argyll/editor/internal/config"
	"github.com/kode4food/argyll/editor/pkg/api"
)

// Redis keeps flows and runs as JSON strings, with a set indexing the
// known flow IDs
type Redis struct {
	client *redis.Client
	prefix string
}

var _ Store = (*Redis)(nil)

// NewRedis connects a Redis store using cfg
func NewRedis(cfg config.RedisConfig) *Redis {
	return NewRedisWithClient(redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}), cfg.Prefix)
}

// NewRedisWithClient creates a Redis store on an existing client
func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	return &Redis{
		client: client,
		prefix: prefix,
	}
}

func (r *Redis) GetFlow(
	ctx context.Context, id api.FlowID,
) (*api.FlowVersion, error) {
	data, err := r.get(ctx, r.flowKey(id))
	if err != nil {
		return nil, fmt.Errorf("flow %s: %w", id, err)
	}
	return decodeFlow(data)
}

func (r *Redis) PutFlow(ctx context.Context, v *api.FlowVersion) error {
	if err := checkFlow(v); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, r.flowKey(v.FlowID), data, 0)
		p.SAdd(ctx, r.key("flows"), string(v.FlowID))
		return nil
	})
	return err
}

func (r *Redis) ListFlows(ctx context.Context) ([]api.FlowID, error) {
	ids, err := r.client.SMembers(ctx, r.key("flows")).Result()
	if err != nil {
		return nil, err
	}
	slices.Sort(ids)
	res := make([]api.FlowID, 0, len(ids))
	for _, id := range ids {
		res = append(res, api.FlowID(id))
	}
	return res, nil
}

func (r *Redis) GetRun(
	ctx context.Context, id api.RunID,
) (*api.ExecutionRecord, error) {
	data, err := r.get(ctx, r.runKey(id))
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", id, err)
	}
	return decodeRun(data)
}

func (r *Redis) PutRun(ctx context.Context, rec *api.ExecutionRecord) error {
	if err := checkRun(rec); err != nil {
		return err
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.runKey(rec.ID), data, 0).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return data, err
}

func (r *Redis) flowKey(id api.FlowID) string {
	return r.key("flow", string(id))
}

func (r *Redis) runKey(id api.RunID) string {
	return r.key("run", string(id))
}

func (r *Redis) key(parts ...string) string {
	res := r.prefix
	for _, p := range parts {
		if res != "" {
			res += ":"
		}
		res += p
	}
	return res
}
