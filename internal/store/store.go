package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/kode4food/argyll/editor/internal/config"
	"github.com/kode4food/argyll/editor/pkg/api"
)

// Store persists the current version of each flow and the records of runs
type Store interface {
	GetFlow(ctx context.Context, id api.FlowID) (*api.FlowVersion, error)
	PutFlow(ctx context.Context, v *api.FlowVersion) error
	ListFlows(ctx context.Context) ([]api.FlowID, error)
	GetRun(ctx context.Context, id api.RunID) (*api.ExecutionRecord, error)
	PutRun(ctx context.Context, rec *api.ExecutionRecord) error
	Close() error
}

var (
	ErrNotFound     = errors.New("not found")
	ErrMissingID    = errors.New("missing identifier")
	ErrUnknownStore = errors.New("unknown store kind")
)

// Open creates the Store selected by cfg
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Kind {
	case config.StoreKindRedis:
		return NewRedis(cfg.Redis), nil
	case config.StoreKindBlob:
		return OpenBlob(ctx, cfg.Blob)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStore, cfg.Kind)
	}
}

func decodeFlow(data []byte) (*api.FlowVersion, error) {
	var v api.FlowVersion
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func decodeRun(data []byte) (*api.ExecutionRecord, error) {
	var rec api.ExecutionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func checkFlow(v *api.FlowVersion) error {
	if v == nil || v.FlowID == "" {
		return fmt.Errorf("%w: flow", ErrMissingID)
	}
	return nil
}

func checkRun(rec *api.ExecutionRecord) error {
	if rec == nil || rec.ID == "" {
		return fmt.Errorf("%w: run", ErrMissingID)
	}
	return nil
}
