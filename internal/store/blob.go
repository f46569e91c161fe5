package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"slices"
	"strings"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	"github.com/kode4food/argyll/editor/internal/config"
	"github.com/kode4food/argyll/editor/pkg/api"
)

// Blob keeps flows and runs as JSON objects in a bucket, one object per
// flow and per run
type Blob struct {
	bucket *blob.Bucket
	prefix string
}

const (
	flowsDir = "flows/"
	runsDir  = "runs/"
	jsonExt  = ".json"
)

var _ Store = (*Blob)(nil)

// OpenBlob opens the bucket addressed by cfg.URL. Bucket drivers register
// themselves through blank imports
func OpenBlob(ctx context.Context, cfg config.BlobConfig) (*Blob, error) {
	b, err := blob.OpenBucket(ctx, cfg.URL)
	if err != nil {
		return nil, err
	}
	return NewBlob(b, cfg.Prefix), nil
}

// NewBlob creates a Blob store on an open bucket. The store takes
// ownership of the bucket
func NewBlob(bucket *blob.Bucket, prefix string) *Blob {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Blob{
		bucket: bucket,
		prefix: prefix,
	}
}

func (b *Blob) GetFlow(
	ctx context.Context, id api.FlowID,
) (*api.FlowVersion, error) {
	data, err := b.read(ctx, b.flowKey(id))
	if err != nil {
		return nil, fmt.Errorf("flow %s: %w", id, err)
	}
	return decodeFlow(data)
}

func (b *Blob) PutFlow(ctx context.Context, v *api.FlowVersion) error {
	if err := checkFlow(v); err != nil {
		return err
	}
	return b.write(ctx, b.flowKey(v.FlowID), v)
}

func (b *Blob) ListFlows(ctx context.Context) ([]api.FlowID, error) {
	var res []api.FlowID
	it := b.bucket.List(&blob.ListOptions{Prefix: b.prefix + flowsDir})
	for {
		obj, err := it.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(path.Base(obj.Key), jsonExt)
		res = append(res, api.FlowID(name))
	}
	slices.Sort(res)
	return res, nil
}

func (b *Blob) GetRun(
	ctx context.Context, id api.RunID,
) (*api.ExecutionRecord, error) {
	data, err := b.read(ctx, b.runKey(id))
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", id, err)
	}
	return decodeRun(data)
}

func (b *Blob) PutRun(ctx context.Context, rec *api.ExecutionRecord) error {
	if err := checkRun(rec); err != nil {
		return err
	}
	return b.write(ctx, b.runKey(rec.ID), rec)
}

func (b *Blob) Close() error {
	return b.bucket.Close()
}

func (b *Blob) read(ctx context.Context, key string) ([]byte, error) {
	data, err := b.bucket.ReadAll(ctx, key)
	if gcerrors.Code(err) == gcerrors.NotFound {
		return nil, ErrNotFound
	}
	return data, err
}

func (b *Blob) write(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.bucket.WriteAll(ctx, key, data, &blob.WriterOptions{
		ContentType: "application/json",
	})
}

func (b *Blob) flowKey(id api.FlowID) string {
	return b.prefix + flowsDir + string(id) + jsonExt
}

func (b *Blob) runKey(id api.RunID) string {
	return b.prefix + runsDir + string(id) + jsonExt
}
