package clipboard

import (
	"context"
	"errors"
	"sync"
	"time"

	osclip "github.com/atotto/clipboard"
	"github.com/redis/go-redis/v9"

	"github.com/kode4food/argyll/editor/internal/operation"
	"github.com/kode4food/argyll/editor/pkg/api"
)

type (
	// Clipboard is an opaque text channel shared between copy and paste
	Clipboard interface {
		Read(ctx context.Context) (string, error)
		Write(ctx context.Context, text string) error
	}

	// Memory is a process-local Clipboard
	Memory struct {
		mu   sync.Mutex
		text string
	}

	// Redis keeps clipboard text under a Redis key, so that editors
	// connected to the same Redis share one clipboard
	Redis struct {
		client *redis.Client
		key    string
		ttl    time.Duration
	}

	// System uses the operating system clipboard
	System struct{}
)

// DefaultRedisTTL bounds how long copied steps stay available in Redis
const DefaultRedisTTL = 24 * time.Hour

var (
	ErrSystemUnavailable = errors.New("system clipboard unavailable")
	ErrNothingToPaste    = errors.New("nothing to paste")
)

// NewMemory creates an empty in-memory clipboard
func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Read(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

func (m *Memory) Write(_ context.Context, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

// NewRedis creates a clipboard stored under key
func NewRedis(client *redis.Client, key string, ttl time.Duration) *Redis {
	return &Redis{
		client: client,
		key:    key,
		ttl:    ttl,
	}
}

func (r *Redis) Read(ctx context.Context) (string, error) {
	res, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return res, err
}

func (r *Redis) Write(ctx context.Context, text string) error {
	return r.client.Set(ctx, r.key, text, r.ttl).Err()
}

// NewSystem returns the OS clipboard, or ErrSystemUnavailable when the
// platform provides no clipboard utility
func NewSystem() (*System, error) {
	if osclip.Unsupported {
		return nil, ErrSystemUnavailable
	}
	return &System{}, nil
}

func (System) Read(context.Context) (string, error) {
	return osclip.ReadAll()
}

func (System) Write(_ context.Context, text string) error {
	return osclip.WriteAll(text)
}

// Copy writes the selected steps of v to cb and reports how many top-level
// steps were copied. Nothing is written when the selection holds no actions
func Copy(
	ctx context.Context, cb Clipboard, v *api.FlowVersion,
	names []api.StepName,
) (int, error) {
	steps := CopySelection(v, names)
	if len(steps) == 0 {
		return 0, nil
	}
	text, err := Serialize(steps)
	if err != nil {
		return 0, err
	}
	if err := cb.Write(ctx, text); err != nil {
		return 0, err
	}
	return len(steps), nil
}

// Paste reads cb and returns the operations inserting its steps at loc.
// Foreign or empty clipboard content yields ErrNothingToPaste
func Paste(
	ctx context.Context, cb Clipboard, v *api.FlowVersion, loc Location,
) ([]api.Operation, error) {
	text, err := cb.Read(ctx)
	if err != nil {
		return nil, err
	}
	ops := BuildPasteOperations(Deserialize(text), v, loc)
	if len(ops) == 0 {
		return nil, ErrNothingToPaste
	}
	return ops, nil
}

// ApplyAll applies ops to v in order, stopping at the first failure
func ApplyAll(
	v *api.FlowVersion, ops []api.Operation,
) (*api.FlowVersion, error) {
	res := v
	for _, op := range ops {
		next, err := operation.Apply(res, op)
		if err != nil {
			return nil, err
		}
		res = next
	}
	return res, nil
}
