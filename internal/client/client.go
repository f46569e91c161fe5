package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/log"
)

type (
	// Client talks to a reconciler over HTTP. It is the Remote of an
	// editing session and the Fetcher of its run poller
	Client struct {
		httpClient *http.Client
		dialer     *websocket.Dialer
		baseURL    string
	}

	// RunFunc receives every record streamed by WatchRun
	RunFunc func(*api.ExecutionRecord)
)

var (
	ErrCreateFlow     = errors.New("failed to create flow")
	ErrGetFlow        = errors.New("failed to get flow")
	ErrApplyOperation = errors.New("failed to apply operation")
	ErrGetRun         = errors.New("failed to get run")
	ErrPutRun         = errors.New("failed to put run")
	ErrWatchRun       = errors.New("failed to watch run")
	ErrNotFound       = errors.New("not found")
	ErrConflict       = errors.New("conflict")
)

const (
	routeFlows = "/v1/flows"
	routeRuns  = "/v1/runs"

	userAgent = "Argyll-Editor/1.0"
)

// NewClient creates a Client for the reconciler at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		dialer: &websocket.Dialer{
			HandshakeTimeout: timeout,
		},
	}
}

// CreateFlow creates a flow and returns its first draft version
func (c *Client) CreateFlow(
	ctx context.Context, req api.CreateFlowRequest,
) (*api.FlowVersion, error) {
	var res api.VersionResponse
	err := c.do(ctx, http.MethodPost, routeFlows, req, &res, ErrCreateFlow)
	if err != nil {
		return nil, err
	}
	return res.Version, nil
}

// GetFlow returns the current version of a flow
func (c *Client) GetFlow(
	ctx context.Context, id api.FlowID,
) (*api.FlowVersion, error) {
	var res api.VersionResponse
	err := c.do(ctx, http.MethodGet, flowPath(id), nil, &res, ErrGetFlow)
	if err != nil {
		return nil, err
	}
	return res.Version, nil
}

// ApplyOperation sends op to the reconciler and returns the canonical
// version it produced
func (c *Client) ApplyOperation(
	ctx context.Context, id api.FlowID, op api.Operation,
) (*api.FlowVersion, error) {
	var res api.VersionResponse
	err := c.do(ctx, http.MethodPost, flowPath(id)+"/operations",
		api.OperationMessage{Operation: op}, &res, ErrApplyOperation,
	)
	if err != nil {
		return nil, err
	}
	return res.Version, nil
}

// GetRun returns the current record of a run
func (c *Client) GetRun(
	ctx context.Context, id api.RunID,
) (*api.ExecutionRecord, error) {
	var res api.ExecutionRecord
	if err := c.do(ctx, http.MethodGet, runPath(id), nil, &res, ErrGetRun); err != nil {
		return nil, err
	}
	return &res, nil
}

// PutRun stores a run record, as reported by a flow runtime
func (c *Client) PutRun(ctx context.Context, rec *api.ExecutionRecord) error {
	return c.do(ctx, http.MethodPut, runPath(rec.ID), rec, nil, ErrPutRun)
}

// WatchRun streams a run's records over a WebSocket, handing each to fn,
// until a terminal record arrives, the server closes the stream or ctx is
// cancelled
func (c *Client) WatchRun(
	ctx context.Context, id api.RunID, fn RunFunc,
) error {
	u, err := c.wsURL(runPath(id) + "/ws")
	if err != nil {
		return err
	}
	conn, resp, err := c.dialer.DialContext(ctx, u, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("%w: status %d", ErrWatchRun, resp.StatusCode)
		}
		return fmt.Errorf("%w: %w", ErrWatchRun, err)
	}
	defer func() { _ = conn.Close() }()

	stop := context.AfterFunc(ctx, func() {
		_ = conn.Close()
	})
	defer stop()

	for {
		var rec api.ExecutionRecord
		if err := conn.ReadJSON(&rec); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("%w: %w", ErrWatchRun, err)
		}
		fn(&rec)
		if rec.Status.IsTerminal() {
			return nil
		}
	}
}

func (c *Client) do(
	ctx context.Context, method, path string, body, out any, fail error,
) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Debug("Reconciler request failed",
			slog.String("method", method),
			slog.String("path", path),
			log.Error(err))
		return fmt.Errorf("%w: %w", fail, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK &&
		resp.StatusCode != http.StatusCreated {
		return statusError(fail, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %w", fail, err)
	}
	return nil
}

func (c *Client) wsURL(path string) (string, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	return u.String(), nil
}

func statusError(fail error, resp *http.Response) error {
	msg := readError(resp.Body)
	switch resp.StatusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w: %s", fail, ErrNotFound, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %w: %s", fail, ErrConflict, msg)
	default:
		return fmt.Errorf("%w: status %d, body: %s",
			fail, resp.StatusCode, msg)
	}
}

func readError(r io.Reader) string {
	body, _ := io.ReadAll(r)
	var e api.ErrorResponse
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return string(body)
}

func flowPath(id api.FlowID) string {
	return routeFlows + "/" + url.PathEscape(string(id))
}

func runPath(id api.RunID) string {
	return routeRuns + "/" + url.PathEscape(string(id))
}
