package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/blob"

	"github.com/kode4food/argyll/editor/internal/server"
	"github.com/kode4food/argyll/editor/internal/store"
	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/builder"

	_ "gocloud.dev/blob/memblob"
)

type testEnv struct {
	Server *server.Server
	Store  store.Store
	Router *gin.Engine
}

func testServer(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	b, err := blob.OpenBucket(context.Background(), "mem://")
	require.NoError(t, err)
	st := store.NewBlob(b, "")
	srv := server.NewServer(st)
	t.Cleanup(func() {
		srv.Close()
		_ = st.Close()
	})
	return &testEnv{
		Server: srv,
		Store:  st,
		Router: srv.SetupRoutes(),
	}
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var data []byte
	if body != nil {
		data, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seed(t *testing.T, v *api.FlowVersion) {
	t.Helper()
	require.NoError(t, e.Store.PutFlow(context.Background(), v))
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var res T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestHealth(t *testing.T) {
	env := testServer(t)
	w := env.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode[api.HealthResponse](t, w).Status)
}

func TestCreateFlow(t *testing.T) {
	env := testServer(t)

	w := env.do(http.MethodPost, "/v1/flows", api.CreateFlowRequest{
		ID: "flow-1", DisplayName: "Orders",
	})
	assert.Equal(t, http.StatusCreated, w.Code)
	v := decode[api.VersionResponse](t, w).Version
	assert.Equal(t, api.FlowID("flow-1"), v.FlowID)
	assert.Equal(t, "Orders", v.DisplayName)
	assert.Equal(t, api.VersionDraft, v.State)

	w = env.do(http.MethodPost, "/v1/flows", api.CreateFlowRequest{
		ID: "flow-1",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(http.MethodPost, "/v1/flows", nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	v = decode[api.VersionResponse](t, w).Version
	assert.Equal(t, "Untitled", v.DisplayName)
	assert.NotEmpty(t, v.FlowID)

	w = env.do(http.MethodGet, "/v1/flows", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]api.FlowID](t, w), 2)
}

func TestCreateFlowInvalidBody(t *testing.T) {
	env := testServer(t)
	req := httptest.NewRequest(http.MethodPost, "/v1/flows",
		bytes.NewReader([]byte("{not json")),
	)
	w := httptest.NewRecorder()
	env.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetFlow(t *testing.T) {
	env := testServer(t)
	env.seed(t, builder.NewFlow("flow-1").Build())

	w := env.do(http.MethodGet, "/v1/flows/flow-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/v1/flows/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, http.StatusNotFound, decode[api.ErrorResponse](t, w).Status)
}

func TestApplyOperation(t *testing.T) {
	env := testServer(t)
	env.seed(t, builder.NewFlow("flow-1").WithActions(
		builder.NewStep("step_1").Build(),
	).Build())

	w := env.do(http.MethodPost, "/v1/flows/flow-1/operations",
		api.OperationMessage{Operation: api.AddAction{
			ParentStep: "step_1",
			Action:     builder.NewStep("").AsLoop("{{x}}", nil).Build(),
		}},
	)
	require.Equal(t, http.StatusOK, w.Code)
	v := decode[api.VersionResponse](t, w).Version
	assert.Equal(t, api.StepName("step_2"), v.Trigger.Next.Next.Name)
	assert.False(t, v.UpdatedAt.IsZero())

	stored, err := env.Store.GetFlow(context.Background(), "flow-1")
	require.NoError(t, err)
	assert.Equal(t, api.StepTypeLoop, stored.Trigger.Next.Next.Type())
}

func TestApplyOperationErrors(t *testing.T) {
	env := testServer(t)
	env.seed(t, builder.NewFlow("flow-1").WithActions(
		builder.NewStep("step_1").Build(),
	).Build())
	env.seed(t, builder.NewFlow("locked").Locked().Build())

	tests := []struct {
		name   string
		flow   string
		op     api.Operation
		status int
	}{
		{
			name: "invalid location",
			flow: "flow-1",
			op: api.AddAction{
				ParentStep: "missing",
				Action:     builder.NewStep("").Build(),
			},
			status: http.StatusBadRequest,
		},
		{
			name: "duplicate name",
			flow: "flow-1",
			op: api.AddAction{
				ParentStep: "step_1",
				Action:     builder.NewStep("step_1").Build(),
			},
			status: http.StatusBadRequest,
		},
		{
			name:   "readonly",
			flow:   "locked",
			op:     api.ChangeName{DisplayName: "x"},
			status: http.StatusConflict,
		},
		{
			name:   "unknown flow",
			flow:   "missing",
			op:     api.LockFlow{},
			status: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodPost, "/v1/flows/"+tt.flow+"/operations",
				api.OperationMessage{Operation: tt.op},
			)
			assert.Equal(t, tt.status, w.Code)
		})
	}

	w := env.do(http.MethodPost, "/v1/flows/flow-1/operations",
		map[string]any{"type": "EXPLODE", "request": map[string]any{}},
	)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRuns(t *testing.T) {
	env := testServer(t)

	w := env.do(http.MethodGet, "/v1/runs/run-1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodPut, "/v1/runs/run-1", api.ExecutionRecord{
		Status: api.RunRunning,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/v1/runs/run-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	rec := decode[api.ExecutionRecord](t, w)
	assert.Equal(t, api.RunID("run-1"), rec.ID)
	assert.Equal(t, api.RunRunning, rec.Status)

	w = env.do(http.MethodPut, "/v1/runs/run-1", api.ExecutionRecord{
		ID: "run-2",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRunsAfterClose(t *testing.T) {
	env := testServer(t)
	env.Server.Close()
	env.Server.Close()

	w := env.do(http.MethodPut, "/v1/runs/run-1", api.ExecutionRecord{
		Status: api.RunSucceeded,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.do(http.MethodGet, "/v1/runs/run-1", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, api.RunSucceeded,
		decode[api.ExecutionRecord](t, w).Status,
	)
}

func TestRunWebSocket(t *testing.T) {
	env := testServer(t)
	ts := httptest.NewServer(env.Router)
	defer ts.Close()

	w := env.do(http.MethodPut, "/v1/runs/run-1", api.ExecutionRecord{
		Status: api.RunRunning,
	})
	require.Equal(t, http.StatusOK, w.Code)

	received := make(chan api.RunStatus, 8)
	done := make(chan error, 1)
	go func() {
		done <- watchRun(ts.URL, "run-1", received)
	}()

	select {
	case st := <-received:
		assert.Equal(t, api.RunRunning, st)
	case <-time.After(time.Second):
		t.Fatal("initial record not streamed")
	}

	env.do(http.MethodPut, "/v1/runs/other", api.ExecutionRecord{
		Status: api.RunFailed,
	})
	env.do(http.MethodPut, "/v1/runs/run-1", api.ExecutionRecord{
		Status: api.RunSucceeded,
	})

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("stream did not end")
	}

	last := api.RunRunning
	for len(received) > 0 {
		last = <-received
	}
	assert.Equal(t, api.RunSucceeded, last)
}
