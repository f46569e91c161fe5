package server_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	as "github.com/kode4food/argyll/editor/internal/assert"
	"github.com/kode4food/argyll/editor/internal/client"
	"github.com/kode4food/argyll/editor/internal/session"
	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/builder"
)

func watchRun(url string, id api.RunID, out chan<- api.RunStatus) error {
	c := client.NewClient(url, time.Second)
	return c.WatchRun(context.Background(), id,
		func(rec *api.ExecutionRecord) {
			out <- rec.Status
		},
	)
}

func TestSessionAgainstServer(t *testing.T) {
	a := as.New(t)
	env := testServer(t)
	ts := httptest.NewServer(env.Router)
	defer ts.Close()

	ctx := context.Background()
	c := client.NewClient(ts.URL, 5*time.Second)
	v, err := c.CreateFlow(ctx, api.CreateFlowRequest{
		ID: "flow-1", DisplayName: "Orders",
	})
	require.NoError(t, err)

	s, err := session.New(session.Dependencies{
		Remote:        c,
		Runs:          c,
		DebounceDelay: 10 * time.Millisecond,
		PollInterval:  10 * time.Millisecond,
	}, v)
	require.NoError(t, err)
	s.Start(ctx)
	defer s.Stop()

	_, err = s.Apply(api.AddAction{
		ParentStep: "trigger",
		Action: builder.NewStep("").
			AsRouter(api.ExecuteFirstMatch).
			WithBranch("Branch 1", builder.NewStep("").Build()).
			Build(),
	})
	require.NoError(t, err)

	upd := s.Version().Trigger.Next.Copy()
	upd.DisplayName = "Route order"
	_, err = s.Apply(api.UpdateAction{Action: upd})
	require.NoError(t, err)
	_, err = s.Apply(api.ChangeName{DisplayName: "Order routing"})
	require.NoError(t, err)

	require.NoError(t, s.Flush(ctx))
	a.False(s.Saving())

	remote, err := c.GetFlow(ctx, "flow-1")
	require.NoError(t, err)
	a.Equal("Order routing", remote.DisplayName)
	a.StepNames(remote, "trigger", "step_1", "step_2")
	a.Equal("Route order", a.HasStep(remote, "step_1").DisplayName)
	a.StepNames(s.Version(), "trigger", "step_1", "step_2")

	require.NoError(t, c.PutRun(ctx, &api.ExecutionRecord{
		ID:     "run-1",
		Status: api.RunSucceeded,
		Steps: map[api.StepName]*api.StepOutput{
			"step_1": {Status: api.StepSucceeded},
		},
	}))
	require.NoError(t, s.ViewRun("run-1"))
	a.Eventually(func() bool {
		return s.StepStatuses()["step_1"] == api.StepSucceeded
	}, time.Second, "run overlay should load")
	assert.True(t, s.Readonly())
}
