package assert

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/argyll/editor/internal/config"
	"github.com/kode4food/argyll/editor/internal/tree"
	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/util"
)

// Wrapper wraps testify assertions with flow editor helpers
type Wrapper struct {
	*testing.T
	*assert.Assertions
	Require *assert.Assertions
}

// DefaultRetryInterval is the default polling interval for Eventually checks
const DefaultRetryInterval = 10 * time.Millisecond

// New creates a new test assertion wrapper
func New(t *testing.T) *Wrapper {
	return &Wrapper{
		T:          t,
		Assertions: assert.New(t),
		Require:    assert.New(t),
	}
}

// UniqueNames asserts that no step name appears twice in the version
func (w *Wrapper) UniqueNames(v *api.FlowVersion) {
	w.Helper()
	seen := util.Set[api.StepName]{}
	for _, s := range tree.All(v.Trigger) {
		w.False(seen.Contains(s.Name), "duplicate step name: %s", s.Name)
		seen.Add(s.Name)
	}
}

// StepNames asserts the pre-order step names of a version
func (w *Wrapper) StepNames(v *api.FlowVersion, expected ...api.StepName) {
	w.Helper()
	var names []api.StepName
	for _, s := range tree.All(v.Trigger) {
		names = append(names, s.Name)
	}
	w.Equal(expected, names)
}

// HasStep asserts that the version contains the named step and returns it
func (w *Wrapper) HasStep(v *api.FlowVersion, name api.StepName) *api.Step {
	w.Helper()
	s := tree.Get(v.Trigger, name)
	w.NotNil(s, "step should exist: %s", name)
	return s
}

// ConfigValid asserts that a configuration is valid
func (w *Wrapper) ConfigValid(cfg *config.Config) {
	w.Helper()
	w.NoError(cfg.Validate())
	w.True(cfg.APIPort > 0 && cfg.APIPort <= config.MaxTCPPort)
	w.True(cfg.DebounceDelay > 0)
}

// ConfigInvalid asserts that a configuration is invalid
func (w *Wrapper) ConfigInvalid(cfg *config.Config, contains string) {
	w.Helper()
	err := cfg.Validate()
	w.Error(err)
	if err != nil && contains != "" {
		w.Contains(err.Error(), contains)
	}
}

// Eventually runs a condition repeatedly until it passes or times out
func (w *Wrapper) Eventually(
	condition func() bool, timeout time.Duration, msg string, args ...any,
) {
	w.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(DefaultRetryInterval)
	}
	w.Fail(msg, args...)
}
