package log_test

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kode4food/argyll/editor/pkg/api"
	"github.com/kode4food/argyll/editor/pkg/log"
)

type errStub string

func TestFlowID(t *testing.T) {
	attr := log.FlowID(api.FlowID("flow-123"))
	assertAttrEqual(t, attr, "flow_id", "flow-123")
}

func TestVersionID(t *testing.T) {
	attr := log.VersionID(api.VersionID("v-1"))
	assertAttrEqual(t, attr, "version_id", "v-1")
}

func TestStepName(t *testing.T) {
	attr := log.StepName(api.StepName("step_1"))
	assertAttrEqual(t, attr, "step_name", "step_1")
}

func TestRunID(t *testing.T) {
	attr := log.RunID(api.RunID("run-9"))
	assertAttrEqual(t, attr, "run_id", "run-9")
}

func TestOperation(t *testing.T) {
	attr := log.Operation(api.OpAddAction)
	assertAttrEqual(t, attr, "operation", "ADD_ACTION")
}

func TestStatusAndKey(t *testing.T) {
	assertAttrEqual(t, log.Status(api.RunFailed), "status", "FAILED")
	assertAttrEqual(t, log.Key("step_2"), "key", "step_2")
}

func TestError(t *testing.T) {
	attr := log.Error(nil)
	assertAttrEqual(t, attr, "error", "")

	attr = log.Error(errStub("boom"))
	assertAttrEqual(t, attr, "error", "boom")
}

func TestErrorString(t *testing.T) {
	attr := log.ErrorString("badness")
	assertAttrEqual(t, attr, "error", "badness")
}

func (e errStub) Error() string { return string(e) }

func assertAttrEqual(t *testing.T, attr slog.Attr, key, value string) {
	t.Helper()
	assert.Equal(t, key, attr.Key)
	assert.Equal(t, value, attr.Value.String())
}
