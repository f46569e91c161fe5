package api

import "time"

type (
	// RunStatus is the overall status of a flow execution
	RunStatus string

	// StepStatus is the status of one step within an execution
	StepStatus string

	// ExecutionRecord is the immutable result of one run of a flow version
	ExecutionRecord struct {
		StartTime     time.Time                `json:"startTime"`
		FinishTime    time.Time                `json:"finishTime,omitempty"`
		Steps         map[StepName]*StepOutput `json:"steps"`
		ID            RunID                    `json:"id"`
		FlowVersionID VersionID                `json:"flowVersionId"`
		Status        RunStatus                `json:"status"`
	}

	// StepOutput is the recorded result of a step. Loop steps carry one
	// Iteration per processed item
	StepOutput struct {
		Input        any         `json:"input,omitempty"`
		Output       any         `json:"output,omitempty"`
		Type         StepType    `json:"type"`
		Status       StepStatus  `json:"status"`
		ErrorMessage string      `json:"errorMessage,omitempty"`
		Iterations   []Iteration `json:"iterations,omitempty"`
		Duration     int64       `json:"duration,omitempty"`
	}

	// Iteration maps the loop body's step names to their outputs for one
	// loop iteration
	Iteration map[StepName]*StepOutput
)

const (
	RunQueued        RunStatus = "QUEUED"
	RunRunning       RunStatus = "RUNNING"
	RunPaused        RunStatus = "PAUSED"
	RunSucceeded     RunStatus = "SUCCEEDED"
	RunFailed        RunStatus = "FAILED"
	RunStopped       RunStatus = "STOPPED"
	RunTimeout       RunStatus = "TIMEOUT"
	RunInternalError RunStatus = "INTERNAL_ERROR"
)

const (
	StepRunning   StepStatus = "RUNNING"
	StepPaused    StepStatus = "PAUSED"
	StepSucceeded StepStatus = "SUCCEEDED"
	StepFailed    StepStatus = "FAILED"
	StepStopped   StepStatus = "STOPPED"
)

// IsTerminal reports whether a run with this status will never change again
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunQueued, RunRunning, RunPaused:
		return false
	default:
		return true
	}
}

// StepStatus maps a run status to the step status that explains it. The
// second result is false when no single step is responsible
func (s RunStatus) StepStatus() (StepStatus, bool) {
	switch s {
	case RunRunning:
		return StepRunning, true
	case RunPaused:
		return StepPaused, true
	case RunStopped:
		return StepStopped, true
	case RunFailed, RunTimeout, RunInternalError:
		return StepFailed, true
	default:
		return "", false
	}
}
