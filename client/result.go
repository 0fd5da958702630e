package client

import (
	"encoding/json"
	"strings"

	"github.com/leadgrid/workflow-bridge/internal/core"
)

// Result is the consumer-facing view of a delivered workflow result. Payload
// carries the callback body verbatim; the named fields are conveniences
// lifted from it when present.
type Result struct {
	// Status is the engine-reported outcome, free-form.
	Status string
	// Message is the human-readable outcome description.
	Message string
	// FailedNode names the workflow node that failed, when reported.
	FailedNode string
	// Timestamp is the engine-reported completion time, when reported.
	Timestamp string
	// Payload is the callback body exactly as the bridge stored it.
	Payload json.RawMessage
}

// Succeeded reports whether the workflow completed successfully.
func (r Result) Succeeded() bool {
	return strings.EqualFold(r.Status, core.StatusSuccess)
}

func newResult(jr core.JobResult) *Result {
	return &Result{
		Status:     jr.Status,
		Message:    jr.Message,
		FailedNode: jr.FailedNode,
		Timestamp:  jr.Timestamp,
		Payload:    jr.Payload,
	}
}
