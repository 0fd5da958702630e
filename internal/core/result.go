// Package core defines the domain types and repository interfaces for the
// workflow callback bridge.
package core

import (
	"encoding/json"
	"strings"
)

// StatusSuccess is the callback status value (compared case-insensitively)
// that marks a workflow run as successful. Anything else is a failure.
const StatusSuccess = "success"

// JobResult is the outcome of one workflow run as reported by the engine's
// completion callback.
//
// The engine's payload shape is not contractually fixed beyond status and
// message, so Payload carries the verbatim callback body. Storage, SSE frames
// and poll responses all emit Payload, which keeps unrecognized engine fields
// intact end to end. The named fields are a parsed view used for routing and
// diagnostics only.
type JobResult struct {
	// Status is the engine-reported outcome ("Success" or an error marker).
	// Empty when the callback carried no recognizable status field.
	Status string `json:"status,omitempty"`

	// Message is the human-readable engine message.
	Message string `json:"message,omitempty"`

	// FailedNode identifies the workflow node that failed (failures only).
	FailedNode string `json:"failed_node,omitempty"`

	// Timestamp is the engine-reported failure time, passed through opaquely.
	Timestamp string `json:"timestamp,omitempty"`

	// Payload is the verbatim callback body.
	Payload json.RawMessage `json:"-"`
}

// Succeeded reports whether the engine marked the run successful.
func (r *JobResult) Succeeded() bool {
	return strings.EqualFold(r.Status, StatusSuccess)
}

// ParseJobResult builds a JobResult from a raw callback body.
//
// Bodies without a status field (or with non-string fields) still parse: the
// engine is a trusted system whose schema may evolve, so the bridge never
// rejects a callback on shape. Only non-JSON input fails.
func ParseJobResult(body []byte) (JobResult, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return JobResult{}, err
	}

	result := JobResult{Payload: append(json.RawMessage(nil), body...)}
	result.Status = stringField(fields, "status")
	result.Message = stringField(fields, "message")
	result.FailedNode = stringField(fields, "failed_node")
	result.Timestamp = stringField(fields, "timestamp")
	return result, nil
}

// stringField extracts a string-typed field, tolerating absence and non-string
// values (which stay available through Payload).
func stringField(fields map[string]json.RawMessage, name string) string {
	raw, ok := fields[name]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
