package httpx

import (
	"log/slog"
	"net/http"

	apperrors "github.com/leadgrid/workflow-bridge/internal/errors"
	"github.com/leadgrid/workflow-bridge/internal/service"
)

// pendingResponse is the sentinel a poll gets while no result is stored.
// A distinct object (not an empty body) lets clients tell "nothing yet"
// apart from "no such resource".
const pendingResponse = `{"status":"pending"}`

// StatusHandlers serves the pull-mode consumer endpoints.
type StatusHandlers struct {
	Gateway *service.NotificationGateway
	Logger  *slog.Logger
}

// PollStatus returns the stored result verbatim, consuming it, or the pending
// sentinel. A backing-store outage is a 503, never "pending".
func (h *StatusHandlers) PollStatus(w http.ResponseWriter, r *http.Request) {
	result, err := h.Gateway.PollResult(r.Context())
	if err != nil {
		if apperrors.IsUnavailable(err) {
			WriteError(w, ErrorParams{
				Code:    http.StatusServiceUnavailable,
				ErrCode: "store_unavailable",
				Err:     err,
			})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "poll_failed", Err: err})
		return
	}

	if result == nil {
		WriteRawJSON(w, http.StatusOK, []byte(pendingResponse))
		return
	}

	WriteRawJSON(w, http.StatusOK, result.Payload)
}

// ClearStatus invalidates any stale stored result before a new submission.
func (h *StatusHandlers) ClearStatus(w http.ResponseWriter, r *http.Request) {
	if err := h.Gateway.BeginSubmission(r.Context()); err != nil {
		if apperrors.IsUnavailable(err) {
			WriteError(w, ErrorParams{
				Code:    http.StatusServiceUnavailable,
				ErrCode: "store_unavailable",
				Err:     err,
			})
			return
		}
		WriteError(w, ErrorParams{Code: http.StatusInternalServerError, ErrCode: "clear_failed", Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}
