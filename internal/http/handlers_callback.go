// Package httpx provides the HTTP surface of the workflow callback bridge.
package httpx

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/leadgrid/workflow-bridge/internal/core"
	apperrors "github.com/leadgrid/workflow-bridge/internal/errors"
	"github.com/leadgrid/workflow-bridge/internal/service"
)

// maxCallbackBody bounds the callback request body. Engine payloads are a few
// hundred bytes; 1 MiB leaves ample headroom for schema growth.
const maxCallbackBody = 1 << 20

// CallbackHandlers handles the workflow engine's completion callback.
type CallbackHandlers struct {
	Gateway *service.NotificationGateway
	Logger  *slog.Logger
}

// SubmitStatus ingests one completion callback. The body is any JSON object;
// payloads without a recognizable status field are accepted and passed
// through opaquely.
func (h *CallbackHandlers) SubmitStatus(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxCallbackBody+1))
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "read_body", Err: err})
		return
	}
	if len(body) > maxCallbackBody {
		WriteError(w, ErrorParams{
			Code:    http.StatusRequestEntityTooLarge,
			ErrCode: "body_too_large",
			Err:     errors.New("callback body exceeds limit"),
		})
		return
	}

	result, err := core.ParseJobResult(body)
	if err != nil {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "invalid_json", Err: err})
		return
	}

	if err := h.Gateway.SubmitResult(r.Context(), result); err != nil {
		code := http.StatusInternalServerError
		errCode := "submit_failed"
		if apperrors.IsUnavailable(err) {
			code = http.StatusServiceUnavailable
			errCode = "store_unavailable"
		}
		WriteError(w, ErrorParams{Code: code, ErrCode: errCode, Err: err})
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"received": true})
}
