package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/leadgrid/workflow-bridge/internal/mocks"
	"github.com/leadgrid/workflow-bridge/internal/service"
)

func TestPollStatusPending(t *testing.T) {
	services, _, _, _ := newTestServices(t, 0)
	router := NewRouter(services)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"pending"}`, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}

func TestPollStatusDeliversVerbatimAndClears(t *testing.T) {
	services, gateway, _, _ := newTestServices(t, 0)
	router := NewRouter(services)

	body := `{"status":"error","message":"boom","failed_node":"HTTP Request","timestamp":"2025-01-02T03:04:05Z","execution_id":42}`
	require.NoError(t, gateway.SubmitResult(context.Background(), mustResult(t, body)))

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	// Unknown fields (execution_id) pass through untouched.
	assert.JSONEq(t, body, rec.Body.String())

	// A successful non-pending response cleared the slot server-side.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.JSONEq(t, `{"status":"pending"}`, rec.Body.String())
}

func TestClearStatus(t *testing.T) {
	services, gateway, _, _ := newTestServices(t, 0)
	router := NewRouter(services)

	require.NoError(t, gateway.SubmitResult(context.Background(), mustResult(t, `{"status":"Success"}`)))

	req := httptest.NewRequest(http.MethodDelete, "/api/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cleared":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))
	assert.JSONEq(t, `{"status":"pending"}`, rec.Body.String())
}

func TestPollStatusBackendUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockCacheRepository(ctrl)
	repo.EXPECT().GetDelete(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused"))

	slot := service.MustNewResultSlotService(service.ResultSlotOptions{Cache: repo})
	gateway := service.MustNewNotificationGateway(service.GatewayOptions{
		Slot:        slot,
		Broadcaster: service.NewBroadcaster(nil),
	})
	router := NewRouter(RouterServices{Gateway: gateway})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/status", nil))

	// An outage must be distinguishable from "pending".
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "store_unavailable")
}

func TestStatusMethodNotAllowed(t *testing.T) {
	services, _, _, _ := newTestServices(t, 0)
	router := NewRouter(services)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(method, "/api/status", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, "method %s", method)
	}
}
