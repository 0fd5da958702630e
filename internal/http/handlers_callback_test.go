package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/leadgrid/workflow-bridge/internal/mocks"
	"github.com/leadgrid/workflow-bridge/internal/service"
)

func TestSubmitStatusSuccess(t *testing.T) {
	services, gateway, _, _ := newTestServices(t, 0)
	router := NewRouter(services)

	body := `{"status":"Success","message":"Successful Scraping"}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/status", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"received":true}`, rec.Body.String())

	// The callback landed in the slot for pull consumers.
	result, err := gateway.PollResult(req.Context())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.JSONEq(t, body, string(result.Payload))
}

func TestSubmitStatusMalformedSchemaAccepted(t *testing.T) {
	services, gateway, _, _ := newTestServices(t, 0)
	router := NewRouter(services)

	// No status field at all: the engine schema is not fixed, so the body is
	// stored opaquely rather than rejected.
	req := httptest.NewRequest(http.MethodPost, "/webhook/status", strings.NewReader(`{"message":"x"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	result, err := gateway.PollResult(req.Context())
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.JSONEq(t, `{"message":"x"}`, string(result.Payload))
}

func TestSubmitStatusRejectsNonJSON(t *testing.T) {
	services, _, _, _ := newTestServices(t, 0)
	router := NewRouter(services)

	req := httptest.NewRequest(http.MethodPost, "/webhook/status", strings.NewReader("definitely not json"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_json")
}

func TestSubmitStatusRejectsOversizedBody(t *testing.T) {
	services, _, _, _ := newTestServices(t, 0)
	router := NewRouter(services)

	big := `{"message":"` + strings.Repeat("a", maxCallbackBody) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/webhook/status", strings.NewReader(big))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestSubmitStatusStoreUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockCacheRepository(ctrl)
	repo.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(errors.New("connection refused"))

	slot := service.MustNewResultSlotService(service.ResultSlotOptions{Cache: repo})
	gateway := service.MustNewNotificationGateway(service.GatewayOptions{
		Slot:        slot,
		Broadcaster: service.NewBroadcaster(nil),
	})
	router := NewRouter(RouterServices{Gateway: gateway})

	req := httptest.NewRequest(http.MethodPost, "/webhook/status", strings.NewReader(`{"status":"Success"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "store_unavailable")
}

func TestSubmitStatusMethodNotAllowed(t *testing.T) {
	services, _, _, _ := newTestServices(t, 0)
	router := NewRouter(services)

	req := httptest.NewRequest(http.MethodGet, "/webhook/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
