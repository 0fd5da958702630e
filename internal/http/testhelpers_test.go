package httpx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/leadgrid/workflow-bridge/internal/core"
	"github.com/leadgrid/workflow-bridge/internal/data"
	"github.com/leadgrid/workflow-bridge/internal/service"
)

// newTestServices wires a memory-backed gateway for handler tests and returns
// the router services alongside the underlying pieces.
func newTestServices(t *testing.T, heartbeat time.Duration) (RouterServices, *service.NotificationGateway, *service.Broadcaster, *data.MemoryCacheRepo) {
	t.Helper()

	repo := data.NewMemoryCacheRepo()
	slot := service.MustNewResultSlotService(service.ResultSlotOptions{Cache: repo})
	broadcaster := service.NewBroadcaster(nil)
	gateway := service.MustNewNotificationGateway(service.GatewayOptions{
		Slot:        slot,
		Broadcaster: broadcaster,
	})

	services := RouterServices{Gateway: gateway, HeartbeatInterval: heartbeat}
	return services, gateway, broadcaster, repo
}

func mustResult(t *testing.T, body string) core.JobResult {
	t.Helper()
	result, err := core.ParseJobResult([]byte(body))
	require.NoError(t, err)
	return result
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, timeout time.Duration, cond func() bool) bool {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
