package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/tf96ctl/internal/events"
	"github.com/smazurov/tf96ctl/internal/metrics"
)

// registerMetricsRoutes registers the metrics SSE endpoint.
func (s *Server) registerMetricsRoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "metrics-stream",
		Method:      http.MethodGet,
		Path:        "/api/metrics",
		Summary:     "Metrics Server-Sent Events Stream",
		Description: "Periodic protocol counters: commands by opcode, errors by code, register reads and blink toggles",
		Tags:        []string{"metrics"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, map[string]any{
		"device-metrics": events.DeviceMetricsEvent{},
	}, func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 10)
		unsubscribe := events.SubscribeToChannel[events.DeviceMetricsEvent](s.eventBus, eventCh)
		defer unsubscribe()

		// Current totals first so clients need not wait for the next export
		m := metrics.GetDeviceMetrics()
		if err := send.Data(events.DeviceMetricsEvent{
			EventType:     "device_metrics",
			Commands:      m.Commands,
			Errors:        m.Errors,
			RegisterReads: m.RegisterReads,
			BlinkToggles:  m.BlinkToggles,
		}); err != nil {
			return
		}

		for {
			select {
			case <-ctx.Done():
				return
			case event := <-eventCh:
				if err := send.Data(event); err != nil {
					return
				}
			}
		}
	})
}
