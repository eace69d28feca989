package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/sse"
	"github.com/smazurov/tf96ctl/internal/events"
)

// registerSSERoutes registers the device event stream.
func (s *Server) registerSSERoutes() {
	sse.Register(s.api, huma.Operation{
		OperationID: "events-stream",
		Method:      http.MethodGet,
		Path:        "/api/events",
		Summary:     "Server-Sent Events Stream",
		Description: "Real-time stream of port, intensity, register, color and blink changes",
		Tags:        []string{"events"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, events.EventTypes(), func(ctx context.Context, _ *struct{}, send sse.Sender) {
		eventCh := make(chan any, 32)
		unsubscribe := events.SubscribeDeviceEvents(s.eventBus, eventCh)
		defer unsubscribe()

		// Current blink configuration doubles as the connection confirmation
		b := s.device.Blink()
		if err := send.Data(events.BlinkConfigChangedEvent{
			Enabled:      b.Enabled,
			HalfPeriodMs: b.HalfPeriod.Milliseconds(),
			Timestamp:    nowRFC3339(),
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
