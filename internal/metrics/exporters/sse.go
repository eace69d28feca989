package exporters

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/smazurov/tf96ctl/internal/events"
	"github.com/smazurov/tf96ctl/internal/metrics"
)

// DefaultInterval is how often counters are pushed to SSE clients.
const DefaultInterval = 5 * time.Second

// EventPublisher is satisfied by *events.Bus.
type EventPublisher interface {
	Publish(ev events.Event)
}

// SSEExporter pushes protocol counters onto the event bus, where the
// /api/metrics stream picks them up. Unchanged snapshots are not re-sent.
type SSEExporter struct {
	eventBus EventPublisher
	interval time.Duration
	snapshot func() metrics.DeviceMetrics

	cancel context.CancelFunc
	wg     sync.WaitGroup
	last   *metrics.DeviceMetrics
}

// NewSSEExporter creates an exporter publishing every DefaultInterval.
func NewSSEExporter(eventBus EventPublisher) *SSEExporter {
	return &SSEExporter{
		eventBus: eventBus,
		interval: DefaultInterval,
		snapshot: metrics.GetDeviceMetrics,
	}
}

// Start publishes every interval until ctx ends or Stop is called.
func (s *SSEExporter) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.wg.Add(1)
	go s.run(ctx)
}

// Stop halts publishing and waits for the loop. Safe before Start and twice.
func (s *SSEExporter) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *SSEExporter) run(ctx context.Context) {
	defer s.wg.Done()
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.publish()
		}
	}
}

func (s *SSEExporter) publish() {
	m := s.snapshot()
	if s.last != nil && sameCounters(*s.last, m) {
		return
	}
	s.last = &m
	s.eventBus.Publish(events.DeviceMetricsEvent{
		EventType:     "device_metrics",
		Commands:      m.Commands,
		Errors:        m.Errors,
		RegisterReads: m.RegisterReads,
		BlinkToggles:  m.BlinkToggles,
	})
}

func sameCounters(a, b metrics.DeviceMetrics) bool {
	return a.RegisterReads == b.RegisterReads &&
		a.BlinkToggles == b.BlinkToggles &&
		maps.Equal(a.Commands, b.Commands) &&
		maps.Equal(a.Errors, b.Errors)
}
