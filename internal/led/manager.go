package led

import (
	"log/slog"
	"sync"
	"time"

	"github.com/smazurov/tf96ctl/internal/events"
	"github.com/smazurov/tf96ctl/internal/protocol"
)

// DefaultTickInterval is the blink scheduler cadence.
const DefaultTickInterval = 10 * time.Millisecond

// Manager drives the device's blink scheduler from a ticker and publishes
// phase changes on the event bus.
type Manager struct {
	device   *Device
	eventBus Publisher
	interval time.Duration
	logger   *slog.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	once     sync.Once

	// failing suppresses repeated error logs while the link stays down.
	failing bool
}

// NewManager creates a blink manager ticking at interval.
func NewManager(device *Device, eventBus Publisher, interval time.Duration, logger *slog.Logger) *Manager {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &Manager{
		device:   device,
		eventBus: eventBus,
		interval: interval,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins ticking in the background.
func (m *Manager) Start() {
	m.wg.Add(1)
	go m.run()
	m.logger.Info("Blink manager started", "interval", m.interval)
}

// Stop halts the ticker and waits for the loop to exit. Safe to call twice.
func (m *Manager) Stop() {
	m.once.Do(func() {
		close(m.stopChan)
		m.wg.Wait()
		m.logger.Info("Blink manager stopped")
	})
}

func (m *Manager) run() {
	defer m.wg.Done()
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case now := <-ticker.C:
			m.tick(now)
		}
	}
}

func (m *Manager) tick(now time.Time) {
	toggled, err := m.device.Tick(now)
	if err != nil {
		if !m.failing {
			m.failing = true
			m.logger.Error("Blink toggle failed", "error", err)
			m.publish(events.DeviceErrorEvent{
				Code:      string(protocol.CodeOf(err)),
				Operation: "blink",
				Error:     err.Error(),
				Timestamp: now.Format(time.RFC3339),
			})
		}
		return
	}
	if m.failing {
		m.failing = false
		m.logger.Info("Blink toggling recovered")
	}
	if !toggled {
		return
	}

	phase := m.device.Blink().Phase
	m.logger.Debug("Blink phase toggled", "phase", phase.String())
	m.publish(events.BlinkPhaseChangedEvent{
		Phase:     phase.String(),
		Timestamp: now.Format(time.RFC3339),
	})
}

func (m *Manager) publish(ev events.Event) {
	if m.eventBus != nil {
		m.eventBus.Publish(ev)
	}
}
