package led

import (
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/smazurov/tf96ctl/internal/events"
	"github.com/smazurov/tf96ctl/internal/protocol"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

func newSimDevice(t *testing.T, limits Limits) (*Device, *Sim) {
	t.Helper()
	sim := NewSim()
	conn := protocol.NewConn(sim, testLogger())
	return NewDevice(conn, Options{Limits: limits, Logger: testLogger()}), sim
}

// recordingBus captures published events.
type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingBus) Publish(ev events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recordingBus) snapshot() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Event, len(r.events))
	copy(out, r.events)
	return out
}

// writeRecorder is a RegisterWriter that records writes and can fail.
type writeRecorder struct {
	writes []registerWrite
	err    error
}

type registerWrite struct {
	addr  uint8
	value uint32
}

func (w *writeRecorder) WriteRegister(addr uint8, value uint32) error {
	if w.err != nil {
		return w.err
	}
	w.writes = append(w.writes, registerWrite{addr, value})
	return nil
}
