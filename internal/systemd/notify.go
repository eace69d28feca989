// Package systemd reports service state to systemd over the notify socket.
// Every call is a no-op when the process was not started by systemd.
package systemd

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
)

// Notifier sends readiness, status and watchdog messages.
type Notifier struct {
	logger *slog.Logger
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewNotifier creates a notifier logging failures to logger.
func NewNotifier(logger *slog.Logger) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{logger: logger}
}

// Ready tells systemd startup finished and starts watchdog keepalives
// when the unit configures WatchdogSec.
func (n *Notifier) Ready(ctx context.Context) {
	n.notify(daemon.SdNotifyReady)

	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		n.logger.Warn("Failed to read watchdog settings", "error", err)
		return
	}
	if interval == 0 {
		return
	}

	ctx, n.cancel = context.WithCancel(ctx)
	n.wg.Add(1)
	go n.keepalive(ctx, interval/2)
	n.logger.Info("Systemd watchdog enabled", "interval", interval)
}

// Status sets the free-form status line shown by systemctl status.
func (n *Notifier) Status(status string) {
	n.notify("STATUS=" + status)
}

// Stopping tells systemd shutdown began and stops watchdog keepalives.
func (n *Notifier) Stopping() {
	if n.cancel != nil {
		n.cancel()
		n.wg.Wait()
	}
	n.notify(daemon.SdNotifyStopping)
}

func (n *Notifier) keepalive(ctx context.Context, every time.Duration) {
	defer n.wg.Done()
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.notify(daemon.SdNotifyWatchdog)
		}
	}
}

func (n *Notifier) notify(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		n.logger.Warn("Failed to notify systemd", "state", state, "error", err)
		return
	}
	if sent {
		n.logger.Debug("Notified systemd", "state", state)
	}
}
