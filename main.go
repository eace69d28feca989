package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/smazurov/tf96ctl/cmd"
	"github.com/smazurov/tf96ctl/internal/api"
	"github.com/smazurov/tf96ctl/internal/config"
	"github.com/smazurov/tf96ctl/internal/events"
	"github.com/smazurov/tf96ctl/internal/led"
	"github.com/smazurov/tf96ctl/internal/logging"
	"github.com/smazurov/tf96ctl/internal/metrics/exporters"
	"github.com/smazurov/tf96ctl/internal/systemd"
	"github.com/smazurov/tf96ctl/internal/updater"
	"github.com/smazurov/tf96ctl/internal/version"
)

// service holds everything started by the default command.
type service struct {
	mu       sync.Mutex
	device   *led.Device
	manager  *led.Manager
	server   *api.Server
	exporter *exporters.SSEExporter
	watcher  *config.Watcher[config.LiveConfig]
	notifier *systemd.Notifier
	cancel   context.CancelFunc
}

func main() {
	// Create Huma CLI
	var cli humacli.CLI
	cli = humacli.New(func(hooks humacli.Hooks, opts *cmd.Options) {
		// Precedence: changed flags > TF96_ env vars > config file > defaults
		configErr := config.LoadConfig(opts, cli.Root())

		logging.Initialize(opts.LogConfig())
		logger := logging.GetLogger("main")
		if configErr != nil {
			logger.Warn("Failed to load config", "error", configErr)
		}

		svc := &service{notifier: systemd.NewNotifier(logger)}

		hooks.OnStart(func() {
			logger.Info("Starting tf96ctl", "version", version.String())
			if err := svc.start(opts, logger); err != nil {
				logger.Error("Failed to start", "error", err)
				svc.stop(logger)
				os.Exit(1)
			}

			logger.Info("Starting HTTP server", "port", opts.Port)
			if err := svc.server.Start(opts.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Failed to start HTTP server", "error", err)
				svc.stop(logger)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			logger.Info("Shutting down server")
			svc.stop(logger)
		})
	})

	cli.Root().Use = "tf96ctl"
	cli.Root().Version = version.String()
	cli.Root().AddCommand(
		cmd.CreateRegCmd(),
		cmd.CreatePortsCmd(),
		cmd.CreateChannelCmd(),
		cmd.CreateMasterCmd(),
		cmd.CreateColorCmd(),
		cmd.CreatePhaseCmd(),
		cmd.CreateConsoleCmd(),
		cmd.CreateCheckUpdateCmd(),
	)

	// Run the CLI
	cli.Run()
}

// start opens the device, applies the startup state and wires the API.
func (s *service) start(opts *cmd.Options, logger *slog.Logger) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	// Create event bus for in-process event handling
	eventBus := events.New()
	logging.SetLogCallback(func(entry logging.LogEntry) {
		eventBus.Publish(events.LogEntryEvent{
			Seq:        entry.Seq,
			Timestamp:  entry.Timestamp.Format(time.RFC3339Nano),
			Level:      entry.Level,
			Module:     entry.Module,
			Message:    entry.Message,
			Attributes: entry.Attributes,
		})
	})

	device, err := led.New(opts.DeviceConfig(), eventBus, logging.GetLogger("led"))
	if err != nil {
		return err
	}
	s.device = device

	initCtx, initCancel := context.WithTimeout(ctx, 10*time.Second)
	defer initCancel()
	states, err := device.Init(initCtx, opts.DeviceDefaultIntensity)
	if err != nil {
		return err
	}
	if err := device.SetMasterIntensity(opts.DeviceMasterIntensity); err != nil {
		return err
	}
	if opts.DeviceDumpRegisters {
		dumpRegisters(initCtx, device, logger)
	}
	if err := device.SetBlink(opts.BlinkEnabled, opts.BlinkControl); err != nil {
		return err
	}

	s.manager = led.NewManager(device, eventBus, opts.TickInterval(), logging.GetLogger("led"))
	s.manager.Start()

	s.exporter = exporters.NewSSEExporter(eventBus)
	s.exporter.Start(ctx)

	checker, err := updater.NewChecker(updater.Options{
		Repository: opts.UpdateRepository,
		Prerelease: opts.UpdatePrerelease,
	})
	if err != nil {
		logger.Warn("Update checks disabled", "error", err)
	}

	apiOpts := &api.Options{
		AuthUsername:      opts.AuthUsername,
		AuthPassword:      opts.AuthPassword,
		Device:            device,
		EventBus:          eventBus,
		PrometheusHandler: exporters.HTTPHandler(),
	}
	if checker != nil {
		apiOpts.UpdateChecker = checker
	}
	s.server = api.NewServer(apiOpts)

	s.watcher = config.NewConfigWatcher(opts.Config, config.LoadLiveConfig, logging.GetLogger("config"))
	s.watcher.OnReload(func(live config.LiveConfig) {
		applyLiveConfig(device, live, logger)
	})
	if err := s.watcher.Start(); err != nil {
		logger.Warn("Config hot reload disabled", "path", opts.Config, "error", err)
		s.watcher = nil
	}

	s.notifier.Ready(ctx)
	s.notifier.Status(statusLine(states))
	return nil
}

// stop tears down in reverse start order. Safe on a partial start.
func (s *service) stop(logger *slog.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.notifier.Stopping()
	if s.server != nil {
		if err := s.server.Stop(); err != nil {
			logger.Error("Error stopping HTTP server", "error", err)
		}
	}
	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			logger.Warn("Error stopping config watcher", "error", err)
		}
	}
	if s.manager != nil {
		s.manager.Stop()
	}
	if s.exporter != nil {
		s.exporter.Stop()
	}
	if s.cancel != nil {
		s.cancel()
	}
	logging.SetLogCallback(nil)
	if s.device != nil {
		if err := s.device.Close(); err != nil {
			logger.Warn("Error closing device", "error", err)
		}
		s.device = nil
	}
}

// applyLiveConfig applies keys present in the reloaded file. A bad value is
// logged and the running value kept.
func applyLiveConfig(device *led.Device, live config.LiveConfig, logger *slog.Logger) {
	if live.BlinkEnabled != nil || live.BlinkControl != nil {
		blink := device.Blink()
		enabled, control := blink.Enabled, blink.Control
		if live.BlinkEnabled != nil {
			enabled = *live.BlinkEnabled
		}
		if live.BlinkControl != nil {
			control = *live.BlinkControl
		}
		if err := device.SetBlink(enabled, control); err != nil {
			logger.Warn("Ignoring blink settings from config", "error", err)
		}
	}
	if live.MasterIntensity != nil && *live.MasterIntensity != device.Levels().Master {
		if err := device.SetMasterIntensity(*live.MasterIntensity); err != nil {
			logger.Warn("Ignoring master intensity from config", "error", err)
		}
	}
	if live.Logging != nil {
		if err := logging.SetLevels(live.Logging.Level, live.Logging.Modules); err != nil {
			logger.Warn("Ignoring logging levels from config", "error", err)
		}
	}
	logger.Info("Configuration reloaded")
}

func dumpRegisters(ctx context.Context, device *led.Device, logger *slog.Logger) {
	values, err := device.DumpRegisters(ctx, 0x00, 0x0f)
	if err != nil {
		logger.Warn("Register dump failed", "error", err)
		return
	}
	for _, rv := range values {
		logger.Info("Register", "address", rv.Address, "value", rv.Hex)
	}
}

func statusLine(states []led.PortState) string {
	return "serving, " + strconv.Itoa(led.CountEnabled(states)) + " of " + strconv.Itoa(len(states)) + " ports enabled"
}
