package led

import (
	"log/slog"
	"time"

	"github.com/smazurov/tf96ctl/internal/logging"
	"github.com/smazurov/tf96ctl/internal/protocol"
	"github.com/smazurov/tf96ctl/internal/serial"
)

// Config selects and configures the link to the chip.
type Config struct {
	Port        string
	BaudRate    int
	ReadTimeout time.Duration
	// Sim replaces the serial link with an in-memory chip.
	Sim        bool
	ChannelMin int
}

// New opens the configured link and returns a Device session on it.
func New(cfg Config, bus Publisher, logger *slog.Logger) (*Device, error) {
	if logger == nil {
		logger = logging.GetLogger("led")
	}
	limits := DefaultLimits().WithChannelMin(cfg.ChannelMin)
	protoLogger := logging.GetLogger("protocol")

	if cfg.Sim {
		logger.Info("Using simulated TF96 chip")
		conn := protocol.NewConn(NewSim(), protoLogger)
		return NewDevice(conn, Options{Limits: limits, Bus: bus, Logger: logger}), nil
	}

	port, err := serial.Open(serial.Config{
		Path:        cfg.Port,
		BaudRate:    cfg.BaudRate,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("Serial port opened", "port", port.Path(), "baud", cfg.BaudRate, "read_timeout", cfg.ReadTimeout)

	conn := protocol.NewConn(port, protoLogger)
	return NewDevice(conn, Options{
		Limits: limits,
		Bus:    bus,
		Logger: logger,
		Closer: port,
	}), nil
}
