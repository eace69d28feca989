package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/smazurov/tf96ctl/internal/led"
	"github.com/smazurov/tf96ctl/internal/logging"
	"github.com/smazurov/tf96ctl/internal/protocol"
	"github.com/smazurov/tf96ctl/internal/serial"
)

// link is an open command connection plus whatever must be closed with it.
type link struct {
	conn   *protocol.Conn
	closer io.Closer
}

func (l *link) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer.Close()
}

// openLink opens the configured serial port, or an in-memory chip.
func openLink(opts *Options) (*link, error) {
	protoLogger := logging.GetLogger("protocol")
	if opts.DeviceSim {
		return &link{conn: protocol.NewConn(led.NewSim(), protoLogger)}, nil
	}
	cfg := opts.DeviceConfig()
	port, err := serial.Open(serial.Config{
		Path:        cfg.Port,
		BaudRate:    cfg.BaudRate,
		ReadTimeout: cfg.ReadTimeout,
	})
	if err != nil {
		return nil, err
	}
	return &link{conn: protocol.NewConn(port, protoLogger), closer: port}, nil
}

// newDevice wraps l in a device session. Subcommands publish no events.
func newDevice(l *link, opts *Options) *led.Device {
	return led.NewDevice(l.conn, led.Options{
		Limits: led.DefaultLimits().WithChannelMin(opts.DeviceChannelMin),
		Logger: logging.GetLogger("led"),
		Closer: l,
	})
}

// deviceCommand adapts fn into a cobra Run that opens the device first and
// exits non-zero on any error.
func deviceCommand(fn func(w io.Writer, dev *led.Device, args []string) error) func(*cobra.Command, []string) {
	return humacli.WithOptions(func(c *cobra.Command, args []string, opts *Options) {
		l, err := openLink(opts)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		dev := newDevice(l, opts)
		err = fn(c.OutOrStdout(), dev, args)
		if closeErr := dev.Close(); closeErr != nil {
			logging.GetLogger("serial").Warn("Failed to close serial port", "error", closeErr)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
	})
}

// parseNumber accepts decimal or 0x-prefixed hex.
func parseNumber(what, s string, bits int) (uint64, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, bits)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return v, nil
}

func parseInt(what, s string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, s)
	}
	return v, nil
}
