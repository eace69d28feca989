package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/smazurov/tf96ctl/internal/led"
)

// CreateRegCmd creates the reg command with read, write and dump subcommands.
func CreateRegCmd() *cobra.Command {
	reg := &cobra.Command{
		Use:   "reg",
		Short: "Read and write chip registers",
	}
	reg.AddCommand(
		&cobra.Command{
			Use:   "read <addr>",
			Short: "Read one register",
			Args:  cobra.ExactArgs(1),
			Run:   deviceCommand(runRegRead),
		},
		&cobra.Command{
			Use:   "write <addr> <value>",
			Short: "Write one register",
			Long:  "Write a value to a register. Address and value accept decimal or 0x-prefixed hex.",
			Args:  cobra.ExactArgs(2),
			Run:   deviceCommand(runRegWrite),
		},
		&cobra.Command{
			Use:   "dump [from] [to]",
			Short: "Read a register range (default 0x00-0x0f)",
			Args:  cobra.MaximumNArgs(2),
			Run:   deviceCommand(runRegDump),
		},
	)
	return reg
}

func runRegRead(w io.Writer, dev *led.Device, args []string) error {
	addr, err := parseNumber("register", args[0], 8)
	if err != nil {
		return err
	}
	v, err := dev.ReadRegister(int(addr))
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "0x%02x = 0x%02x (%d)\n", addr, v, v)
	return nil
}

func runRegWrite(w io.Writer, dev *led.Device, args []string) error {
	addr, err := parseNumber("register", args[0], 8)
	if err != nil {
		return err
	}
	value, err := parseNumber("value", args[1], 32)
	if err != nil {
		return err
	}
	if err := dev.WriteRegister(int(addr), int64(value)); err != nil {
		return err
	}
	fmt.Fprintf(w, "0x%02x <- 0x%02x\n", addr, value)
	return nil
}

func runRegDump(w io.Writer, dev *led.Device, args []string) error {
	bounds := []uint64{0x00, 0x0f}
	for i, arg := range args {
		v, err := parseNumber("register", arg, 8)
		if err != nil {
			return err
		}
		bounds[i] = v
	}
	if len(args) == 1 {
		bounds[1] = bounds[0]
	}
	values, err := dev.DumpRegisters(context.Background(), int(bounds[0]), int(bounds[1]))
	if err != nil {
		return err
	}
	for _, rv := range values {
		fmt.Fprintf(w, "%s = %s\n", rv.Address, rv.Hex)
	}
	return nil
}

// CreatePortsCmd creates the ports command.
func CreatePortsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ports [port on|off]",
		Short: "Show or change port enable states",
		Long: "Without arguments, lists every port and whether it is enabled. " +
			"With a port and on/off, changes that port's enable bit.",
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return fmt.Errorf("expected no arguments or <port> <on|off>, got %d", len(args))
			}
			return nil
		},
		Run: deviceCommand(runPorts),
	}
}

func runPorts(w io.Writer, dev *led.Device, args []string) error {
	if len(args) == 2 {
		port, err := parseInt("port", args[0])
		if err != nil {
			return err
		}
		var enabled bool
		switch strings.ToLower(args[1]) {
		case "on", "enable", "true":
			enabled = true
		case "off", "disable", "false":
		default:
			return fmt.Errorf("invalid state %q, expected on or off", args[1])
		}
		if err := dev.SetPortEnabled(port, enabled); err != nil {
			return err
		}
	}

	states, err := dev.PortStates()
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PORT\tREGISTER\tBIT\tSTATE")
	for _, s := range states {
		state := "off"
		if s.Enabled {
			state = "on"
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", s.Port, s.Register, s.Bit, state)
	}
	return tw.Flush()
}

// CreateChannelCmd creates the channel command.
func CreateChannelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "channel <channel> <intensity>",
		Short: "Set one channel's intensity",
		Args:  cobra.ExactArgs(2),
		Run:   deviceCommand(runChannel),
	}
}

func runChannel(w io.Writer, dev *led.Device, args []string) error {
	channel, err := parseInt("channel", args[0])
	if err != nil {
		return err
	}
	intensity, err := parseInt("intensity", args[1])
	if err != nil {
		return err
	}
	if err := dev.SetChannelIntensity(channel, intensity); err != nil {
		return err
	}
	fmt.Fprintf(w, "channel %d intensity %d\n", channel, intensity)
	return nil
}

// CreateMasterCmd creates the master command.
func CreateMasterCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "master <level>",
		Short: "Set the master intensity (1-15)",
		Args:  cobra.ExactArgs(1),
		Run:   deviceCommand(runMaster),
	}
}

func runMaster(w io.Writer, dev *led.Device, args []string) error {
	level, err := parseInt("level", args[0])
	if err != nil {
		return err
	}
	if err := dev.SetMasterIntensity(level); err != nil {
		return err
	}
	fmt.Fprintf(w, "master intensity %d\n", level)
	return nil
}

// CreateColorCmd creates the color command.
func CreateColorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "color <group|all> <#RRGGBB>",
		Short: "Set an LED group to a color",
		Long:  "Map a 24-bit color onto the chip's 4-bit channels and apply it to led1, led2, led3, signal or all groups.",
		Args:  cobra.ExactArgs(2),
		Run:   deviceCommand(runColor),
	}
}

func runColor(w io.Writer, dev *led.Device, args []string) error {
	c, err := led.ParseHex(args[1])
	if err != nil {
		return err
	}
	levels, err := dev.ApplyColor(args[0], c)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s -> r=%d g=%d b=%d\n", args[0], c.Hex(), levels[0], levels[1], levels[2])
	return nil
}

// CreatePhaseCmd creates the phase command.
func CreatePhaseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "phase <0|1> <first> <second>",
		Short: "Write a blink phase's address register pair",
		Long:  "Write two hex values to the register pair of phase 0 (0x02/0x03) or phase 1 (0x0a/0x0b).",
		Args:  cobra.ExactArgs(3),
		Run:   deviceCommand(runPhase),
	}
}

func runPhase(w io.Writer, dev *led.Device, args []string) error {
	phase, err := parseInt("phase", args[0])
	if err != nil {
		return err
	}
	if err := dev.SetPhaseAddresses(phase, args[1], args[2]); err != nil {
		return err
	}
	regs, _ := led.PhaseRegisters(phase)
	fmt.Fprintf(w, "phase %d: 0x%02x <- %s, 0x%02x <- %s\n", phase, regs[0], args[1], regs[1], args[2])
	return nil
}
