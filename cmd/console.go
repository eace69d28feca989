package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"

	"github.com/smazurov/tf96ctl/internal/protocol"
	"github.com/smazurov/tf96ctl/internal/serial"
)

// errQuit ends the console loop.
var errQuit = errors.New("quit")

// Console sends raw protocol lines typed at a prompt.
type Console struct {
	conn *protocol.Conn
	rl   *readline.Instance
}

// NewConsole creates a console over conn.
func NewConsole(conn *protocol.Conn) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "tf96> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{conn: conn, rl: rl}, nil
}

// Run reads lines until quit, EOF or the device disconnects.
func (c *Console) Run() error {
	defer c.rl.Close()

	out := c.rl.Stdout()
	printConsoleHelp(out)

	for {
		line, err := c.rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			return nil
		}
		err = c.execute(out, line)
		switch {
		case errors.Is(err, errQuit):
			return nil
		case endsSession(err):
			return err
		case err != nil:
			fmt.Fprintln(out, "Error:", err)
		}
	}
}

// execute handles one input line. Anything that is not a console command is
// sent to the chip as is; register reads print the response line.
func (c *Console) execute(w io.Writer, line string) error {
	input := strings.TrimSpace(line)
	if input == "" {
		return nil
	}

	switch strings.ToLower(input) {
	case "help", "?":
		printConsoleHelp(w)
		return nil
	case "quit", "exit", "q":
		return errQuit
	case "dump":
		for addr := range uint8(0x10) {
			v, err := c.conn.ReadRegister(addr)
			if err != nil {
				return fmt.Errorf("read register 0x%02x: %w", addr, err)
			}
			fmt.Fprintf(w, "0x%02x = 0x%02x\n", addr, v)
		}
		return nil
	}

	resp, err := c.conn.Raw(input)
	if err != nil {
		return err
	}
	if resp != "" {
		fmt.Fprintln(w, resp)
	}
	return nil
}

// endsSession reports whether err leaves nothing to talk to. Other link
// errors are printed and the prompt stays open.
func endsSession(err error) bool {
	return protocol.IsStream(err) && serial.IsDisconnect(err)
}

func printConsoleHelp(w io.Writer) {
	fmt.Fprintln(w, `
TF96 Console:
  CG<n>   - Master intensity (1-15)
  CL<n>   - Select channel (0-15)
  CI<n>   - Intensity on the selected channel (0-15)
  CA<n>   - Select register
  CW<n>   - Write the selected register
  Cr<n>   - Read register n, prints the response
  EL<n>   - Brightness level

  dump    - Read registers 0x00-0x0f
  help    - Show this help
  quit    - Exit console`)
}

// CreateConsoleCmd creates the interactive console command.
func CreateConsoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console",
		Short: "Interactive raw protocol console",
		Long:  "Opens the serial link and sends each typed line to the chip, printing register read responses.",
		Args:  cobra.NoArgs,
		Run: humacli.WithOptions(func(_ *cobra.Command, _ []string, opts *Options) {
			l, err := openLink(opts)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				os.Exit(1)
			}
			defer func() { _ = l.Close() }()

			console, err := NewConsole(l.conn)
			if err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				_ = l.Close()
				os.Exit(1)
			}
			if err := console.Run(); err != nil {
				fmt.Fprintln(os.Stderr, "Error:", err)
				_ = l.Close()
				os.Exit(1)
			}
		}),
	}
}
