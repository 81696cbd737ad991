// Package interactive provides the interactive command-line interface
// for rgbled-device.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rgbled/rgbled-go/pkg/command"
	"github.com/rgbled/rgbled-go/pkg/engine"
	"github.com/rgbled/rgbled-go/pkg/twin"
)

// Runner executes fn on the goroutine that owns the engine. It returns false
// if ctx ended before fn was queued.
type Runner interface {
	Submit(ctx context.Context, fn func(*engine.Engine)) bool
}

// Console handles interactive mode for rgbled-device.
type Console struct {
	rl        *readline.Instance
	out       io.Writer
	requestID uint32
}

// New creates a new interactive console.
func New() (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "device> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{rl: rl, out: rl.Stdout()}, nil
}

// Stdout returns a writer that properly coordinates with the readline input.
// Use this for log output to avoid interfering with the command prompt.
func (c *Console) Stdout() io.Writer {
	return c.rl.Stdout()
}

// Stderr returns a writer that properly coordinates with the readline input.
func (c *Console) Stderr() io.Writer {
	return c.rl.Stderr()
}

// Run starts the interactive command loop.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc, r Runner) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		if !c.Execute(ctx, r, line) {
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}
	}
}

// Execute runs one command line. It returns false when the line asks to quit.
func (c *Console) Execute(ctx context.Context, r Runner, line string) bool {
	input := strings.TrimSpace(line)
	if input == "" {
		return true
	}
	name, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(name) {
	case "help", "?":
		c.printHelp()
	case "status", "s":
		c.cmdStatus(ctx, r)
	case "toggle", "t":
		c.invoke(ctx, r, command.NameToggleMain, nil)
	case "red":
		c.invoke(ctx, r, command.NameToggleRed, nil)
	case "green":
		c.invoke(ctx, r, command.NameToggleGreen, nil)
	case "blue":
		c.invoke(ctx, r, command.NameToggleBlue, nil)
	case "text":
		if rest == "" {
			fmt.Fprintln(c.out, "Usage: text <code>")
			return true
		}
		c.invoke(ctx, r, command.NameDisplayText, []byte(strconv.Quote(rest)))
	case "cmd":
		cmdName, payload, _ := strings.Cut(rest, " ")
		if cmdName == "" {
			fmt.Fprintln(c.out, "Usage: cmd <name> [payload]")
			return true
		}
		var p []byte
		if payload = strings.TrimSpace(payload); payload != "" {
			p = []byte(payload)
		}
		c.invoke(ctx, r, cmdName, p)
	case "freq":
		c.cmdFreq(ctx, r, rest)
	case "twin":
		if rest == "" {
			fmt.Fprintln(c.out, "Usage: twin <json>")
			return true
		}
		id := c.nextRequestID()
		c.do(ctx, r, func(e *engine.Engine) error {
			return e.HandleTwinDocument([]byte(rest), id)
		})
	case "info":
		id := c.nextRequestID()
		c.do(ctx, r, func(e *engine.Engine) error {
			return e.SendDeviceInfo(id)
		})
	case "quit", "exit", "q":
		return false
	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", name)
	}
	return true
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
RGB LED Device Commands:
  LED:
    toggle             - Toggle the strip on or off
    red|green|blue     - Toggle one color channel (strip must be on)
    text <code>        - Send DisplayText with a color code (e.g. 0000FF)
    cmd <name> [json]  - Send any command with an optional JSON payload

  Twin:
    freq <secs>        - Write telemetryFrequencySecs as the hub would
    twin <json>        - Apply a full twin document
    info               - Send the device info report

  General:
    status             - Show device state
    help               - Show this help
    quit               - Exit device`)
}

func (c *Console) cmdStatus(ctx context.Context, r Runner) {
	c.do(ctx, r, func(e *engine.Engine) error {
		st := e.State()
		fmt.Fprintf(c.out, "Power:      %v\n", st.Actuator.Power)
		fmt.Fprintf(c.out, "Color:      %s\n", st.Actuator.Color)
		fmt.Fprintf(c.out, "LED status: %s\n", st.Actuator.Status())
		fmt.Fprintf(c.out, "Telemetry:  every %s\n", st.TelemetryFrequency)
		fmt.Fprintf(c.out, "Version:    %d\n", e.DesiredVersion())
		fmt.Fprintf(c.out, "Session:    %s\n", e.SessionID())
		return nil
	})
}

func (c *Console) cmdFreq(ctx context.Context, r Runner, arg string) {
	secs, err := strconv.ParseInt(arg, 10, 32)
	if err != nil {
		fmt.Fprintln(c.out, "Usage: freq <secs>")
		return
	}
	id := c.nextRequestID()
	c.do(ctx, r, func(e *engine.Engine) error {
		patch := fmt.Sprintf(`{"$version":%d,%q:%d}`, e.DesiredVersion()+1, twin.TelemetryFrequencyName, secs)
		return e.HandlePropertiesUpdate([]byte(patch), id)
	})
}

func (c *Console) invoke(ctx context.Context, r Runner, name string, payload []byte) {
	req := command.Request{Name: name, Payload: payload, RequestID: c.nextRequestID()}
	c.do(ctx, r, func(e *engine.Engine) error {
		return e.HandleCommand(req)
	})
}

// do runs fn on the engine goroutine and waits for it.
func (c *Console) do(ctx context.Context, r Runner, fn func(*engine.Engine) error) {
	done := make(chan error, 1)
	if !r.Submit(ctx, func(e *engine.Engine) { done <- fn(e) }) {
		return
	}
	select {
	case err := <-done:
		if err != nil {
			fmt.Fprintf(c.out, "Error: %v\n", err)
		}
	case <-ctx.Done():
	}
}

func (c *Console) nextRequestID() uint32 {
	c.requestID++
	return c.requestID
}
