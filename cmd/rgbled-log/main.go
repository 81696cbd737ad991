// Command rgbled-log is a tool for viewing and analyzing agent protocol
// captures.
//
// Captures are written by rgbled-device when run with -protocol-log.
//
// Usage:
//
//	rgbled-log <command> [flags] <file.plog>
//
// Commands:
//
//	view     View capture in human-readable format
//	export   Export capture to JSONL or CSV
//	filter   Filter capture and write to new file
//	stats    Show statistics about the capture
//
// Examples:
//
//	# View all events
//	rgbled-log view device.plog
//
//	# View only command traffic sent by the device
//	rgbled-log view -category command -direction out device.plog
//
//	# Export to JSONL
//	rgbled-log export -format jsonl device.plog
//
//	# Keep one session
//	rgbled-log filter -session 1b4e28ba -o session.plog device.plog
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/rgbled/rgbled-go/cmd/rgbled-log/commands"
)

const usage = `rgbled-log - RGB LED agent protocol capture viewer

Usage:
  rgbled-log <command> [flags] <file.plog>

Commands:
  view     View capture in human-readable format
  export   Export capture to JSONL or CSV
  filter   Filter capture and write to new file
  stats    Show statistics about the capture

Use "rgbled-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "filter":
		runFilter(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

// filterFlags registers the filter flags shared by view and filter.
func filterFlags(fs *flag.FlagSet) *commands.FilterOptions {
	opts := &commands.FilterOptions{}
	fs.StringVar(&opts.SessionID, "session", "", "Filter by session ID")
	fs.StringVar(&opts.DeviceID, "device-id", "", "Filter by device ID")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	fs.StringVar(&opts.Layer, "layer", "", "Filter by layer (transport, codec, engine)")
	fs.StringVar(&opts.Direction, "direction", "", "Filter by direction (in, out)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category (telemetry, properties, command, state, error)")
	return opts
}

func newFlagSet(name, summary string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "rgbled-log %s - %s\n\nUsage:\n  rgbled-log %s [flags] <file.plog>\n\nFlags:\n", name, summary, name)
		fs.PrintDefaults()
	}
	return fs
}

// pathArg returns the capture path or exits.
func pathArg(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: log file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := newFlagSet("view", "View capture in human-readable format")
	opts := filterFlags(fs)
	path := pathArg(fs, args)

	filter, err := opts.Build()
	if err != nil {
		fail(err)
	}
	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export capture to JSONL or CSV")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")
	path := pathArg(fs, args)

	var w io.Writer = os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fail(fmt.Errorf("failed to create output file: %w", err))
		}
		defer f.Close()
		w = f
	}
	if err := commands.RunExport(path, *format, w); err != nil {
		fail(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter capture and write to new file")
	output := fs.String("o", "", "Output file (required)")
	opts := filterFlags(fs)
	path := pathArg(fs, args)

	if *output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}
	filter, err := opts.Build()
	if err != nil {
		fail(err)
	}
	n, err := commands.RunFilter(path, *output, filter)
	if err != nil {
		fail(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, *output)
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about the capture")
	path := pathArg(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
