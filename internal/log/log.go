// Package log holds the zerolog loggers shared by the wallet, the ledger
// backends and the ledger server.
package log

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/term"
)

// Logger is the root logger. Component loggers derive from it.
var Logger zerolog.Logger

// Component loggers.
var (
	Wallet  zerolog.Logger
	Ledger  zerolog.Logger
	Index   zerolog.Logger
	Storage zerolog.Logger
	Server  zerolog.Logger
)

const timeFormat = "15:04:05"

// tee is the log file opened by the last InitWriter call, if any.
var tee *os.File

func init() {
	Logger = NewConsoleLogger(os.Stdout, "info")
	initComponentLoggers()
}

// Init configures logging to stdout. See InitWriter.
func Init(level string, jsonOutput bool, file string) error {
	return InitWriter(os.Stdout, level, jsonOutput, file)
}

// InitWriter points the root logger at w, as console text or JSON lines.
// A non-empty file additionally receives every line as JSON. A log file
// opened by an earlier call is closed.
func InitWriter(w io.Writer, level string, jsonOutput bool, file string) error {
	out := w
	if !jsonOutput {
		out = consoleWriter(w)
	}
	var f *os.File
	if file != "" {
		var err error
		f, err = os.OpenFile(file, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
		if err != nil {
			return err
		}
		out = zerolog.MultiLevelWriter(out, f)
	}
	Logger = newLogger(out, level)
	initComponentLoggers()

	prev := tee
	tee = f
	if prev != nil {
		prev.Close()
	}
	return nil
}

// Close releases the log file, if any, and sends further output to stderr.
func Close() error {
	if tee == nil {
		return nil
	}
	lvl := Logger.GetLevel()
	Logger = zerolog.New(consoleWriter(os.Stderr)).Level(lvl).With().Timestamp().Logger()
	initComponentLoggers()
	err := tee.Close()
	tee = nil
	return err
}

// SetNetwork tags every subsequent line with the active network.
func SetNetwork(network string) {
	Logger = Logger.With().Str("network", network).Logger()
	initComponentLoggers()
}

// NewConsoleLogger returns a human-readable logger. Colors are used only
// when w is a terminal.
func NewConsoleLogger(w io.Writer, level string) zerolog.Logger {
	return newLogger(consoleWriter(w), level)
}

// NewJSONLogger returns a logger that writes one JSON object per line.
func NewJSONLogger(w io.Writer, level string) zerolog.Logger {
	return newLogger(w, level)
}

func newLogger(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
}

func consoleWriter(w io.Writer) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: timeFormat,
		NoColor:    !isTerminal(w),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// parseLevel maps a config level to zerolog. Unknown levels mean info.
func parseLevel(level string) zerolog.Level {
	switch level {
	case "off", "disabled":
		return zerolog.Disabled
	case "":
		return zerolog.InfoLevel
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}

func initComponentLoggers() {
	Wallet = Logger.With().Str("component", "wallet").Logger()
	Ledger = Logger.With().Str("component", "ledger").Logger()
	Index = Logger.With().Str("component", "index").Logger()
	Storage = Logger.With().Str("component", "storage").Logger()
	Server = Logger.With().Str("component", "ledgerd").Logger()
}

// WithBackend returns a ledger logger tagged with the backend name.
func WithBackend(name string) zerolog.Logger {
	return Ledger.With().Str("backend", name).Logger()
}
