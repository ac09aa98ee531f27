package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"
)

// LogLevelEnv overrides the log level (trace, debug, info, warn, error).
const LogLevelEnv = "TEZOS_VOTE_LOG_LEVEL"

// LogDir returns the directory the wizard writes its log file to.
func LogDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "tezos-logs")
	}
	return filepath.Join(home, ".tezos-logs")
}

// NewFileLogger creates a named logger appending to filename inside LogDir.
// The returned closer releases the log file.
func NewFileLogger(name, filename string) (hclog.Logger, io.Closer, error) {
	dir := LogDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(dir, filename)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}

	return NewLogger(name, f), f, nil
}

// NewLogger creates a named logger writing to out.
func NewLogger(name string, out io.Writer) hclog.Logger {
	level := hclog.Info
	if env := os.Getenv(LogLevelEnv); env != "" {
		if l := hclog.LevelFromString(env); l != hclog.NoLevel {
			level = l
		}
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      level,
		Output:     out,
		TimeFormat: "2006-01-02 15:04:05",
	})
}
