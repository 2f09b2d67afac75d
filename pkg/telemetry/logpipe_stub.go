//go:build !linux

package telemetry

import "fmt"

// LogPipe is unavailable on this platform; file logging falls back to
// the structured copy SetupLogger writes.
type LogPipe struct{}

// OpenLogPipe always fails here. Callers treat the error as a soft
// degradation, not a fatal condition.
func OpenLogPipe(logPath string) (*LogPipe, error) {
	return nil, fmt.Errorf("log pipe requires a linux host")
}

// Close is a no-op and is safe on a nil pipe.
func (p *LogPipe) Close() error {
	return nil
}
