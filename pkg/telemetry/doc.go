// Package telemetry provides the observability surface of saltboot:
// the global zerolog logger, Prometheus metrics exported as a
// node-exporter textfile, OpenTelemetry trace spans around each
// lifecycle phase, and the named-pipe log forwarder that captures
// package-manager output into the log file.
package telemetry
