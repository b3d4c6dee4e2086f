package api

import (
	"log/slog"
	"time"
)

// HTTPServerConfig contains all configuration parameters for the royalty
// HTTP server.
type HTTPServerConfig struct {
	// ListenAddr is the address and port the API listens on.
	ListenAddr string

	// MetricsAddr is the address and port for the Prometheus metrics server.
	// If empty, metrics server will not be started.
	MetricsAddr string

	// EnablePprof mounts the pprof API under /debug when true.
	EnablePprof bool

	Log *slog.Logger

	// DrainDuration is the time to wait after marking server not ready
	// before shutting down, allowing load balancers to detect the change.
	DrainDuration time.Duration

	// GracefulShutdownDuration is the maximum time to wait for in-flight
	// requests to complete during shutdown.
	GracefulShutdownDuration time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// MaxDeadlineWindow bounds how far in the future a signed write's
	// deadline may lie. Zero disables the bound.
	MaxDeadlineWindow time.Duration
}
