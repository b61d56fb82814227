package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Format represents the log output format
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

// Level represents log levels
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Config holds logging configuration
type Config struct {
	Level  Level
	Format Format
	Output io.Writer // defaults to os.Stdout if nil
}

// DefaultConfig returns a default logging configuration
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Format: FormatConsole,
		Output: os.Stdout,
	}
}

var defaultLogger *slog.Logger

func init() {
	// Initialize with default console logger
	cfg := DefaultConfig()
	defaultLogger = New(cfg)
}

// New creates a new structured logger with the given configuration
func New(cfg Config) *slog.Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stdout
	}

	level := parseLevel(cfg.Level)

	var handler slog.Handler
	opts := &slog.HandlerOptions{
		Level: level,
	}

	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(cfg.Output, opts)
	default:
		handler = slog.NewTextHandler(cfg.Output, opts)
	}

	return slog.New(handler)
}

// parseLevel converts a Level string to slog.Level
func parseLevel(level Level) slog.Level {
	switch level {
	case LevelDebug:
		return slog.LevelDebug
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetDefault sets the default logger for the package
func SetDefault(logger *slog.Logger) {
	defaultLogger = logger
	slog.SetDefault(logger)
}

// Default returns the default logger
func Default() *slog.Logger {
	return defaultLogger
}

// Context keys for logging
type contextKey string

const (
	// ContextKeyNodeID is the context key for the local node id
	ContextKeyNodeID contextKey = "node_id"
	// ContextKeyInterface is the context key for an interface name
	ContextKeyInterface contextKey = "interface"
)

// WithNodeID adds the local node id to context
func WithNodeID(ctx context.Context, nodeID string) context.Context {
	return context.WithValue(ctx, ContextKeyNodeID, nodeID)
}

// WithInterface adds an interface name to context
func WithInterface(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, ContextKeyInterface, name)
}

// DiscoveryAttrs returns common attributes for a discovery pass.
func DiscoveryAttrs(peersFound int, durationMs int64, group string) []slog.Attr {
	return []slog.Attr{
		slog.Int("peers_found", peersFound),
		slog.Int64("duration_ms", durationMs),
		slog.String("group", group),
	}
}

// AggregationAttrs returns common attributes for weight/mode recomputation.
func AggregationAttrs(mode string, activeInterfaces int, totalWeight float64) []slog.Attr {
	return []slog.Attr{
		slog.String("mode", mode),
		slog.Int("active_interfaces", activeInterfaces),
		slog.Float64("total_weight", totalWeight),
	}
}

// FailoverAttrs returns common attributes for a failover state transition.
func FailoverAttrs(fromState, toState, primary string, failedCount int) []slog.Attr {
	return []slog.Attr{
		slog.String("from_state", fromState),
		slog.String("to_state", toState),
		slog.String("primary", primary),
		slog.Int("failed_count", failedCount),
	}
}

// ProbeAttrs returns common attributes for a reachability probe.
func ProbeAttrs(iface, target string, reachable bool, rttMs float64) []slog.Attr {
	return []slog.Attr{
		slog.String("interface", iface),
		slog.String("target", target),
		slog.Bool("reachable", reachable),
		slog.Float64("rtt_ms", rttMs),
	}
}

// ErrorAttrs returns common attributes for error logging
func ErrorAttrs(err error) []slog.Attr {
	if err == nil {
		return nil
	}
	return []slog.Attr{
		slog.String("error", err.Error()),
		slog.String("error_type", errorType(err)),
	}
}

// errorType attempts to determine the type of error
func errorType(err error) string {
	if err == nil {
		return ""
	}
	// Try to get the concrete type name
	return fmt.Sprintf("%T", err)
}

// Helper functions for common logging patterns

// LogDiscoveryPass logs a completed discovery pass with standard fields.
func LogDiscoveryPass(logger *slog.Logger, peersFound int, durationMs int64, group string) {
	logger.LogAttrs(context.Background(), slog.LevelInfo, "discovery pass completed",
		DiscoveryAttrs(peersFound, durationMs, group)...)
}

// LogDiscoveryError logs a discovery pass failure with standard fields.
func LogDiscoveryError(logger *slog.Logger, group string, err error) {
	attrs := []slog.Attr{slog.String("group", group)}
	attrs = append(attrs, ErrorAttrs(err)...)
	logger.LogAttrs(context.Background(), slog.LevelError, "discovery pass failed", attrs...)
}

// LogFailoverTransition logs a failover state transition with standard fields.
func LogFailoverTransition(logger *slog.Logger, fromState, toState, primary string, failedCount int) {
	level := slog.LevelInfo
	if toState == "Degraded" {
		level = slog.LevelError
	}
	logger.LogAttrs(context.Background(), level, "failover state transition",
		FailoverAttrs(fromState, toState, primary, failedCount)...)
}

// LogProbe logs a reachability probe result with standard fields.
func LogProbe(logger *slog.Logger, iface, target string, reachable bool, rttMs float64) {
	logger.LogAttrs(context.Background(), slog.LevelDebug, "probe completed",
		ProbeAttrs(iface, target, reachable, rttMs)...)
}
