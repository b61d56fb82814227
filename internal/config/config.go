package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/taniwha3/meshbond/internal/aggregator"
)

// Config is the mesh bonding daemon's top-level configuration
// (spec.md §6 schema, carried here as YAML rather than JSON per the
// teacher's convention).
type Config struct {
	NodeDiscovery   NodeDiscoveryConfig   `yaml:"node_discovery"`
	LinkAggregation LinkAggregationConfig `yaml:"link_aggregation"`
	Failover        FailoverConfig        `yaml:"failover"`
	Interfaces      InterfacesConfig      `yaml:"interfaces"`
	Logging         LoggingConfig         `yaml:"logging"`
}

// NodeDiscoveryConfig configures the discovery loop.
type NodeDiscoveryConfig struct {
	Port                  int    `yaml:"port"`
	BroadcastIntervalStr  string `yaml:"broadcast_interval"` // seconds, default 5
	NodeTimeoutStr        string `yaml:"node_timeout"`       // seconds, default 60
	Group                 string `yaml:"group"`
}

// BroadcastInterval parses the broadcast interval, defaulting to 5s.
// The value is validated but not passed to the Mesh Manager, whose
// discovery loop runs on a fixed 5s cadence.
func (n *NodeDiscoveryConfig) BroadcastInterval() (time.Duration, error) {
	return parseSecondsOrDefault(n.BroadcastIntervalStr, "node_discovery.broadcast_interval", 5*time.Second)
}

// NodeTimeout parses the peer freshness TTL, defaulting to 60s.
// The value is validated but not passed on; peers are evicted after the
// fixed meshmodel.PeerTTL (60s).
func (n *NodeDiscoveryConfig) NodeTimeout() (time.Duration, error) {
	return parseSecondsOrDefault(n.NodeTimeoutStr, "node_discovery.node_timeout", 60*time.Second)
}

// LinkAggregationConfig configures the Link Aggregator.
type LinkAggregationConfig struct {
	Mode                   string `yaml:"mode"` // failover|load_balance|adaptive, default load_balance
	MaxQueueSize           int    `yaml:"max_queue_size"`
	RebalanceIntervalStr   string `yaml:"rebalance_interval"` // seconds, default 30
}

// RebalanceInterval parses the rebalance interval, defaulting to 30s.
// The value is validated but not passed to the Mesh Manager, whose
// optimization loop runs on a fixed 30s cadence.
func (l *LinkAggregationConfig) RebalanceInterval() (time.Duration, error) {
	return parseSecondsOrDefault(l.RebalanceIntervalStr, "link_aggregation.rebalance_interval", 30*time.Second)
}

// AggregationMode maps the configured string to an aggregator.Mode.
// An empty or "load_balance" value returns the zero Mode, which lets
// the Aggregator auto-select between failover/load_balance; only
// "adaptive" pins an explicit mode.
func (l *LinkAggregationConfig) AggregationMode() (aggregator.Mode, error) {
	switch l.Mode {
	case "", "load_balance":
		return "", nil
	case "failover":
		return aggregator.ModeFailover, nil
	case "adaptive":
		return aggregator.ModeAdaptive, nil
	default:
		return "", fmt.Errorf("link_aggregation.mode: unknown mode %q", l.Mode)
	}
}

// FailoverConfig configures the Failover Manager's hysteresis.
type FailoverConfig struct {
	Threshold                int    `yaml:"threshold"`          // default 3
	RecoveryThreshold        int    `yaml:"recovery_threshold"` // default 2
	MonitoringIntervalStr    string `yaml:"monitoring_interval"` // seconds, default 10
}

// MonitoringInterval parses the per-interface health-check cadence,
// defaulting to 10s.
func (f *FailoverConfig) MonitoringInterval() (time.Duration, error) {
	return parseSecondsOrDefault(f.MonitoringIntervalStr, "failover.monitoring_interval", 10*time.Second)
}

// InterfacesConfig names the primary and ordered backup interfaces.
type InterfacesConfig struct {
	Primary string   `yaml:"primary"`
	Backups []string `yaml:"backups"`
}

// LoggingConfig contains logging settings, unchanged in shape from the
// teacher's configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error (default: info)
	Format string `yaml:"format"` // json, console (default: console)
}

// parseSecondsOrDefault parses raw as a plain integer count of seconds
// (matching spec.md §6's JSON schema, where these fields are bare
// numbers) or, if raw looks like a Go duration string, via
// time.ParseDuration. An empty raw returns def.
func parseSecondsOrDefault(raw, field string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		if d <= 0 {
			return 0, fmt.Errorf("%s must be positive, got %v", field, d)
		}
		return d, nil
	}
	var seconds int
	if _, err := fmt.Sscanf(raw, "%d", &seconds); err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", field, raw, err)
	}
	if seconds <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %ds", field, seconds)
	}
	return time.Duration(seconds) * time.Second, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration is well-formed and that every
// duration field parses (spec.md §6).
func (c *Config) Validate() error {
	if c.Interfaces.Primary == "" {
		return fmt.Errorf("interfaces.primary is required")
	}

	if _, err := c.NodeDiscovery.BroadcastInterval(); err != nil {
		return err
	}
	if _, err := c.NodeDiscovery.NodeTimeout(); err != nil {
		return err
	}
	if _, err := c.LinkAggregation.RebalanceInterval(); err != nil {
		return err
	}
	if _, err := c.LinkAggregation.AggregationMode(); err != nil {
		return err
	}
	if _, err := c.Failover.MonitoringInterval(); err != nil {
		return err
	}

	if c.Failover.Threshold < 0 {
		return fmt.Errorf("failover.threshold must be >= 0, got %d", c.Failover.Threshold)
	}
	if c.Failover.RecoveryThreshold < 0 {
		return fmt.Errorf("failover.recovery_threshold must be >= 0, got %d", c.Failover.RecoveryThreshold)
	}
	if c.LinkAggregation.MaxQueueSize < 0 {
		return fmt.Errorf("link_aggregation.max_queue_size must be >= 0, got %d", c.LinkAggregation.MaxQueueSize)
	}

	for _, backup := range c.Interfaces.Backups {
		if backup == c.Interfaces.Primary {
			return fmt.Errorf("interfaces.backups: %q duplicates interfaces.primary", backup)
		}
	}

	return nil
}

// FailoverThresholds builds a failover.Thresholds from this config,
// falling back to spec.md §4.E defaults for zero values.
func (c *Config) FailoverThresholds() (threshold, recoveryThreshold int, monitoringInterval time.Duration, err error) {
	monitoringInterval, err = c.Failover.MonitoringInterval()
	if err != nil {
		return 0, 0, 0, err
	}
	threshold = c.Failover.Threshold
	if threshold == 0 {
		threshold = 3
	}
	recoveryThreshold = c.Failover.RecoveryThreshold
	if recoveryThreshold == 0 {
		recoveryThreshold = 2
	}
	return threshold, recoveryThreshold, monitoringInterval, nil
}
