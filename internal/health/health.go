package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// Status represents the overall health status
type Status string

const (
	StatusOK       Status = "ok"
	StatusDegraded Status = "degraded"
	StatusError    Status = "error"
)

// ComponentStatus represents the health of a single component
type ComponentStatus struct {
	Status    Status                 `json:"status"`
	Message   string                 `json:"message,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// HealthReport represents the complete health status of the system
type HealthReport struct {
	Status     Status                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentStatus `json:"components"`
	Uptime     float64                    `json:"uptime_seconds"` // Uptime in seconds (numeric)
}

// Checker is the main health monitoring service, tracking the four
// Mesh Manager control loops plus the Failover Manager's state.
type Checker struct {
	mu         sync.RWMutex
	components map[string]ComponentStatus
	startTime  time.Time
	thresholds Thresholds
}

// Thresholds defines how long a control loop may go without a
// successful tick before it is considered degraded/failed, expressed
// as multiples of that loop's own cadence.
type Thresholds struct {
	LoopStaleOKMultiplier    int // degraded above this many cadences since last tick (default 2)
	LoopStaleErrorMultiplier int // error above this many cadences since last tick (default 10)
}

// DefaultThresholds returns sensible default thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		LoopStaleOKMultiplier:    2,
		LoopStaleErrorMultiplier: 10,
	}
}

// NewChecker creates a new health checker
func NewChecker(thresholds Thresholds) *Checker {
	if thresholds.LoopStaleOKMultiplier <= 0 {
		thresholds = DefaultThresholds()
	}
	return &Checker{
		components: make(map[string]ComponentStatus),
		startTime:  time.Now(),
		thresholds: thresholds,
	}
}

// UpdateComponent updates the status of a specific component
func (c *Checker) UpdateComponent(name string, status ComponentStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	status.Timestamp = time.Now()
	c.components[name] = status
}

// UpdateLoopStatus records the outcome of one control loop's tick. name
// is one of "discovery", "monitoring", "optimization", "housekeeping";
// cadence is that loop's configured interval (spec.md §4.F).
func (c *Checker) UpdateLoopStatus(name string, lastTick time.Time, cadence time.Duration, err error) {
	status := ComponentStatus{
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"last_tick": lastTick.Format(time.RFC3339),
		},
	}

	sinceTick := time.Since(lastTick)
	switch {
	case err != nil:
		status.Status = StatusError
		status.Message = err.Error()
	case cadence > 0 && sinceTick > cadence*time.Duration(c.thresholds.LoopStaleErrorMultiplier):
		status.Status = StatusError
		status.Message = "loop has not ticked successfully within the error threshold"
	case cadence > 0 && sinceTick > cadence*time.Duration(c.thresholds.LoopStaleOKMultiplier):
		status.Status = StatusDegraded
		status.Message = "loop is running behind its configured cadence"
	default:
		status.Status = StatusOK
		status.Message = "running on schedule"
	}

	status.Details["seconds_since_tick"] = int64(sinceTick.Seconds())
	c.UpdateComponent("loop."+name, status)
}

// UpdateFailoverStatus records the Failover Manager's current state
// (spec.md §4.E): Degraded maps to error, any hysteresis-in-progress
// state maps to degraded, Normal maps to ok.
func (c *Checker) UpdateFailoverStatus(state, primary string, failedCount int) {
	status := ComponentStatus{
		Timestamp: time.Now(),
		Details: map[string]interface{}{
			"primary":      primary,
			"failed_count": failedCount,
		},
	}

	switch state {
	case "Degraded":
		status.Status = StatusError
		status.Message = "all interfaces failed"
	case "Monitoring", "FailingOver", "Recovering":
		status.Status = StatusDegraded
		status.Message = "failover hysteresis in progress: " + state
	default:
		status.Status = StatusOK
		status.Message = "all interfaces healthy"
	}

	c.UpdateComponent("failover", status)
}

// UpdateDiscoveryStatus records the discovery loop's last pass outcome
// and current peer count.
func (c *Checker) UpdateDiscoveryStatus(lastTick time.Time, cadence time.Duration, peerCount int, err error) {
	c.UpdateLoopStatus("discovery", lastTick, cadence, err)
	c.mu.Lock()
	if status, ok := c.components["loop.discovery"]; ok {
		status.Details["peer_count"] = peerCount
		c.components["loop.discovery"] = status
	}
	c.mu.Unlock()
}

// GetReport generates a complete health report
func (c *Checker) GetReport() HealthReport {
	c.mu.RLock()
	defer c.mu.RUnlock()

	// Deep copy components
	components := make(map[string]ComponentStatus, len(c.components))
	for k, v := range c.components {
		components[k] = v
	}

	// Calculate overall status
	overallStatus := c.calculateOverallStatus(components)

	return HealthReport{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Components: components,
		Uptime:     time.Since(c.startTime).Seconds(),
	}
}

// calculateOverallStatus determines the overall system status from component statuses
func (c *Checker) calculateOverallStatus(components map[string]ComponentStatus) Status {
	if len(components) == 0 {
		return StatusOK
	}

	hasError := false
	hasDegraded := false

	for name, component := range components {
		// Failover entering Degraded (all interfaces down) is always
		// an error-level overall status.
		if name == "failover" && component.Status == StatusError {
			return StatusError
		}

		switch component.Status {
		case StatusError:
			hasError = true
		case StatusDegraded:
			hasDegraded = true
		}
	}

	if hasError {
		return StatusError
	}
	if hasDegraded {
		return StatusDegraded
	}
	return StatusOK
}

// HTTPHandler creates an HTTP handler for the health endpoint
func (c *Checker) HTTPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.GetReport()

		w.Header().Set("Content-Type", "application/json")

		// Set HTTP status code based on health status
		switch report.Status {
		case StatusOK:
			w.WriteHeader(http.StatusOK)
		case StatusDegraded:
			w.WriteHeader(http.StatusOK) // Still return 200 for degraded
		case StatusError:
			w.WriteHeader(http.StatusServiceUnavailable)
		}

		json.NewEncoder(w).Encode(report)
	}
}

// LivenessHandler returns a simple liveness probe (always returns 200 if process is running)
func (c *Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "alive",
		})
	}
}

// ReadinessHandler returns a readiness probe (200 only if status is OK)
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.GetReport()

		w.Header().Set("Content-Type", "application/json")

		if report.Status == StatusOK {
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
			})
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":          "not_ready",
				"message":         "system is not in OK state",
				"current_status":  string(report.Status),
			})
		}
	}
}

// StartHTTPServer starts the health check HTTP server
func (c *Checker) StartHTTPServer(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", c.HTTPHandler())
	mux.HandleFunc("/health/live", c.LivenessHandler())
	mux.HandleFunc("/health/ready", c.ReadinessHandler())

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	// Graceful shutdown handler
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	return nil
}
