package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNewChecker(t *testing.T) {
	thresholds := DefaultThresholds()
	checker := NewChecker(thresholds)

	if checker == nil {
		t.Fatal("NewChecker returned nil")
	}
	if len(checker.components) != 0 {
		t.Errorf("expected no components initially, got %d", len(checker.components))
	}
	if checker.thresholds != thresholds {
		t.Errorf("expected thresholds %v, got %v", thresholds, checker.thresholds)
	}
}

func TestNewCheckerAppliesDefaultsForZeroThresholds(t *testing.T) {
	checker := NewChecker(Thresholds{})
	if checker.thresholds.LoopStaleOKMultiplier != 2 {
		t.Errorf("expected default OK multiplier 2, got %d", checker.thresholds.LoopStaleOKMultiplier)
	}
	if checker.thresholds.LoopStaleErrorMultiplier != 10 {
		t.Errorf("expected default error multiplier 10, got %d", checker.thresholds.LoopStaleErrorMultiplier)
	}
}

func TestUpdateComponent(t *testing.T) {
	checker := NewChecker(DefaultThresholds())

	checker.UpdateComponent("test", ComponentStatus{
		Status:  StatusOK,
		Message: "all good",
	})

	report := checker.GetReport()
	status, ok := report.Components["test"]
	if !ok {
		t.Fatal("expected component 'test' in report")
	}
	if status.Status != StatusOK {
		t.Errorf("expected status OK, got %s", status.Status)
	}
	if status.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestUpdateLoopStatus(t *testing.T) {
	tests := []struct {
		name           string
		lastTick       time.Time
		cadence        time.Duration
		err            error
		expectedStatus Status
	}{
		{
			name:           "on schedule",
			lastTick:       time.Now(),
			cadence:        5 * time.Second,
			expectedStatus: StatusOK,
		},
		{
			name:           "just over OK threshold",
			lastTick:       time.Now().Add(-11 * time.Second),
			cadence:        5 * time.Second,
			expectedStatus: StatusDegraded,
		},
		{
			name:           "well past error threshold",
			lastTick:       time.Now().Add(-60 * time.Second),
			cadence:        5 * time.Second,
			expectedStatus: StatusError,
		},
		{
			name:           "explicit error takes priority",
			lastTick:       time.Now(),
			cadence:        5 * time.Second,
			err:            errors.New("broadcast failed"),
			expectedStatus: StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker(DefaultThresholds())
			checker.UpdateLoopStatus("discovery", tt.lastTick, tt.cadence, tt.err)

			report := checker.GetReport()
			status, ok := report.Components["loop.discovery"]
			if !ok {
				t.Fatal("expected component 'loop.discovery' in report")
			}
			if status.Status != tt.expectedStatus {
				t.Errorf("expected status %s, got %s (message: %s)", tt.expectedStatus, status.Status, status.Message)
			}
			if tt.err != nil && status.Message != tt.err.Error() {
				t.Errorf("expected message %q, got %q", tt.err.Error(), status.Message)
			}
		})
	}
}

func TestUpdateDiscoveryStatusRecordsPeerCount(t *testing.T) {
	checker := NewChecker(DefaultThresholds())
	checker.UpdateDiscoveryStatus(time.Now(), 5*time.Second, 4, nil)

	report := checker.GetReport()
	status, ok := report.Components["loop.discovery"]
	if !ok {
		t.Fatal("expected component 'loop.discovery' in report")
	}
	if status.Details["peer_count"] != 4 {
		t.Errorf("expected peer_count=4, got %v", status.Details["peer_count"])
	}
}

func TestUpdateFailoverStatus(t *testing.T) {
	tests := []struct {
		name           string
		state          string
		expectedStatus Status
	}{
		{name: "normal", state: "Normal", expectedStatus: StatusOK},
		{name: "monitoring", state: "Monitoring", expectedStatus: StatusDegraded},
		{name: "failing over", state: "FailingOver", expectedStatus: StatusDegraded},
		{name: "recovering", state: "Recovering", expectedStatus: StatusDegraded},
		{name: "degraded", state: "Degraded", expectedStatus: StatusError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker(DefaultThresholds())
			checker.UpdateFailoverStatus(tt.state, "eth0", 1)

			report := checker.GetReport()
			status, ok := report.Components["failover"]
			if !ok {
				t.Fatal("expected component 'failover' in report")
			}
			if status.Status != tt.expectedStatus {
				t.Errorf("expected status %s, got %s", tt.expectedStatus, status.Status)
			}
			if status.Details["primary"] != "eth0" {
				t.Errorf("expected primary=eth0, got %v", status.Details["primary"])
			}
		})
	}
}

func TestCalculateOverallStatus(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*Checker)
		expected Status
	}{
		{
			name:     "no components",
			setup:    func(c *Checker) {},
			expected: StatusOK,
		},
		{
			name: "all ok",
			setup: func(c *Checker) {
				c.UpdateLoopStatus("discovery", time.Now(), 5*time.Second, nil)
				c.UpdateFailoverStatus("Normal", "eth0", 0)
			},
			expected: StatusOK,
		},
		{
			name: "one degraded",
			setup: func(c *Checker) {
				c.UpdateLoopStatus("discovery", time.Now(), 5*time.Second, nil)
				c.UpdateFailoverStatus("Monitoring", "eth0", 1)
			},
			expected: StatusDegraded,
		},
		{
			name: "loop error",
			setup: func(c *Checker) {
				c.UpdateLoopStatus("discovery", time.Now(), 5*time.Second, errors.New("boom"))
			},
			expected: StatusError,
		},
		{
			name: "failover degraded always escalates to error",
			setup: func(c *Checker) {
				c.UpdateLoopStatus("discovery", time.Now(), 5*time.Second, nil)
				c.UpdateFailoverStatus("Degraded", "eth0", 3)
			},
			expected: StatusError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker(DefaultThresholds())
			tt.setup(checker)

			report := checker.GetReport()
			if report.Status != tt.expected {
				t.Errorf("expected overall status %s, got %s", tt.expected, report.Status)
			}
		})
	}
}

func TestGetReport(t *testing.T) {
	checker := NewChecker(DefaultThresholds())
	checker.UpdateLoopStatus("discovery", time.Now(), 5*time.Second, nil)

	time.Sleep(10 * time.Millisecond)
	report := checker.GetReport()

	if report.Uptime <= 0 {
		t.Error("expected positive uptime")
	}
	if report.Timestamp.IsZero() {
		t.Error("expected report timestamp to be set")
	}
	if len(report.Components) != 1 {
		t.Errorf("expected 1 component, got %d", len(report.Components))
	}
}

func TestHTTPHandler(t *testing.T) {
	tests := []struct {
		name               string
		setupFunc          func(*Checker)
		expectedStatusCode int
		expectedStatus     string
	}{
		{
			name: "ok",
			setupFunc: func(c *Checker) {
				c.UpdateLoopStatus("discovery", time.Now(), 5*time.Second, nil)
				c.UpdateFailoverStatus("Normal", "eth0", 0)
			},
			expectedStatusCode: http.StatusOK,
			expectedStatus:     "ok",
		},
		{
			name: "degraded still returns 200",
			setupFunc: func(c *Checker) {
				c.UpdateFailoverStatus("Monitoring", "eth0", 1)
			},
			expectedStatusCode: http.StatusOK,
			expectedStatus:     "degraded",
		},
		{
			name: "error returns 503",
			setupFunc: func(c *Checker) {
				c.UpdateFailoverStatus("Degraded", "eth0", 3)
			},
			expectedStatusCode: http.StatusServiceUnavailable,
			expectedStatus:     "error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker(DefaultThresholds())
			tt.setupFunc(checker)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			w := httptest.NewRecorder()

			handler := checker.HTTPHandler()
			handler(w, req)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != tt.expectedStatusCode {
				t.Errorf("expected status code %d, got %d", tt.expectedStatusCode, resp.StatusCode)
			}

			var report HealthReport
			if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if string(report.Status) != tt.expectedStatus {
				t.Errorf("expected status %q, got %q", tt.expectedStatus, report.Status)
			}
		})
	}
}

func TestLivenessHandler(t *testing.T) {
	checker := NewChecker(DefaultThresholds())
	checker.UpdateFailoverStatus("Degraded", "eth0", 3)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	w := httptest.NewRecorder()

	handler := checker.LivenessHandler()
	handler(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200 regardless of health, got %d", resp.StatusCode)
	}

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "alive" {
		t.Errorf("expected status 'alive', got %v", body["status"])
	}
}

func TestReadinessHandler(t *testing.T) {
	tests := []struct {
		name               string
		setupFunc          func(*Checker)
		expectedStatusCode int
	}{
		{
			name: "ok",
			setupFunc: func(c *Checker) {
				c.UpdateFailoverStatus("Normal", "eth0", 0)
			},
			expectedStatusCode: http.StatusOK,
		},
		{
			name: "degraded not ready",
			setupFunc: func(c *Checker) {
				c.UpdateFailoverStatus("Monitoring", "eth0", 1)
			},
			expectedStatusCode: http.StatusServiceUnavailable,
		},
		{
			name: "error not ready",
			setupFunc: func(c *Checker) {
				c.UpdateFailoverStatus("Degraded", "eth0", 3)
			},
			expectedStatusCode: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewChecker(DefaultThresholds())
			tt.setupFunc(checker)

			req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
			w := httptest.NewRecorder()

			handler := checker.ReadinessHandler()
			handler(w, req)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != tt.expectedStatusCode {
				t.Errorf("expected status code %d, got %d", tt.expectedStatusCode, resp.StatusCode)
			}

			var response map[string]interface{}
			if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}

			if tt.expectedStatusCode == http.StatusOK {
				if response["status"] != "ready" {
					t.Errorf("expected status 'ready', got %v", response["status"])
				}
			} else if response["status"] != "not_ready" {
				t.Errorf("expected status 'not_ready', got %v", response["status"])
			}
		})
	}
}

func TestStartHTTPServer(t *testing.T) {
	checker := NewChecker(DefaultThresholds())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- checker.StartHTTPServer(ctx, ":19100")
	}()

	time.Sleep(100 * time.Millisecond)

	resp, err := http.Get("http://localhost:19100/health")
	if err != nil {
		t.Fatalf("failed to connect to health server: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get("http://localhost:19100/health/live")
	if err != nil {
		t.Fatalf("failed to connect to liveness endpoint: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected liveness status 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get("http://localhost:19100/health/ready")
	if err != nil {
		t.Fatalf("failed to connect to readiness endpoint: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected readiness status 200, got %d", resp.StatusCode)
	}

	cancel()

	select {
	case err := <-errChan:
		if err != nil && err != http.ErrServerClosed {
			t.Errorf("server returned unexpected error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Error("server did not stop within timeout")
	}
}

func TestConcurrentAccess(t *testing.T) {
	checker := NewChecker(DefaultThresholds())

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			for j := 0; j < 100; j++ {
				checker.UpdateLoopStatus("discovery", time.Now(), 5*time.Second, nil)
				_ = checker.GetReport()
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	report := checker.GetReport()
	if report.Status == "" {
		t.Error("report status is empty after concurrent access")
	}
}

func TestThresholds(t *testing.T) {
	thresholds := DefaultThresholds()

	if thresholds.LoopStaleOKMultiplier <= 0 {
		t.Error("LoopStaleOKMultiplier should be positive")
	}
	if thresholds.LoopStaleErrorMultiplier <= thresholds.LoopStaleOKMultiplier {
		t.Error("LoopStaleErrorMultiplier should be greater than LoopStaleOKMultiplier")
	}
}

func TestJSONSerialization(t *testing.T) {
	checker := NewChecker(DefaultThresholds())
	checker.UpdateLoopStatus("discovery", time.Now(), 5*time.Second, nil)
	checker.UpdateFailoverStatus("Normal", "eth0", 0)

	time.Sleep(10 * time.Millisecond)
	report := checker.GetReport()

	data, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("failed to marshal report: %v", err)
	}

	dataStr := string(data)
	if contains(dataStr, "ms") || contains(dataStr, "µs") || contains(dataStr, "ns") {
		t.Errorf("uptime appears to be serialized as a duration string: %s", dataStr)
	}

	var decoded HealthReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal report: %v", err)
	}

	if decoded.Status != report.Status {
		t.Errorf("status mismatch: %s != %s", decoded.Status, report.Status)
	}
	if len(decoded.Components) != len(report.Components) {
		t.Errorf("components count mismatch: %d != %d", len(decoded.Components), len(report.Components))
	}
	if decoded.Uptime <= 0 {
		t.Errorf("decoded uptime should be positive, got %f", decoded.Uptime)
	}
	if decoded.Uptime > 3600 {
		t.Errorf("decoded uptime should be < 1 hour for this test, got %f", decoded.Uptime)
	}
}

// Helper function
func contains(s, substr string) bool {
	return len(s) >= len(substr) && (s == substr || len(s) > len(substr) && containsHelper(s, substr))
}

func containsHelper(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
