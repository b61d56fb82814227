package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/taniwha3/meshbond/internal/health"
	"github.com/taniwha3/meshbond/internal/mesh"
)

// serveAPI runs the combined health/control HTTP server until ctx is
// cancelled, mirroring health.Checker.StartHTTPServer's shutdown shape.
func serveAPI(ctx context.Context, mux *http.ServeMux, addr string) error {
	server := &http.Server{Addr: addr, Handler: mux}

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

// statusResponse is the wire shape for GET /status, consumed by
// meshbondctl's status subcommand.
type statusResponse struct {
	Local            *mesh.LocalNodeStatus `json:"local"`
	Peers            int                    `json:"peers"`
	ActiveInterfaces []string               `json:"active_interfaces"`
	Running          bool                   `json:"running"`
}

// statsResponse is the wire shape for GET /stats: current aggregation
// weights/mode plus the failover manager's snapshot.
type statsResponse struct {
	AggregationMode string             `json:"aggregation_mode"`
	Weights         map[string]float64 `json:"weights"`
	FailoverState   string             `json:"failover_state"`
	Primary         string             `json:"primary"`
	Backups         []string           `json:"backups"`
	Failed          []string           `json:"failed"`
}

// buildMux assembles the daemon's HTTP surface: the health checker's
// standard probes plus the mesh status/stats endpoints meshbondctl
// queries.
func buildMux(checker *health.Checker, manager *mesh.Manager) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", checker.HTTPHandler())
	mux.HandleFunc("/health/live", checker.LivenessHandler())
	mux.HandleFunc("/health/ready", checker.ReadinessHandler())

	mux.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		status := manager.GetStatus()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(statusResponse{
			Local:            status.Local,
			Peers:            status.Peers,
			ActiveInterfaces: status.ActiveInterfaces,
			Running:          status.Running,
		})
	})

	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		failoverStatus := manager.Failover().GetStatus()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(statsResponse{
			AggregationMode: string(manager.Aggregator().Mode()),
			Weights:         manager.Aggregator().Weights(),
			FailoverState:   string(failoverStatus.State),
			Primary:         failoverStatus.Primary,
			Backups:         failoverStatus.Backups,
			Failed:          failoverStatus.Failed,
		})
	})

	mux.HandleFunc("/failover", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			From string `json:"from"`
			To   string `json:"to"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		manager.Failover().ManualFailover(req.From, req.To)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	return mux
}
