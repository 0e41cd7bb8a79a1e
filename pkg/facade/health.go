package facade

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/cuemby/catalogd/pkg/metrics"
	"github.com/cuemby/catalogd/pkg/reconciler"
)

// HealthServer exposes /health, /ready, and /metrics over plain HTTP:
// /health is a bare liveness probe, /ready reports the Reconciler's
// readiness flag and last-synced watermark.
type HealthServer struct {
	reconciler *reconciler.Reconciler
	mux        *http.ServeMux
}

// NewHealthServer wires the three endpoints against rec.
func NewHealthServer(rec *reconciler.Reconciler) *HealthServer {
	hs := &HealthServer{reconciler: rec, mux: http.NewServeMux()}
	hs.mux.HandleFunc("/health", hs.healthHandler)
	hs.mux.HandleFunc("/ready", hs.readyHandler)
	hs.mux.Handle("/metrics", metrics.Handler())
	return hs
}

// Start serves the three endpoints on addr until the process exits or
// the listener errors.
func (hs *HealthServer) Start(addr string) error {
	server := &http.Server{
		Addr:         addr,
		Handler:      hs.mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return server.ListenAndServe()
}

// Handler returns the HTTP handler for embedding in another server.
func (hs *HealthServer) Handler() http.Handler {
	return hs.mux
}

type healthResponse struct {
	Status string `json:"status"`
}

type readyResponse struct {
	Status            string `json:"status"`
	Ready             bool   `json:"ready"`
	LastSyncedVersion uint64 `json:"last_synced_catalog_version"`
	ServiceID         string `json:"catalog_service_id"`
	DeltaLogEntries   int    `json:"delta_log_entries"`
}

func (hs *HealthServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(healthResponse{Status: "healthy"})
}

func (hs *HealthServer) readyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ready := hs.reconciler.Ready()
	resp := readyResponse{
		Ready:             ready,
		LastSyncedVersion: uint64(hs.reconciler.LastSyncedVersion()),
		ServiceID:         hs.reconciler.ServiceID().String(),
		DeltaLogEntries:   hs.reconciler.DeltaLogSize(),
	}
	status := http.StatusOK
	if ready {
		resp.Status = "ready"
	} else {
		resp.Status = "not ready"
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
