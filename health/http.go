package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"
)

// LivenessHandler returns an HTTP handler for liveness probes.
// It reports that the process is serving and runs no probes.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler returns an HTTP handler for readiness probes.
// It collects every probe in the registry and answers 503 if any is unhealthy.
func ReadinessHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status := Overall(reg.Collect(ctx))

		w.Header().Set("Content-Type", "text/plain")
		if status.IsHealthy() {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("OK"))
			return
		}
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("UNHEALTHY"))
	}
}

// HealthResponse is the JSON response for the detailed health endpoint.
type HealthResponse struct {
	Status    string                   `json:"status"`
	Timestamp string                   `json:"timestamp"`
	Probes    map[string]ProbeResponse `json:"probes,omitempty"`
}

// ProbeResponse is the JSON response for a single probe.
type ProbeResponse struct {
	Status      string  `json:"status"`
	Value       float64 `json:"value"`
	Async       bool    `json:"async,omitempty"`
	State       string  `json:"state,omitempty"`
	LastUpdated string  `json:"last_updated,omitempty"`
}

func (r *Registry) probeResponse(name string, status Status) ProbeResponse {
	resp := ProbeResponse{Status: status.String(), Value: status.Value()}
	p, ok := r.Get(name)
	if !ok {
		return resp
	}
	if ap, ok := p.(*AsyncProbe); ok {
		resp.Async = true
		resp.State = ap.State().String()
		if t := ap.LastUpdated(); !t.IsZero() {
			resp.LastUpdated = t.UTC().Format(time.RFC3339)
		}
	}
	return resp
}

func writeStatus(w http.ResponseWriter, status Status) {
	w.Header().Set("Content-Type", "application/json")
	if status.IsHealthy() {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
}

// DetailedHandler returns an HTTP handler that reports every probe as JSON.
func DetailedHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		samples := reg.Collect(ctx)
		status := Overall(samples)

		response := HealthResponse{
			Status:    status.String(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Probes:    make(map[string]ProbeResponse, len(samples)),
		}
		for _, s := range samples {
			response.Probes[s.Name] = reg.probeResponse(s.Name, s.Status)
		}

		writeStatus(w, status)
		_ = json.NewEncoder(w).Encode(response)
	}
}

// SingleProbeHandler returns an HTTP handler that runs one named probe.
func SingleProbeHandler(reg *Registry, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		status, err := reg.RunOnce(ctx, name)
		if err != nil {
			code := http.StatusInternalServerError
			if errors.Is(err, ErrNotFound) {
				code = http.StatusNotFound
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			_ = json.NewEncoder(w).Encode(map[string]string{
				"error": err.Error(),
			})
			return
		}

		writeStatus(w, status)
		_ = json.NewEncoder(w).Encode(reg.probeResponse(name, status))
	}
}

// ProbeHandler serves /health/{name} using the request path value.
func ProbeHandler(reg *Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		SingleProbeHandler(reg, r.PathValue("name"))(w, r)
	}
}

// RegisterHandlers registers all health handlers on the given mux.
func RegisterHandlers(mux *http.ServeMux, reg *Registry) {
	mux.HandleFunc("/healthz", LivenessHandler())
	mux.HandleFunc("/readyz", ReadinessHandler(reg))
	mux.HandleFunc("/health", DetailedHandler(reg))
	mux.HandleFunc("/health/{name}", ProbeHandler(reg))
}
