package observability

import (
	"context"
	"encoding/json"
	"net/http"
)

const (
	healthStatusOK          = "ok"
	healthStatusUnavailable = "unavailable"
)

// ReadyCheck is a function that checks if a subsystem is ready.
// It returns nil if the check passes, or an error describing the failure.
type ReadyCheck func(ctx context.Context) error

// NewMetricsMux assembles an [http.ServeMux] serving the Prometheus scrape
// endpoint at /metrics plus liveness and readiness probes at /healthz and
// /readyz. The scrape handler comes from [Providers.MetricsHandler]; a nil
// handler leaves /metrics unregistered so the mux serves probes only.
// The given checks gate readiness.
func NewMetricsMux(scrape http.Handler, checks ...ReadyCheck) *http.ServeMux {
	mux := http.NewServeMux()

	if scrape != nil {
		mux.Handle("/metrics", scrape)
	}

	mux.Handle("/healthz", HealthHandler())
	mux.Handle("/readyz", ReadyHandler(checks...))

	return mux
}

// HealthHandler returns an [http.Handler] for liveness checks.
// It always returns HTTP 200 with {"status":"ok"}.
func HealthHandler() http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, _ *http.Request) {
		writeHealthJSON(rw, http.StatusOK, healthStatusOK)
	})
}

// ReadyHandler returns an [http.Handler] for readiness checks. It runs all
// provided checks; if any fail, it returns HTTP 503 with {"status":"unavailable"}.
// If no checks are provided or all pass, it returns HTTP 200 with {"status":"ok"}.
func ReadyHandler(checks ...ReadyCheck) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, hr *http.Request) {
		for _, check := range checks {
			err := check(hr.Context())
			if err != nil {
				writeHealthJSON(rw, http.StatusServiceUnavailable, healthStatusUnavailable)

				return
			}
		}

		writeHealthJSON(rw, http.StatusOK, healthStatusOK)
	})
}

func writeHealthJSON(rw http.ResponseWriter, code int, status string) {
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(code)

	data, err := json.Marshal(map[string]string{"status": status})
	if err != nil {
		return
	}

	_, _ = rw.Write(data)
}
