package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Berenger2/carbu-track/internal/metrics"
	"github.com/Berenger2/carbu-track/internal/storage"
)

// NewMux constructs the HTTP handler: station and stats routes, health
// endpoints, prometheus metrics, and allow-all CORS.
func NewMux(store storage.Store) http.Handler {
	h := &Handler{store: store}

	mux := http.NewServeMux()

	mux.HandleFunc("/stations", h.ListStations)
	mux.HandleFunc("/stations/top10", h.TopStations)
	mux.HandleFunc("/stations/ville/", h.CityRoutes)
	mux.HandleFunc("/stats/moyennes", h.AveragePrices)

	// Metrics endpoint.
	mux.Handle("/metrics", promhttp.Handler())

	// Health / readiness / liveness.
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/livez", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("live"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := store.Ping(r.Context()); err != nil {
			log.Printf("readyz: store ping failed: %v", err)
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			writeDetail(w, http.StatusNotFound, "Not Found")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"name": "API Prix Carburants",
			"routes": []string{
				"/stations",
				"/stations/top10?type_carburant=gazole",
				"/stations/ville/{ville}",
				"/stations/ville/{ville}/top10?type_carburant=gazole",
				"/stats/moyennes",
			},
		})
	})

	return withCORS(withRequestMetrics(mux))
}

// withCORS allows any origin, matching the original deployment.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func withRequestMetrics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		metrics.HTTPRequestsTotal.WithLabelValues(routeLabel(r.URL.Path), fmt.Sprintf("%d", rec.status)).Inc()
	})
}

// routeLabel collapses city paths to their route template so that the
// requests metric keeps a bounded label set.
func routeLabel(path string) string {
	if !strings.HasPrefix(path, "/stations/ville/") {
		return path
	}
	if strings.HasSuffix(path, "/top10") {
		return "/stations/ville/{ville}/top10"
	}
	return "/stations/ville/{ville}"
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("api: encode response: %v", err)
	}
}

// writeDetail writes an error payload in the {"detail": ...} shape the
// original API used.
func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}
