package server

import (
	"encoding/json"
	"net/http"
)

// Routes builds the main HTTP mux: the chat stream, the auth status probe,
// the root banner, and the Kubernetes health endpoints.
func (sc *ServerContext) Routes(health *HealthChecker) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/chat", sc.ChatHandler())

	mux.HandleFunc("/auth-status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]bool{"authenticated": sc.Authenticated()})
	})

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			writeJSONError(w, http.StatusNotFound, "not found")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "supercal backend is running."})
	})

	if health != nil {
		health.RegisterHealthEndpoints(mux)
	}

	return mux
}
