// Package health implements the liveness probe.
package health

import (
	"encoding/json"
	"net/http"
)

// Handler returns 200 {"status":"healthy"} unconditionally: the service is
// stateless, so being able to answer is being healthy.
func Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
}
