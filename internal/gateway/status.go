package gateway

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ideavault/ideavault/internal/costs"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Uptime float64        `json:"uptime_seconds"`
	Costs  *costs.Summary `json:"costs,omitempty"`
}

// handleStatus reports uptime and the running AI spend.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			Uptime: time.Since(g.startedAt).Truncate(time.Second).Seconds(),
		}
		if g.svc != nil {
			summary := g.svc.Ledger().Summary()
			resp.Costs = &summary
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}
}
