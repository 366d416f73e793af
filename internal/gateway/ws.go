package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/coder/websocket"
)

// handleEvents streams pipeline events (idea.captured, idea.enriched,
// ...) to WebSocket clients. Slow readers are disconnected when the
// write fails; the hub itself never blocks on them.
func (g *Gateway) handleEvents() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if g.hub == nil {
			http.Error(w, "event feed unavailable", http.StatusServiceUnavailable)
			return
		}

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			g.logger.Error("websocket accept failed", "error", err)
			return
		}
		defer func() {
			_ = conn.Close(websocket.StatusInternalError, "unexpected close")
		}()

		ch, cancel := g.hub.Subscribe()
		defer cancel()

		ctx := r.Context()
		for {
			select {
			case <-ctx.Done():
				_ = conn.Close(websocket.StatusGoingAway, "server shutting down")
				return
			case ev, ok := <-ch:
				if !ok {
					_ = conn.Close(websocket.StatusNormalClosure, "feed closed")
					return
				}
				data, err := json.Marshal(ev)
				if err != nil {
					g.logger.Error("marshaling event failed", "error", err)
					continue
				}
				if err := conn.Write(ctx, websocket.MessageText, data); err != nil {
					g.logger.Debug("event feed client gone", "error", err)
					return
				}
			}
		}
	}
}
