package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/rflorenc/databricks-resource-cleaner/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// StreamRunLogs streams run status lines over WebSocket as JSON StatusLine messages.
func (s *Server) StreamRunLogs(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run := s.Runs.Get(id)
	if run == nil {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	offset := 0
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			// Read the state before the lines so nothing appended in between is lost.
			done := run.Done()
			lines := run.LogsSince(offset)
			for _, line := range lines {
				msg, _ := json.Marshal(models.StatusLine{Text: line, Level: models.Classify(line)})
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
				offset++
			}
			// If run is done and we've sent everything, close
			if done && len(lines) == 0 {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, run.State()))
				return
			}
		}
	}
}
