package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"lecture-processor/pkg/models"
	"lecture-processor/pkg/storage"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WebSocketMessage struct {
	Type      string          `json:"type"`
	LectureID string          `json:"lecture_id,omitempty"`
	Status    string          `json:"status,omitempty"`
	Error     string          `json:"error,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
}

// wsSession wraps a connection with a write lock; the underlying
// connection supports only one concurrent writer, and the read loop
// and monitor goroutines both send.
type wsSession struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (s *wsSession) send(msg WebSocketMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.conn.WriteJSON(msg); err != nil {
		log.Printf("WS: failed to send message: %v", err)
	}
}

// WebSocketHandler lets clients watch a lecture's progress. Send
// {"type":"watch","lecture_id":...} to begin receiving status updates.
func (h *Handlers) WebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	session := &wsSession{conn: conn}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	for {
		var msg WebSocketMessage
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}

		switch msg.Type {
		case "watch":
			if msg.LectureID == "" {
				session.send(WebSocketMessage{Type: "error", Error: "lecture_id is required"})
				continue
			}
			go h.monitorLecture(ctx, session, msg.LectureID)
		case "ping":
			session.send(WebSocketMessage{Type: "pong"})
		default:
			session.send(WebSocketMessage{Type: "error", Error: "Unknown message type"})
		}
	}
}

// monitorLecture polls the memory store and forwards status changes
// until the run reaches a terminal state.
func (h *Handlers) monitorLecture(ctx context.Context, session *wsSession, lectureID string) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	lastStatus := models.ProcessingStatus("")
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			record, err := h.store.GetLecture(lectureID)
			if err != nil {
				if err != storage.ErrLectureNotFound {
					session.send(WebSocketMessage{
						Type:      "error",
						LectureID: lectureID,
						Error:     err.Error(),
					})
				}
				return
			}

			if record.Status != lastStatus {
				lastStatus = record.Status
				session.send(WebSocketMessage{
					Type:      "status_update",
					LectureID: lectureID,
					Status:    string(record.Status),
				})
			}

			if record.Status == models.StatusCompleted {
				log.Printf("WS PROCESSING COMPLETED: LectureID=%s", lectureID)
				session.send(WebSocketMessage{
					Type:      "processing_complete",
					LectureID: lectureID,
					Data:      mustMarshal(record),
				})
				return
			}

			if record.Status == models.StatusFailed {
				log.Printf("WS PROCESSING FAILED: LectureID=%s, Error=%s", lectureID, record.Error)
				session.send(WebSocketMessage{
					Type:      "processing_failed",
					LectureID: lectureID,
					Error:     record.Error,
				})
				return
			}
		}
	}
}

func mustMarshal(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return data
}
