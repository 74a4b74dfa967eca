package http

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"flames/logger"
)

const (
	socketIdleTimeout  = 5 * time.Minute
	socketWriteTimeout = 10 * time.Second
	socketMaxMessage   = 4096
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type socketReply struct {
	Status int `json:"status"`
	predictResponse
}

// handlePredictSocket answers every JSON text frame with the same body
// POST /api/predict would return.
func (h *handlers) handlePredictSocket(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context(), h.log)
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(socketMaxMessage)

	for {
		conn.SetReadDeadline(time.Now().Add(socketIdleTimeout))
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Warn("websocket closed", zap.Error(err))
			}
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var reply socketReply
		answers, err := decodeAnswers(bytes.NewReader(payload))
		if err != nil {
			reply.Status = http.StatusBadRequest
			reply.Error = err.Error()
		} else {
			reply.Status, reply.predictResponse = h.predict(r, answers)
		}

		conn.SetWriteDeadline(time.Now().Add(socketWriteTimeout))
		if err := conn.WriteJSON(reply); err != nil {
			log.Warn("websocket write failed", zap.Error(err))
			return
		}
	}
}
