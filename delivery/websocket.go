package delivery

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const writeTimeout = 10 * time.Second

// Hello is the first message sent on a websocket connection.
type Hello struct {
	Subscribed []string `json:"subscribed"`
}

// WSHandler bridges bus topics to out-of-process consumers. Clients pick
// their topics with one or more topic query parameters and then receive each
// delivery as a JSON text message.
type WSHandler struct {
	bus *Bus
	up  websocket.Upgrader
}

func NewWSHandler(bus *Bus, checkOrigin bool) *WSHandler {
	h := &WSHandler{bus: bus}
	if !checkOrigin {
		h.up.CheckOrigin = func(*http.Request) bool { return true }
	}
	return h
}

func (h *WSHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	topics := r.URL.Query()["topic"]
	if len(topics) == 0 {
		http.Error(w, "at least one topic is required", http.StatusBadRequest)
		return
	}

	// Upgrade replies to the client itself on failure.
	conn, err := h.up.Upgrade(w, r, nil)
	if err != nil {
		log.WithError(err).Warn("unsuccessful websocket negotiation")
		return
	}
	defer conn.Close()

	logger := log.WithFields(log.Fields{
		"remote": r.RemoteAddr,
		"topics": topics,
	})

	sub := h.bus.Subscribe(topics...)
	defer h.bus.Unsubscribe(sub, topics...)

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(Hello{Subscribed: topics}); err != nil {
		logger.WithError(err).Debug("write hello failed")
		return
	}
	logger.Info("websocket consumer connected")

	// Consumers never send anything meaningful; reading is only how a
	// closed connection is noticed.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-sub:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(msg); err != nil {
				logger.WithError(err).Warn("write delivery failed")
				return
			}
		case <-gone:
			logger.Info("websocket consumer disconnected")
			return
		}
	}
}
