package api

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"sathi-support/backend/internal/arbiter"
	"sathi-support/backend/internal/chat"
)

// StreamFrame is a server-to-client websocket message.
type StreamFrame struct {
	Type      string        `json:"type"`
	Reply     *ChatResponse `json:"reply,omitempty"`
	Error     string        `json:"error,omitempty"`
	Details   []string      `json:"details,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

const (
	frameReady = "ready"
	frameReply = "reply"
	frameError = "error"
)

// wsClient wraps a websocket connection with write locking.
type wsClient struct {
	conn           *websocket.Conn
	mu             sync.Mutex
	conversationID string
}

// streamHub tracks open chat sockets.
type streamHub struct {
	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func newStreamHub() *streamHub {
	return &streamHub{clients: make(map[*wsClient]struct{})}
}

// Register attaches a websocket connection and returns a client handle.
func (h *streamHub) Register(conn *websocket.Conn) *wsClient {
	client := &wsClient{conn: conn}
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	return client
}

// Unregister removes the client and closes the socket.
func (h *streamHub) Unregister(client *wsClient) {
	if client == nil {
		return
	}
	h.mu.Lock()
	delete(h.clients, client)
	h.mu.Unlock()
	_ = client.conn.Close()
}

// Count returns the number of open sockets.
func (h *streamHub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (c *wsClient) writeJSON(payload StreamFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	payload.Timestamp = time.Now().UTC()
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(payload)
}

// handleChatStream answers each JSON ChatRequest frame with a reply frame. The
// conversation id of the first frame sticks for the whole socket unless a later
// frame names another one.
func (s *Server) handleChatStream(c *gin.Context) {
	upgrader := websocket.Upgrader{
		HandshakeTimeout: 5 * time.Second,
		CheckOrigin:      s.checkOrigin,
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logrus.WithError(err).Warn("upgrade websocket")
		return
	}
	conn.SetReadLimit(s.bodyLimit)

	client := s.streams.Register(conn)
	remote := conn.RemoteAddr().String()
	logrus.WithField("remote", remote).Info("chat websocket connected")
	defer s.streams.Unregister(client)

	if err := client.writeJSON(StreamFrame{Type: frameReady}); err != nil {
		return
	}

	ctx := c.Request.Context()
	for {
		var req ChatRequest
		if err := conn.ReadJSON(&req); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				if writeErr := client.writeJSON(StreamFrame{Type: frameError, Error: "Invalid input", Details: []string{err.Error()}}); writeErr != nil {
					return
				}
				continue
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logrus.WithError(err).WithField("remote", remote).Warn("chat websocket unexpected close")
			} else {
				logrus.WithField("remote", remote).Info("chat websocket closed")
			}
			return
		}

		frame := s.answerFrame(c, client, req)
		if err := client.writeJSON(frame); err != nil {
			logrus.WithError(err).WithField("remote", remote).Warn("write chat websocket frame")
			return
		}
		if ctx.Err() != nil {
			return
		}
	}
}

func (s *Server) answerFrame(c *gin.Context, client *wsClient, req ChatRequest) StreamFrame {
	if details := validateChatRequest(&req); len(details) > 0 {
		return StreamFrame{Type: frameError, Error: "Invalid input", Details: details}
	}
	switch {
	case req.ConversationID != "":
		client.conversationID = req.ConversationID
	case client.conversationID == "":
		client.conversationID = newConversationID()
	}

	result, err := s.chat.Process(c.Request.Context(), req.toInput(client.conversationID))
	if err != nil {
		if errors.Is(err, chat.ErrInvalidInput) {
			return StreamFrame{Type: frameError, Error: "Invalid input", Details: []string{err.Error()}}
		}
		logrus.WithError(err).WithField("conversation", client.conversationID).Error("chat websocket failed")
		return StreamFrame{Type: frameError, Error: arbiter.FailureReply}
	}
	resp := newChatResponse(result, client.conversationID)
	return StreamFrame{Type: frameReply, Reply: &resp}
}
