package broadcast

import (
	"bytes"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/meur/moonshade/internal/models"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Message is what connected consoles receive after every change
type Message struct {
	Type     string           `json:"type"`
	Document *models.Document `json:"document"`
}

// Hub pushes committed documents to every connected admin console.
// All writes happen under mu, so each console sees documents in the order
// they were published and never a snapshot older than the last publish.
type Hub struct {
	clients map[*websocket.Conn]bool
	last    []byte // payload of the most recent Publish
	mu      sync.Mutex
}

// NewHub creates a new broadcast hub.
func NewHub() *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]bool),
	}
}

// Unregister removes a connection.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, conn)
}

// Clients returns the number of connected consoles.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// encodeMessage renders a document message without HTML escaping, the
// same way export files and share tokens are written.
func encodeMessage(doc *models.Document) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(Message{Type: "document", Document: doc}); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func write(conn *websocket.Conn, payload []byte) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteMessage(websocket.TextMessage, payload)
}

// Publish sends doc to all connected clients, dropping the ones that fail.
// Callers must publish in commit order.
func (h *Hub) Publish(doc *models.Document) {
	payload, err := encodeMessage(doc)
	if err != nil {
		log.Error().Err(err).Msg("broadcast encode")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = payload
	for conn := range h.clients {
		if err := write(conn, payload); err != nil {
			log.Debug().Err(err).Msg("broadcast write")
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// attach sends the initial document and adds conn to the broadcast set in
// one step. The last published document wins over fallback, which only
// covers the time before anything was published.
func (h *Hub) attach(conn *websocket.Conn, fallback *models.Document) error {
	initial, err := encodeMessage(fallback)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.last != nil {
		initial = h.last
	}
	if err := write(conn, initial); err != nil {
		return err
	}
	h.clients[conn] = true
	return nil
}

// Handler upgrades the request and streams documents until the client
// goes away. snapshot supplies the state sent on connect.
func (h *Hub) Handler(snapshot func() *models.Document) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Debug().Err(err).Msg("websocket upgrade")
			return
		}
		defer conn.Close()

		if err := h.attach(conn, snapshot()); err != nil {
			log.Debug().Err(err).Msg("websocket initial write")
			return
		}
		defer h.Unregister(conn)

		// Consoles only listen; reads keep the connection alive and notice
		// when it closes.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}
}
