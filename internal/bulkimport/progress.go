package bulkimport

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers connect from the portal origin; CORS is enforced at the
	// HTTP layer before the upgrade.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// progressEvent is one message on the batch progress feed.
type progressEvent struct {
	Type     string    `json:"type"` // "progress" | "summary"
	BatchID  uuid.UUID `json:"batch_id"`
	Progress *Progress `json:"progress,omitempty"`
	Summary  *Summary  `json:"summary,omitempty"`
}

// ProgressHub fans dispatch progress out to websocket subscribers, keyed
// by batch id. Operators watching a bulk import see one counter update per
// attempted row and a final summary event.
type ProgressHub struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]map[*websocket.Conn]struct{}
	logger *zap.Logger
}

// NewProgressHub creates a progress hub.
func NewProgressHub(logger *zap.Logger) *ProgressHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressHub{
		subs:   make(map[uuid.UUID]map[*websocket.Conn]struct{}),
		logger: logger,
	}
}

// ServeWS handles GET /bulk-import/:id/progress, upgrading to a websocket
// that receives progress events until the client disconnects.
func (h *ProgressHub) ServeWS(c *gin.Context) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid batch id"})
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	h.subscribe(batchID, conn)
	go h.readLoop(batchID, conn)
}

// PublishProgress sends a per-row counter update to batch subscribers.
func (h *ProgressHub) PublishProgress(batchID uuid.UUID, p Progress) {
	h.publish(progressEvent{Type: "progress", BatchID: batchID, Progress: &p})
}

// PublishSummary sends the terminal dispatch summary to batch subscribers.
func (h *ProgressHub) PublishSummary(batchID uuid.UUID, s Summary) {
	h.publish(progressEvent{Type: "summary", BatchID: batchID, Summary: &s})
}

func (h *ProgressHub) publish(ev progressEvent) {
	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.subs[ev.BatchID]))
	for conn := range h.subs[ev.BatchID] {
		conns = append(conns, conn)
	}
	h.mu.Unlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(ev); err != nil {
			h.unsubscribe(ev.BatchID, conn)
		}
	}
}

func (h *ProgressHub) subscribe(batchID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[batchID] == nil {
		h.subs[batchID] = make(map[*websocket.Conn]struct{})
	}
	h.subs[batchID][conn] = struct{}{}
}

func (h *ProgressHub) unsubscribe(batchID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	if set, ok := h.subs[batchID]; ok {
		delete(set, conn)
		if len(set) == 0 {
			delete(h.subs, batchID)
		}
	}
	h.mu.Unlock()
	_ = conn.Close()
}

// readLoop drains client frames so close handshakes are noticed.
func (h *ProgressHub) readLoop(batchID uuid.UUID, conn *websocket.Conn) {
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.unsubscribe(batchID, conn)
			return
		}
	}
}
