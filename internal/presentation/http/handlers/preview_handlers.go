package handlers

import (
	"net/http"
	"time"

	"github.com/flowbuild/flowbuild-go/internal/infrastructure/messaging"
	"github.com/flowbuild/flowbuild-go/internal/infrastructure/observability/logging"
	"github.com/flowbuild/flowbuild-go/internal/presentation/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var previewUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
}

// PreviewHandlers manages live preview websocket connections.
type PreviewHandlers struct {
	broadcaster *messaging.PreviewBroadcaster
	logger      *logging.ChanneledLogger
}

// NewPreviewHandlers creates preview handlers with injected dependencies
func NewPreviewHandlers(broadcaster *messaging.PreviewBroadcaster, logger *logging.ChanneledLogger) *PreviewHandlers {
	return &PreviewHandlers{broadcaster: broadcaster, logger: logger}
}

// GetPreviewSocket handles GET /api/v1/preview/ws - upgrades to a websocket
// and streams page change events for the project.
func (h *PreviewHandlers) GetPreviewSocket(c *gin.Context) {
	projectCtx, exists := middleware.GetProjectContext(c)
	if !exists {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "project context not found"})
		return
	}

	conn, err := previewUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Preview().Error("Websocket upgrade failed", "projectId", projectCtx.ProjectID, "error", err.Error())
		return
	}

	client := &messaging.PreviewClient{
		Conn:      conn,
		ProjectID: projectCtx.ProjectID,
		Send:      make(chan []byte, 16),
	}
	h.broadcaster.Register(client)

	go h.writePump(client)
	go h.readPump(client)
}

// writePump drains the client's send channel onto the wire.
func (h *PreviewHandlers) writePump(client *messaging.PreviewClient) {
	defer client.Conn.Close()

	for message := range client.Send {
		client.Conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
}

// readPump discards inbound messages and detects disconnects.
func (h *PreviewHandlers) readPump(client *messaging.PreviewClient) {
	defer h.broadcaster.Unregister(client)

	for {
		if _, _, err := client.Conn.ReadMessage(); err != nil {
			h.logger.Preview().Debug("Preview client disconnected", "projectId", client.ProjectID)
			return
		}
	}
}
