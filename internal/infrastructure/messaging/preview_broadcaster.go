package messaging

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/flowbuild/flowbuild-go/internal/infrastructure/caching/stores"
	"github.com/gorilla/websocket"
)

// PreviewClient represents a single connected live-preview client.
type PreviewClient struct {
	Conn      *websocket.Conn
	ProjectID string
	Send      chan []byte
}

// PageEvent is pushed to preview clients when a page changes.
type PageEvent struct {
	Type      string    `json:"type"` // "page_updated" or "page_deleted"
	PageID    string    `json:"pageId"`
	Slug      string    `json:"slug"`
	Timestamp time.Time `json:"timestamp"`
}

// heartbeatPayload is sent on each tick so idle editors can show liveness.
type heartbeatPayload struct {
	Type          string `json:"type"`
	ActiveClients int    `json:"activeClients"`
	Sessions      int    `json:"sessions"`
}

// PreviewBroadcaster manages all connected preview clients and fans out page events.
type PreviewBroadcaster struct {
	projectClients map[string]map[*PreviewClient]bool
	register       chan *PreviewClient
	unregister     chan *PreviewClient
	sessions       *stores.SessionsStore
	mu             sync.RWMutex
}

// NewPreviewBroadcaster creates a new broadcaster instance.
func NewPreviewBroadcaster(sessions *stores.SessionsStore) *PreviewBroadcaster {
	return &PreviewBroadcaster{
		projectClients: make(map[string]map[*PreviewClient]bool),
		register:       make(chan *PreviewClient),
		unregister:     make(chan *PreviewClient),
		sessions:       sessions,
	}
}

// Run starts the broadcaster's main loop. This should be run as a goroutine.
func (b *PreviewBroadcaster) Run() {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case client := <-b.register:
			b.mu.Lock()
			if _, ok := b.projectClients[client.ProjectID]; !ok {
				b.projectClients[client.ProjectID] = make(map[*PreviewClient]bool)
			}
			b.projectClients[client.ProjectID][client] = true
			log.Printf("Preview client registered for project: %s", client.ProjectID)
			b.mu.Unlock()

		case client := <-b.unregister:
			b.mu.Lock()
			if clients, ok := b.projectClients[client.ProjectID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					if len(clients) == 0 {
						delete(b.projectClients, client.ProjectID)
					}
				}
			}
			log.Printf("Preview client unregistered for project: %s", client.ProjectID)
			b.mu.Unlock()

		case <-ticker.C:
			b.broadcastHeartbeats()
		}
	}
}

// Register queues a client for registration.
func (b *PreviewBroadcaster) Register(client *PreviewClient) {
	b.register <- client
}

// Unregister queues a client for unregistration.
func (b *PreviewBroadcaster) Unregister(client *PreviewClient) {
	b.unregister <- client
}

// BroadcastPageEvent sends a page change notification to every client of the project.
func (b *PreviewBroadcaster) BroadcastPageEvent(projectID string, event PageEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	message, err := json.Marshal(event)
	if err != nil {
		log.Printf("Error marshaling page event for project %s: %v", projectID, err)
		return
	}

	b.sendToProject(projectID, message)
}

// broadcastHeartbeats sends a liveness payload to all projects with active clients.
func (b *PreviewBroadcaster) broadcastHeartbeats() {
	b.mu.RLock()
	projectIDs := make([]string, 0, len(b.projectClients))
	for projectID := range b.projectClients {
		projectIDs = append(projectIDs, projectID)
	}
	b.mu.RUnlock()

	for _, projectID := range projectIDs {
		b.mu.RLock()
		clientCount := len(b.projectClients[projectID])
		b.mu.RUnlock()

		payload := heartbeatPayload{
			Type:          "heartbeat",
			ActiveClients: clientCount,
		}
		if b.sessions != nil {
			payload.Sessions = b.sessions.CountSessions(projectID)
		}

		message, err := json.Marshal(payload)
		if err != nil {
			log.Printf("Error marshaling heartbeat for project %s: %v", projectID, err)
			continue
		}

		b.sendToProject(projectID, message)
	}
}

func (b *PreviewBroadcaster) sendToProject(projectID string, message []byte) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if clients, ok := b.projectClients[projectID]; ok {
		for client := range clients {
			select {
			case client.Send <- message:
			default:
			}
		}
	}
}
