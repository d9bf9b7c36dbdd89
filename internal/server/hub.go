// Package server coordinates client registration, chat broadcast, heartbeat
// fan-out, and connection cleanup for the playground chat via the Hub type.
package server

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Tyrowin/htmx-playground/internal/fragment"
)

// Hub manages all WebSocket client connections and handles message broadcasting.
// Registration, unregistration and chat messages are serialized through Run;
// the client set itself is guarded by a mutex so the heartbeat task can fan
// out concurrently.
type Hub struct {
	clients           map[*Client]bool
	inbound           chan inboundChat
	register          chan *Client
	unregister        chan *Client
	mutex             sync.RWMutex
	wg                sync.WaitGroup
	ctx               context.Context
	cancel            context.CancelFunc
	done              chan struct{}
	messageCount      atomic.Int64
	heartbeatInterval time.Duration
	now               func() time.Time
}

// NewHub creates and initializes a new Hub instance with all necessary channels
// and client map. A non-positive heartbeatInterval uses the 30 second default.
func NewHub(heartbeatInterval time.Duration) *Hub {
	if heartbeatInterval <= 0 {
		heartbeatInterval = defaultHeartbeatInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:           make(map[*Client]bool),
		inbound:           make(chan inboundChat),
		register:          make(chan *Client),
		unregister:        make(chan *Client),
		ctx:               ctx,
		cancel:            cancel,
		done:              make(chan struct{}),
		heartbeatInterval: heartbeatInterval,
		now:               time.Now,
	}
}

// ClientCount returns the number of currently registered clients.
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients)
}

// Register hands a client to the hub. It returns false if the hub is shutting down.
func (h *Hub) Register(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.ctx.Done():
	}
}

func (h *Hub) submit(in inboundChat) bool {
	select {
	case h.inbound <- in:
		return true
	case <-h.ctx.Done():
		return false
	}
}

func (h *Hub) safeSend(client *Client, message []byte) bool {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic in safeSend: %v", r)
		}
	}()

	// Hold the lock during the entire send operation to prevent race conditions
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	_, exists := h.clients[client]
	if !exists || client.closed {
		return false
	}

	select {
	case client.send <- message:
		return true
	default:
		return false
	}
}

// Run starts the hub's main event loop, handling client registration,
// unregistration and chat broadcasting, and launches the heartbeat task.
// This method should be called in a separate goroutine; it returns after Shutdown.
func (h *Hub) Run() {
	defer close(h.done)

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.runHeartbeat()
	}()

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				log.Printf("Received nil client registration; skipping")
				continue
			}
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case in := <-h.inbound:
			h.handleChat(in)
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mutex.Lock()
	client.closed = false
	h.clients[client] = true
	clientCount := len(h.clients)
	h.mutex.Unlock()
	log.Printf("Client %s registered from %s. Total clients: %d", client.id, client.addr, clientCount)

	h.sendWelcome(client, clientCount)

	if client.conn == nil {
		return
	}

	h.wg.Add(2)
	go func() {
		defer h.wg.Done()
		client.writePump()
	}()
	go func() {
		defer h.wg.Done()
		client.readPump()
	}()
}

func (h *Hub) unregisterClient(client *Client) {
	h.mutex.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		client.closed = true
		clientCount := len(h.clients)
		h.mutex.Unlock()
		// Close the channel after releasing the lock
		close(client.send)
		log.Printf("Client %s unregistered from %s. Total clients: %d", client.id, client.addr, clientCount)
		return
	}
	h.mutex.Unlock()
}

// sendWelcome delivers the connection record to a newly registered client only.
func (h *Hub) sendWelcome(client *Client, clientCount int) {
	payload, err := json.Marshal(ConnectionRecord{
		Type:        TypeConnection,
		Message:     welcomeText,
		Timestamp:   fragment.TimeOfDay(h.now()),
		ClientCount: clientCount,
	})
	if err != nil {
		log.Printf("Error encoding welcome for %s: %v", client.addr, err)
		return
	}
	if !h.safeSend(client, payload) {
		h.removeFailedClients([]*Client{client})
	}
}

// handleChat stamps an inbound message with the next sequence id and sends it
// to every registered client, the sender included.
func (h *Hub) handleChat(in inboundChat) {
	msg := ChatMessage{
		Type:      TypeMessage,
		ID:        h.messageCount.Add(1),
		Username:  displayName(in.Message.Username),
		Message:   in.Message.Message,
		Timestamp: fragment.TimeOfDay(h.now()),
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error encoding chat message %d: %v", msg.ID, err)
		return
	}

	clients := h.getClientSnapshot()
	if in.Sender != nil {
		log.Printf("Broadcasting message %d from %s to %d clients", msg.ID, in.Sender.addr, len(clients))
	} else {
		log.Printf("Broadcasting message %d to %d clients", msg.ID, len(clients))
	}
	h.fanOut(clients, payload)
}

func (h *Hub) runHeartbeat() {
	ticker := time.NewTicker(h.heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.sendHeartbeat()
		}
	}
}

// sendHeartbeat broadcasts an update record when at least one client is connected.
func (h *Hub) sendHeartbeat() {
	clients := h.getClientSnapshot()
	if len(clients) == 0 {
		return
	}

	now := h.now()
	payload, err := json.Marshal(UpdateRecord{
		Type:             TypeUpdate,
		Message:          heartbeatText,
		Timestamp:        fragment.TimeOfDay(now),
		ServerTime:       isoTimestamp(now),
		ConnectedClients: len(clients),
	})
	if err != nil {
		log.Printf("Error encoding heartbeat: %v", err)
		return
	}

	h.fanOut(clients, payload)
}

// getClientSnapshot returns a thread-safe snapshot of all current clients
func (h *Hub) getClientSnapshot() []*Client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	return clients
}

// fanOut sends payload to every client and drops those that could not accept it.
func (h *Hub) fanOut(clients []*Client, payload []byte) {
	var clientsToRemove []*Client
	for _, client := range clients {
		if !h.safeSend(client, payload) {
			clientsToRemove = append(clientsToRemove, client)
		}
	}
	h.removeFailedClients(clientsToRemove)
}

// removeFailedClients removes clients that failed to receive messages and closes their channels
func (h *Hub) removeFailedClients(clientsToRemove []*Client) {
	if len(clientsToRemove) == 0 {
		return
	}

	h.mutex.Lock()
	var channelsToClose []chan []byte
	for _, client := range clientsToRemove {
		if _, exists := h.clients[client]; exists {
			delete(h.clients, client)
			client.closed = true
			channelsToClose = append(channelsToClose, client.send)
			log.Printf("Client %s from %s removed after failed send", client.id, client.addr)
		}
	}
	h.mutex.Unlock()

	// Close channels after releasing the lock
	for _, ch := range channelsToClose {
		close(ch)
	}
}

// shutdownClients removes every client, closes its send channel so writePump
// exits, and closes its connection so readPump unblocks.
func (h *Hub) shutdownClients() {
	log.Println("Shutting down all client connections...")

	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		delete(h.clients, client)
		client.closed = true
		clients = append(clients, client)
	}
	h.mutex.Unlock()

	for _, client := range clients {
		close(client.send)
		if client.conn == nil {
			continue
		}
		if err := client.conn.Close(); err != nil {
			if !isExpectedCloseError(err) {
				log.Printf("Error closing client connection from %s: %v", client.addr, err)
			}
		}
	}

	log.Printf("Closed %d client connections", len(clients))
}

// Shutdown initiates graceful shutdown of the hub and waits for all goroutines to complete.
// It returns after all client connections are closed and goroutines have finished,
// or when the timeout is reached.
func (h *Hub) Shutdown(timeout time.Duration) error {
	log.Println("Initiating hub shutdown...")

	h.cancel()

	<-h.done

	done := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Println("Hub shutdown completed successfully")
		return nil
	case <-time.After(timeout):
		log.Println("Hub shutdown timeout reached, some goroutines may still be running")
		return context.DeadlineExceeded
	}
}
