package websockets

import (
	"sync"
	"time"

	"musicbot/internal/events"
)

const (
	STATUS_UNAUTHENTICATED = iota
	STATUS_AUTHENTICATED
)

const (
	HISTORY_LIMIT          = 50
	HISTORY_RETENTION      = 10 * time.Minute
	HISTORY_MAX_AGE        = time.Hour
	HISTORY_PURGE_INTERVAL = time.Minute
)

// jobHistory keeps the recent events of one job so a client that connects
// after the job started still sees its progress.
type jobHistory struct {
	messages    []Message
	lastEvent   time.Time
	completedAt time.Time
}

type Hub struct {
	register   chan *Client
	unregister chan *Client
	stopped    chan struct{}
	clients    map[string]*Client
	history    map[string]*jobHistory
	mutex      sync.RWMutex
}

func newHub() *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		stopped:    make(chan struct{}),
		clients:    make(map[string]*Client),
		history:    make(map[string]*jobHistory),
	}
}

// enqueue hands a client to the hub loop, giving up once the hub has stopped.
func (h *Hub) enqueue(ch chan *Client, client *Client) bool {
	select {
	case ch <- client:
		return true
	case <-h.stopped:
		return false
	}
}

func (m *Manager) registerClient(client *Client) {
	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()

	m.hub.clients[client.ID] = client
	m.log.Function("registerClient").Debug("Client registered", "clientID", client.ID, "clients", len(m.hub.clients))
}

func (m *Manager) unregisterClient(client *Client) {
	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()

	if _, ok := m.hub.clients[client.ID]; !ok {
		return
	}
	delete(m.hub.clients, client.ID)
	close(client.send)
	m.log.Function("unregisterClient").Debug("Client unregistered", "clientID", client.ID, "jobID", client.JobID)
}

func (m *Manager) closeAll() {
	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()

	for id, client := range m.hub.clients {
		delete(m.hub.clients, id)
		close(client.send)
	}
}

func (m *Manager) isAuthenticated(client *Client) bool {
	m.hub.mutex.RLock()
	defer m.hub.mutex.RUnlock()
	return client.Status == STATUS_AUTHENTICATED
}

// authenticate binds client to jobID and replays what the job has published
// so far. Both happen under the hub lock so no live event slips in between.
func (m *Manager) authenticate(client *Client, jobID string, success Message) {
	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()

	client.Status = STATUS_AUTHENTICATED
	client.JobID = jobID

	if _, ok := m.hub.clients[client.ID]; !ok {
		return
	}
	m.trySend(client, success)
	if history, ok := m.hub.history[jobID]; ok {
		for _, message := range history.messages {
			m.trySend(client, message)
		}
	}
}

// sendTo delivers to one client if it is still registered.
func (m *Manager) sendTo(client *Client, message Message) {
	m.hub.mutex.RLock()
	defer m.hub.mutex.RUnlock()

	if _, ok := m.hub.clients[client.ID]; ok {
		m.trySend(client, message)
	}
}

// SendToJob delivers message to every client watching jobID.
func (m *Manager) SendToJob(jobID string, message Message) {
	m.hub.mutex.RLock()
	defer m.hub.mutex.RUnlock()
	m.sendToJob(jobID, message)
}

// publish records message in its job history and fans it out in one critical
// section, so a client authenticating concurrently sees it exactly once.
func (m *Manager) publish(message Message) {
	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()
	m.remember(message)
	m.sendToJob(message.JobID, message)
}

// sendToJob must be called with the hub lock held.
func (m *Manager) sendToJob(jobID string, message Message) {
	sent := 0
	for _, client := range m.hub.clients {
		if client.Status != STATUS_AUTHENTICATED || client.JobID != jobID {
			continue
		}
		if m.trySend(client, message) {
			sent++
		}
	}
	m.log.Function("SendToJob").Debug("Job message relayed", "jobID", jobID, "type", message.Type, "sentTo", sent)
}

// trySend must be called with the hub lock held.
func (m *Manager) trySend(client *Client, message Message) bool {
	select {
	case client.send <- message:
		return true
	default:
		m.log.Function("trySend").Warn("Client send channel full, dropping message", "clientID", client.ID, "messageID", message.ID)
		return false
	}
}

// remember must be called with the hub write lock held.
func (m *Manager) remember(message Message) {
	history, ok := m.hub.history[message.JobID]
	if !ok {
		history = &jobHistory{}
		m.hub.history[message.JobID] = history
	}
	history.messages = append(history.messages, message)
	if len(history.messages) > HISTORY_LIMIT {
		history.messages = history.messages[len(history.messages)-HISTORY_LIMIT:]
	}
	history.lastEvent = message.Timestamp
	if message.Type == events.JOB_COMPLETE {
		history.completedAt = message.Timestamp
	}
}

func (m *Manager) purgeHistory(now time.Time) {
	m.hub.mutex.Lock()
	defer m.hub.mutex.Unlock()

	for jobID, history := range m.hub.history {
		finished := !history.completedAt.IsZero() && now.Sub(history.completedAt) > HISTORY_RETENTION
		if finished || now.Sub(history.lastEvent) > HISTORY_MAX_AGE {
			delete(m.hub.history, jobID)
		}
	}
}
