package websockets

import (
	"context"
	"sync"
	"time"

	"musicbot/config"
	"musicbot/internal/events"
	"musicbot/internal/services"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

const (
	PING_INTERVAL     = 30 * time.Second
	PONG_TIMEOUT      = 60 * time.Second
	WRITE_TIMEOUT     = 10 * time.Second
	MAX_MESSAGE_SIZE  = 64 * 1024
	SEND_CHANNEL_SIZE = 64

	SYSTEM_CHANNEL = "system"
)

type Message struct {
	ID        string             `json:"id"`
	Type      events.MessageType `json:"type"`
	Channel   string             `json:"channel,omitempty"`
	JobID     string             `json:"jobId,omitempty"`
	Data      map[string]any     `json:"data,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

type Client struct {
	ID         string
	JobID      string
	Connection *websocket.Conn
	Manager    *Manager
	Status     int
	send       chan Message
}

// tokenParser validates the job token a client presents.
type tokenParser interface {
	Parse(token string) (*services.FileClaims, error)
}

// subscriber is the read side of the event bus.
type subscriber interface {
	Subscribe(channel events.Channel, handler events.EventHandler)
}

// Manager relays job events from the bus to the websocket clients watching
// each job.
type Manager struct {
	hub      *Hub
	tokens   tokenParser
	config   config.Config
	log      logger.Logger
	stopOnce sync.Once
}

func New(bus subscriber, tokens tokenParser, config config.Config) *Manager {
	manager := &Manager{
		hub:    newHub(),
		tokens: tokens,
		config: config,
		log:    logger.New("websockets"),
	}

	bus.Subscribe(events.JOBS_CHANNEL, manager.relayJobEvent)
	return manager
}

func (m *Manager) String() string {
	return "WebsocketHub"
}

// Serve runs the hub until ctx is done, then closes every client.
func (m *Manager) Serve(ctx context.Context) error {
	log := m.log.Function("Serve")
	log.Info("Starting websocket hub")

	purge := time.NewTicker(HISTORY_PURGE_INTERVAL)
	defer purge.Stop()

	for {
		select {
		case <-ctx.Done():
			m.stopOnce.Do(func() {
				close(m.hub.stopped)
				m.closeAll()
			})
			log.Info("Websocket hub stopped")
			return nil
		case client := <-m.hub.register:
			m.registerClient(client)
		case client := <-m.hub.unregister:
			m.unregisterClient(client)
		case <-purge.C:
			m.purgeHistory(time.Now())
		}
	}
}

func (m *Manager) HandleWebSocket(c *websocket.Conn) {
	log := m.log.Function("HandleWebSocket")

	client := &Client{
		ID:         uuid.New().String(),
		Connection: c,
		Manager:    m,
		Status:     STATUS_UNAUTHENTICATED,
		send:       make(chan Message, SEND_CHANNEL_SIZE),
	}

	if err := client.sendAuthRequest(); err != nil {
		if err := c.Close(); err != nil {
			log.Er("failed to close connection", err)
		}
		return
	}

	if !m.hub.enqueue(m.hub.register, client) {
		_ = c.Close()
		return
	}
	defer func() {
		log.Debug("Client disconnected", "clientID", client.ID)
		m.hub.enqueue(m.hub.unregister, client)
		if err := c.Close(); err != nil {
			log.Debug("Connection already closed", "clientID", client.ID)
		}
	}()

	client.startAuthTimeout()
	go client.readPump()
	client.writePump()
}

// relayJobEvent forwards a bus event to the clients authenticated for its
// job and remembers it for clients that connect later.
func (m *Manager) relayJobEvent(event events.Event) error {
	if event.JobID == "" {
		m.log.Function("relayJobEvent").Warn("Dropping job event without job id", "eventID", event.ID)
		return nil
	}

	message := Message{
		ID:        event.ID,
		Type:      event.Type,
		Channel:   event.Channel.String(),
		JobID:     event.JobID,
		Data:      event.Data,
		Timestamp: event.Timestamp,
	}
	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.Timestamp.IsZero() {
		message.Timestamp = time.Now()
	}

	m.publish(message)
	return nil
}

func (c *Client) readPump() {
	log := c.Manager.log.Function("readPump")
	defer func() {
		c.Manager.hub.enqueue(c.Manager.hub.unregister, c)
		_ = c.Connection.Close()
	}()

	c.Connection.SetReadLimit(MAX_MESSAGE_SIZE)
	if err := c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT)); err != nil {
		log.Er("failed to set read deadline", err, "clientID", c.ID)
	}
	c.Connection.SetPongHandler(func(string) error {
		return c.Connection.SetReadDeadline(time.Now().Add(PONG_TIMEOUT))
	})

	for {
		var message Message
		if err := c.Connection.ReadJSON(&message); err != nil {
			if websocket.IsUnexpectedCloseError(
				err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
			) {
				log.Er("Unexpected close error", err, "clientID", c.ID)
			}
			return
		}

		message.ID = uuid.New().String()
		message.Timestamp = time.Now()
		c.routeMessage(message)
	}
}

func (c *Client) routeMessage(message Message) {
	switch {
	case message.Type == events.AUTH_RESPONSE:
		c.handleAuthResponse(message)
	case !c.Manager.isAuthenticated(c):
		c.handleUnauthenticatedMessage(message)
	case message.Type == events.PING:
		c.Manager.sendTo(c, Message{
			ID:        uuid.New().String(),
			Type:      events.PONG,
			Channel:   SYSTEM_CHANNEL,
			Timestamp: time.Now(),
		})
	default:
		c.Manager.log.Function("routeMessage").Debug("Ignoring client message", "clientID", c.ID, "type", message.Type)
	}
}

func (c *Client) writePump() {
	log := c.Manager.log.Function("writePump")

	ticker := time.NewTicker(PING_INTERVAL)
	defer func() {
		ticker.Stop()
		_ = c.Connection.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline", err, "clientID", c.ID)
			}
			if !ok {
				_ = c.Connection.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Connection.WriteJSON(message); err != nil {
				log.Er("WebSocket write error", err, "clientID", c.ID, "messageID", message.ID)
				return
			}

		case <-ticker.C:
			if err := c.Connection.SetWriteDeadline(time.Now().Add(WRITE_TIMEOUT)); err != nil {
				log.Er("failed to set write deadline for ping", err, "clientID", c.ID)
			}
			if err := c.Connection.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
