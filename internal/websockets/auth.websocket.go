package websockets

import (
	"time"

	"musicbot/internal/events"

	"github.com/google/uuid"
)

const AUTH_HANDSHAKE_TIMEOUT = 10 * time.Second

// startAuthTimeout disconnects the client if it has not presented a job
// token in time.
func (c *Client) startAuthTimeout() {
	time.AfterFunc(AUTH_HANDSHAKE_TIMEOUT, func() {
		if c.Manager.isAuthenticated(c) {
			return
		}
		c.Manager.log.Function("startAuthTimeout").Warn("Client failed to authenticate within timeout, disconnecting",
			"clientID", c.ID,
			"timeout", AUTH_HANDSHAKE_TIMEOUT)
		c.sendAuthFailure("Authentication timeout")
	})
}

// handleAuthResponse accepts a job token from POST /api/downloads or
// /api/conversions and subscribes the client to that job.
func (c *Client) handleAuthResponse(message Message) {
	log := c.Manager.log.Function("handleAuthResponse")

	if c.Manager.isAuthenticated(c) {
		log.Warn("Auth response from already authenticated client", "clientID", c.ID)
		return
	}

	token, ok := message.Data["token"].(string)
	if !ok || token == "" {
		log.Warn("Invalid token in auth response", "clientID", c.ID)
		c.sendAuthFailure("Invalid token format")
		return
	}

	claims, err := c.Manager.tokens.Parse(token)
	if err != nil {
		log.Info("WebSocket token validation failed", "clientID", c.ID, "error", err.Error())
		c.sendAuthFailure("Authentication failed")
		return
	}

	log.Info("WebSocket client authenticated", "clientID", c.ID, "jobID", claims.JobID)
	c.Manager.authenticate(c, claims.JobID, Message{
		ID:        uuid.New().String(),
		Type:      events.AUTH_SUCCESS,
		Channel:   SYSTEM_CHANNEL,
		JobID:     claims.JobID,
		Data:      map[string]any{"action": "authenticated"},
		Timestamp: time.Now(),
	})
}

// sendAuthFailure reports the failure and closes the connection shortly
// after, giving the writer a chance to flush the message.
func (c *Client) sendAuthFailure(reason string) {
	c.Manager.sendTo(c, Message{
		ID:        uuid.New().String(),
		Type:      events.AUTH_FAILURE,
		Channel:   SYSTEM_CHANNEL,
		Data:      map[string]any{"action": "authentication_failed", "reason": reason},
		Timestamp: time.Now(),
	})

	c.Manager.log.Function("sendAuthFailure").Info("Auth failure sent, closing connection", "clientID", c.ID, "reason", reason)

	if c.Connection != nil {
		time.AfterFunc(100*time.Millisecond, func() {
			_ = c.Connection.Close()
		})
	}
}

func (c *Client) sendAuthRequest() error {
	authRequest := Message{
		ID:        uuid.New().String(),
		Type:      events.AUTH_REQUEST,
		Channel:   SYSTEM_CHANNEL,
		Data:      map[string]any{"action": "authenticate"},
		Timestamp: time.Now(),
	}

	if err := c.Connection.WriteJSON(authRequest); err != nil {
		return c.Manager.log.Function("sendAuthRequest").Err("failed to send auth request", err, "clientID", c.ID)
	}
	return nil
}

func (c *Client) handleUnauthenticatedMessage(message Message) {
	c.Manager.log.Function("handleUnauthenticatedMessage").Warn(
		"Blocking message from unauthenticated client",
		"clientID", c.ID,
		"type", message.Type,
	)

	c.Manager.sendTo(c, Message{
		ID:        uuid.New().String(),
		Type:      events.AUTH_FAILURE,
		Channel:   SYSTEM_CHANNEL,
		Data:      map[string]any{"action": "authentication_required", "reason": "Authentication required"},
		Timestamp: time.Now(),
	})
}
