package websockets

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"musicbot/config"
	"musicbot/internal/events"
	"musicbot/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubBus struct {
	handlers map[events.Channel]events.EventHandler
}

func (b *stubBus) Subscribe(channel events.Channel, handler events.EventHandler) {
	if b.handlers == nil {
		b.handlers = make(map[events.Channel]events.EventHandler)
	}
	b.handlers[channel] = handler
}

type stubTokens map[string]string

func (s stubTokens) Parse(token string) (*services.FileClaims, error) {
	jobID, ok := s[token]
	if !ok {
		return nil, services.ErrInvalidFileLink
	}
	return &services.FileClaims{JobID: jobID}, nil
}

func newTestManager(t *testing.T) (*Manager, *stubBus) {
	t.Helper()
	bus := &stubBus{}
	manager := New(bus, stubTokens{"good": "job-1"}, config.Config{})
	require.Contains(t, bus.handlers, events.JOBS_CHANNEL)
	return manager, bus
}

func newTestClient(m *Manager, id string) *Client {
	client := &Client{ID: id, Manager: m, send: make(chan Message, SEND_CHANNEL_SIZE)}
	m.registerClient(client)
	return client
}

func drain(client *Client) []Message {
	var out []Message
	for {
		select {
		case message := <-client.send:
			out = append(out, message)
		default:
			return out
		}
	}
}

func authResponse(token string) Message {
	return Message{Type: events.AUTH_RESPONSE, Data: map[string]any{"token": token}}
}

func TestRelayOnlyReachesAuthenticatedJobClients(t *testing.T) {
	manager, bus := newTestManager(t)
	watcher := newTestClient(manager, "a")
	stranger := newTestClient(manager, "b")
	anonymous := newTestClient(manager, "c")

	watcher.routeMessage(authResponse("good"))
	manager.authenticate(stranger, "job-2", Message{Type: events.AUTH_SUCCESS})
	drain(watcher)
	drain(stranger)

	relay := bus.handlers[events.JOBS_CHANNEL]
	require.NoError(t, relay(events.Event{ID: "e1", Type: events.JOB_STATUS, JobID: "job-1", Data: map[string]any{"text": "50%"}}))

	received := drain(watcher)
	require.Len(t, received, 1)
	assert.Equal(t, events.JOB_STATUS, received[0].Type)
	assert.Equal(t, "50%", received[0].Data["text"])
	assert.Empty(t, drain(stranger))
	assert.Empty(t, drain(anonymous))
}

func TestLateClientReceivesJobHistory(t *testing.T) {
	manager, bus := newTestManager(t)
	relay := bus.handlers[events.JOBS_CHANNEL]
	require.NoError(t, relay(events.Event{ID: "e1", Type: events.JOB_STATUS, JobID: "job-1"}))
	require.NoError(t, relay(events.Event{ID: "e2", Type: events.JOB_ASSET, JobID: "job-1"}))

	client := newTestClient(manager, "late")
	client.routeMessage(authResponse("good"))

	received := drain(client)
	require.Len(t, received, 3)
	assert.Equal(t, events.AUTH_SUCCESS, received[0].Type)
	assert.Equal(t, "e1", received[1].ID)
	assert.Equal(t, "e2", received[2].ID)
	assert.Equal(t, "job-1", client.JobID)
}

func TestConcurrentAuthenticationSeesEachEventOnce(t *testing.T) {
	manager, bus := newTestManager(t)
	relay := bus.handlers[events.JOBS_CHANNEL]
	client := newTestClient(manager, "a")

	const total = 40
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < total; i++ {
			_ = relay(events.Event{ID: fmt.Sprintf("e%d", i), Type: events.JOB_STATUS, JobID: "job-1"})
		}
	}()
	manager.authenticate(client, "job-1", Message{Type: events.AUTH_SUCCESS})
	wg.Wait()

	seen := make(map[string]int)
	for _, message := range drain(client) {
		if message.Type == events.JOB_STATUS {
			seen[message.ID]++
		}
	}
	assert.Len(t, seen, total)
	for id, count := range seen {
		assert.Equal(t, 1, count, id)
	}
}

func TestAuthentication(t *testing.T) {
	t.Run("bad token", func(t *testing.T) {
		manager, _ := newTestManager(t)
		client := newTestClient(manager, "a")

		client.routeMessage(authResponse("forged"))

		received := drain(client)
		require.Len(t, received, 1)
		assert.Equal(t, events.AUTH_FAILURE, received[0].Type)
		assert.Equal(t, "Authentication failed", received[0].Data["reason"])
		assert.False(t, manager.isAuthenticated(client))
	})

	t.Run("message before auth", func(t *testing.T) {
		manager, _ := newTestManager(t)
		client := newTestClient(manager, "a")

		client.routeMessage(Message{Type: events.PING})

		received := drain(client)
		require.Len(t, received, 1)
		assert.Equal(t, "authentication_required", received[0].Data["action"])
	})

	t.Run("ping after auth", func(t *testing.T) {
		manager, _ := newTestManager(t)
		client := newTestClient(manager, "a")
		client.routeMessage(authResponse("good"))
		drain(client)

		client.routeMessage(Message{Type: events.PING})

		received := drain(client)
		require.Len(t, received, 1)
		assert.Equal(t, events.PONG, received[0].Type)
	})
}

func TestHistoryIsBoundedAndPurged(t *testing.T) {
	manager, bus := newTestManager(t)
	relay := bus.handlers[events.JOBS_CHANNEL]
	start := time.Now()

	for i := 0; i < HISTORY_LIMIT+5; i++ {
		require.NoError(t, relay(events.Event{Type: events.JOB_STATUS, JobID: "job-1", Timestamp: start}))
	}
	require.NoError(t, relay(events.Event{Type: events.JOB_COMPLETE, JobID: "job-1", Timestamp: start}))
	require.NoError(t, relay(events.Event{Type: events.JOB_STATUS, JobID: "job-2", Timestamp: start}))

	assert.Len(t, manager.hub.history["job-1"].messages, HISTORY_LIMIT)

	manager.purgeHistory(start.Add(HISTORY_RETENTION + time.Second))
	assert.NotContains(t, manager.hub.history, "job-1")
	assert.Contains(t, manager.hub.history, "job-2")

	manager.purgeHistory(start.Add(HISTORY_MAX_AGE + time.Second))
	assert.Empty(t, manager.hub.history)
}

func TestUnregisterIsIdempotent(t *testing.T) {
	manager, _ := newTestManager(t)
	client := newTestClient(manager, "a")

	manager.unregisterClient(client)
	manager.unregisterClient(client)

	_, open := <-client.send
	assert.False(t, open)
	manager.SendToJob("job-1", Message{})
}

func TestServeClosesClientsOnShutdown(t *testing.T) {
	manager, _ := newTestManager(t)
	ctx, cancel := context.WithCancel(context.Background())

	errs := make(chan error, 1)
	go func() { errs <- manager.Serve(ctx) }()

	client := &Client{ID: "a", Manager: manager, send: make(chan Message, 1)}
	require.True(t, manager.hub.enqueue(manager.hub.register, client))

	cancel()
	require.NoError(t, <-errs)

	_, open := <-client.send
	assert.False(t, open)
	assert.False(t, manager.hub.enqueue(manager.hub.unregister, client))
}
