package sse

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, client *Client) Event {
	t.Helper()
	select {
	case evt := <-client.EventChan:
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func assertNoEvent(t *testing.T, client *Client) {
	t.Helper()
	select {
	case evt := <-client.EventChan:
		t.Fatalf("unexpected event %s", evt.Type)
	case <-time.After(50 * time.Millisecond):
	}
}

func startManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go m.Start(ctx)
	t.Cleanup(cancel)
	return m
}

func TestManager_ConnectDisconnect(t *testing.T) {
	m := NewManager(nil)

	client, err := m.Connect("user-1")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(client.ID, "sse-"))
	assert.Equal(t, 1, m.ClientCount())

	m.Disconnect(client.ID)
	assert.Equal(t, 0, m.ClientCount())

	// Unknown and repeated ids are ignored.
	m.Disconnect(client.ID)
	m.Disconnect("sse-missing")

	_, open := <-client.Done
	assert.False(t, open)
}

func TestManager_EventsAreFilteredByUser(t *testing.T) {
	m := startManager(t)

	alice, err := m.Connect("user-alice")
	require.NoError(t, err)
	bob, err := m.Connect("user-bob")
	require.NoError(t, err)

	m.Emit(NewFriendRequestReceivedEvent("user-bob", "freq-1", "alice", "bob"))

	evt := receive(t, bob)
	assert.Equal(t, EventFriendRequestReceived, evt.Type)
	data, ok := evt.Data.(FriendRequestEventData)
	require.True(t, ok)
	assert.Equal(t, "alice", data.From)

	assertNoEvent(t, alice)
}

func TestManager_UnaddressedEventsReachEveryone(t *testing.T) {
	m := startManager(t)

	alice, err := m.Connect("user-alice")
	require.NoError(t, err)
	bob, err := m.Connect("user-bob")
	require.NoError(t, err)

	m.Emit(Event{Type: EventHeartbeat, Timestamp: time.Now()})

	assert.Equal(t, EventHeartbeat, receive(t, alice).Type)
	assert.Equal(t, EventHeartbeat, receive(t, bob).Type)
}

func TestManager_EmitToUser(t *testing.T) {
	m := startManager(t)

	alice, err := m.Connect("user-alice")
	require.NoError(t, err)
	bob, err := m.Connect("user-bob")
	require.NoError(t, err)

	m.EmitToUser("user-alice", Event{Type: EventFeedUpdated, Data: FeedUpdatedEventData{PostCount: 2}})

	evt := receive(t, alice)
	assert.Equal(t, EventFeedUpdated, evt.Type)
	assert.Equal(t, "user-alice", evt.UserID)
	assertNoEvent(t, bob)
}

func TestManager_EmitIgnoresForeignValues(t *testing.T) {
	m := startManager(t)
	client, err := m.Connect("user-1")
	require.NoError(t, err)

	m.Emit("not an event")
	assertNoEvent(t, client)
}

func TestManager_SlowClientDropsInsteadOfBlocking(t *testing.T) {
	m := NewManager(nil)
	client, err := m.Connect("user-1")
	require.NoError(t, err)

	for range cap(client.EventChan) + 10 {
		m.broadcast(NewFeedUpdatedEvent("user-1", "", 0))
	}
	assert.Len(t, client.EventChan, cap(client.EventChan))
}

func TestManager_Heartbeat(t *testing.T) {
	m := NewManager(nil)
	m.heartbeatInterval = 10 * time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Start(ctx)

	client, err := m.Connect("user-1")
	require.NoError(t, err)

	assert.Equal(t, EventHeartbeat, receive(t, client).Type)
}

func TestManager_Shutdown(t *testing.T) {
	m := startManager(t)
	client, err := m.Connect("user-1")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, m.Shutdown(ctx))

	assert.Equal(t, 0, m.ClientCount())
	_, open := <-client.Done
	assert.False(t, open)

	// Emitting after shutdown is a no-op, and shutdown is idempotent.
	m.Emit(NewHeartbeatEvent())
	require.NoError(t, m.Shutdown(ctx))
}

func TestManager_CancelClosesClients(t *testing.T) {
	m := NewManager(nil)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		m.Start(ctx)
		close(stopped)
	}()

	client, err := m.Connect("user-1")
	require.NoError(t, err)

	cancel()
	<-stopped

	_, open := <-client.Done
	assert.False(t, open)
	assert.Equal(t, 0, m.ClientCount())
}

func TestHandler_StreamsAddressedEvents(t *testing.T) {
	m := startManager(t)
	h := NewHandler(m, nil)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r, "user-alice")
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	nextEvent := func() (string, string) {
		var name, data string
		for lines.Scan() {
			line := lines.Text()
			switch {
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "":
				return name, data
			}
		}
		return name, data
	}

	name, _ := nextEvent()
	require.Equal(t, "connected", name)
	require.Eventually(t, func() bool { return m.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	// Someone else's event first, then ours; only ours arrives.
	m.Emit(NewFeedUpdatedEvent("user-bob", "", 1))
	m.Emit(NewLabelItemAssignedEvent("user-alice", "label-1", "bob"))

	name, data := nextEvent()
	assert.Equal(t, string(EventLabelItemAssigned), name)
	assert.Contains(t, data, `"label_id":"label-1"`)
	assert.Contains(t, data, `"type":"label.item_assigned"`)
	assert.NotContains(t, data, "user-alice")

	cancel()
	require.Eventually(t, func() bool { return m.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}
