package handler_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mparedes/draftroom/internal/domain"
)

func TestEvents_streamsMutationEvents(t *testing.T) {
	srv := newTestServer(t)
	joinAndAddStop(t, srv.URL, "d1")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/drafts/d1/events"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	defer conn.Close()

	// The server registers its event subscription just after the upgrade
	// response; give it a beat before mutating so the event is captured.
	time.Sleep(50 * time.Millisecond)
	reply := command(t, srv.URL, "d1", map[string]any{"op": "add_stop", "userId": "u1"})
	require.Equal(t, http.StatusOK, reply.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev domain.Event
	require.NoError(t, conn.ReadJSON(&ev))

	assert.Equal(t, domain.EventStopAdded, ev.Kind)
	assert.Equal(t, "u1", ev.Actor)
}

func TestEvents_clientCloseEndsStream(t *testing.T) {
	srv := newTestServer(t)
	joinAndAddStop(t, srv.URL, "d1")

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/drafts/d1/events"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.NoError(t, conn.Close())

	// The session must keep working after the stream ends.
	reply := command(t, srv.URL, "d1", map[string]any{"op": "add_stop", "userId": "u1"})
	assert.Equal(t, http.StatusOK, reply.StatusCode)
}
