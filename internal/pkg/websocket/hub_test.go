package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/edustay/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, hub *Hub, userID int64) *httptest.Server {
	t.Helper()
	router := gin.New()
	router.GET("/ws", func(c *gin.Context) {
		if userID > 0 {
			c.Set(middleware.ContextUserID, userID)
		}
		c.Next()
	}, NewHandler(hub, []string{"http://app.test"}, zerolog.Nop()).HandleConnection)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func TestHub_NotifyWithoutClients(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	hub.Notify(42, "rental.started", map[string]int{"houseId": 1})
	hub.Notify(0, "ignored", nil)
	assert.Zero(t, hub.ClientsCount(42))
}

func TestHub_NotifyNeverBlocks(t *testing.T) {
	hub := NewHub(zerolog.Nop())

	done := make(chan struct{})
	go func() {
		// Run is not started, so the queue fills up and the rest are dropped
		for i := 0; i < publishBuffer*2; i++ {
			hub.Notify(1, "enrollment.created", i)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Notify blocked on a full queue")
	}
}

func TestHandler_DeliversEventsToUser(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := newTestServer(t, hub, 7)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientsCount(7) == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Notify(8, "rental.ended", nil)
	hub.Notify(7, "rental.started", map[string]int64{"houseId": 3})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, raw, err := conn.ReadMessage()
	require.NoError(t, err)

	var event Event
	require.NoError(t, json.Unmarshal(raw, &event))
	assert.Equal(t, "rental.started", event.Type)
	assert.Equal(t, map[string]interface{}{"houseId": float64(3)}, event.Data)
	assert.False(t, event.Timestamp.IsZero())

	// Cancelling the hub closes every connection
	cancel()
	_, _, err = conn.ReadMessage()
	assert.Error(t, err)
	assert.Eventually(t, func() bool { return hub.ClientsCount(7) == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHandler_OneEventPerFrame(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	srv := newTestServer(t, hub, 7)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return hub.ClientsCount(7) == 1 }, 2*time.Second, 10*time.Millisecond)

	const burst = 50
	for i := 0; i < burst; i++ {
		hub.Notify(7, "enrollment.created", map[string]int{"seq": i})
	}

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for i := 0; i < burst; i++ {
		msgType, raw, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Equal(t, websocket.TextMessage, msgType)

		var event Event
		require.NoError(t, json.Unmarshal(raw, &event), "frame %d: %s", i, raw)
		assert.Equal(t, map[string]interface{}{"seq": float64(i)}, event.Data)
	}
}

func TestHandler_RejectsAnonymousAndForeignOrigins(t *testing.T) {
	hub := NewHub(zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	anon := newTestServer(t, hub, 0)
	_, resp, err := websocket.DefaultDialer.Dial(wsURL(anon), nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	srv := newTestServer(t, hub, 7)
	header := http.Header{}
	header.Set("Origin", "http://evil.test")
	_, resp, err = websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	header.Set("Origin", "http://app.test")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(srv), header)
	require.NoError(t, err)
	_ = conn.Close()
}
