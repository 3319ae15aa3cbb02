package stream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	logger_lib "github.com/s21platform/logger-lib"

	"github.com/blinkroom/chat-service/internal/model"
)

func newTestHub(t *testing.T) (*Hub, string) {
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockLogger := logger_lib.NewMockLoggerInterface(ctrl)
	mockLogger.EXPECT().Error(gomock.Any()).AnyTimes()

	hub := NewHub(mockLogger)
	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(server.Close)

	return hub, "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, want int) {
	deadline := time.Now().Add(2 * time.Second)
	for hub.Len() != want {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d subscribers, got %d", want, hub.Len())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_BroadcastReachesAllSubscribers(t *testing.T) {
	hub, url := newTestHub(t)

	first := dial(t, url)
	second := dial(t, url)
	waitForClients(t, hub, 2)

	sent := model.RoomEvent{
		Type: model.EventInsert,
		Message: &model.Message{
			ID:        uuid.New(),
			Content:   "hello everyone",
			CreatedAt: time.Now().UTC(),
		},
	}
	hub.Broadcast(sent)

	for _, conn := range []*websocket.Conn{first, second} {
		require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

		var received model.RoomEvent
		require.NoError(t, conn.ReadJSON(&received))
		assert.Equal(t, model.EventInsert, received.Type)
		require.NotNil(t, received.Message)
		assert.Equal(t, sent.Message.ID, received.Message.ID)
		assert.Equal(t, "hello everyone", received.Message.Content)
	}
}

func TestHub_BroadcastDeleteEvent(t *testing.T) {
	hub, url := newTestHub(t)

	conn := dial(t, url)
	waitForClients(t, hub, 1)

	removed := []uuid.UUID{uuid.New(), uuid.New()}
	hub.Broadcast(model.RoomEvent{Type: model.EventDelete, IDs: removed})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))

	var received model.RoomEvent
	require.NoError(t, conn.ReadJSON(&received))
	assert.Equal(t, model.EventDelete, received.Type)
	assert.Equal(t, removed, received.IDs)
}

func TestHub_DisconnectedSubscriberIsDropped(t *testing.T) {
	hub, url := newTestHub(t)

	conn := dial(t, url)
	waitForClients(t, hub, 1)

	require.NoError(t, conn.Close())
	waitForClients(t, hub, 0)

	// no subscribers left, must not panic
	hub.Broadcast(model.RoomEvent{Type: model.EventDelete, IDs: []uuid.UUID{uuid.New()}})
}
