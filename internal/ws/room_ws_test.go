package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"youapp-backend/internal/models"
	"youapp-backend/internal/pkg/jwtauth"
)

func setupWSServer(t *testing.T, jwtSvc *jwtauth.Service) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler := NewRoomWebSocketHandler(NewHub(), jwtSvc)
	r := gin.New()
	r.GET("/ws", handler.Handle)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func dialWS(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestRoomHandlerRejectsMissingToken(t *testing.T) {
	jwtSvc := jwtauth.New("test-secret", time.Minute, time.Hour)
	srv := setupWSServer(t, jwtSvc)

	resp, err := http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoomHandlerJoinWithoutChatIDIsError(t *testing.T) {
	jwtSvc := jwtauth.New("test-secret", time.Minute, time.Hour)
	srv := setupWSServer(t, jwtSvc)

	token, err := jwtSvc.SignAccess(1)
	require.NoError(t, err)
	conn := dialWS(t, srv, token)

	require.NoError(t, conn.WriteJSON(map[string]string{"event": "join", "chatId": ""}))

	var reply models.RoomEvent
	require.NoError(t, conn.ReadJSON(&reply))
	require.Equal(t, "error", reply.Event)
	require.Equal(t, "chatId is required", reply.Data)
}

func TestRoomHandlerJoinBroadcastsIntoRoom(t *testing.T) {
	jwtSvc := jwtauth.New("test-secret", time.Minute, time.Hour)
	srv := setupWSServer(t, jwtSvc)

	token, err := jwtSvc.SignAccess(1)
	require.NoError(t, err)
	conn := dialWS(t, srv, token)

	require.NoError(t, conn.WriteJSON(map[string]string{"event": "join", "chatId": "10"}))

	var reply models.RoomEvent
	require.NoError(t, conn.ReadJSON(&reply))
	require.Equal(t, "joined", reply.Event)
}
