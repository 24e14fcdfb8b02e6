package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"youapp-backend/internal/mocks"
	"youapp-backend/internal/models"
	"youapp-backend/internal/rpc"
)

func setupChatsRouter(handler *ChatsHandler, caller *models.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if caller != nil {
			c.Set("currentUser", caller)
		}
		c.Next()
	})
	r.POST("/api/sendMessage", handler.SendMessage)
	r.GET("/api/viewMessages/:id", handler.ViewMessages)
	return r
}

func TestSendMessageSuccess(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	convRepo := new(mocks.ConversationRepositoryMock)
	users := new(mocks.UserDirectoryMock)
	hub := new(mocks.RoomBroadcasterMock)
	handler := NewChatsHandler(chatRepo, convRepo, users, hub, nil)
	router := setupChatsRouter(handler, &models.User{ID: 1, Username: "alice"})

	chatRepo.On("FindOrCreate", mock.Anything, int64(1), int64(2)).Return(models.Chat{ID: 10, User1ID: 1, User2ID: 2}, nil).Once()
	users.On("UserDetail", mock.Anything, int64(1), rpc.AuthOptional).Return(&models.User{ID: 1, Username: "alice"}, nil).Once()
	users.On("UserDetail", mock.Anything, int64(2), rpc.AuthOptional).Return(&models.User{ID: 2, Username: "bob"}, nil).Once()
	convRepo.On("Create", mock.Anything, int64(10), int64(1), int64(2), "hi").
		Return(models.Conversation{ID: 7, ChatID: 10, FromID: 1, ToID: 2, Message: "hi", CreatedAt: time.Now()}, nil).Once()
	hub.On("Broadcast", "10", mock.MatchedBy(func(e models.RoomEvent) bool {
		return e.Event == "newMessage"
	})).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/sendMessage", bytes.NewBufferString(`{"to":2,"message":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	chatRepo.AssertExpectations(t)
	convRepo.AssertExpectations(t)
	users.AssertExpectations(t)
	hub.AssertExpectations(t)
}

func TestSendMessageToSelf(t *testing.T) {
	handler := NewChatsHandler(new(mocks.ChatRepositoryMock), new(mocks.ConversationRepositoryMock), new(mocks.UserDirectoryMock), new(mocks.RoomBroadcasterMock), nil)
	router := setupChatsRouter(handler, &models.User{ID: 1})

	req := httptest.NewRequest(http.MethodPost, "/api/sendMessage", bytes.NewBufferString(`{"to":1,"message":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "You can't chat with yourself", resp["message"])
}

func TestSendMessageRecipientNotFound(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	users := new(mocks.UserDirectoryMock)
	handler := NewChatsHandler(chatRepo, new(mocks.ConversationRepositoryMock), users, new(mocks.RoomBroadcasterMock), nil)
	router := setupChatsRouter(handler, &models.User{ID: 1})

	chatRepo.On("FindOrCreate", mock.Anything, int64(1), int64(9)).Return(models.Chat{ID: 11, User1ID: 1, User2ID: 9}, nil)
	users.On("UserDetail", mock.Anything, int64(1), rpc.AuthOptional).Return(&models.User{ID: 1}, nil)
	users.On("UserDetail", mock.Anything, int64(9), rpc.AuthOptional).
		Return((*models.User)(nil), &rpc.UserNotFoundError{ID: 9})

	req := httptest.NewRequest(http.MethodPost, "/api/sendMessage", bytes.NewBufferString(`{"to":9,"message":"hi"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "User with id 9 is not found", resp["message"])
}

func TestSendMessageMissingBody(t *testing.T) {
	handler := NewChatsHandler(new(mocks.ChatRepositoryMock), new(mocks.ConversationRepositoryMock), new(mocks.UserDirectoryMock), new(mocks.RoomBroadcasterMock), nil)
	router := setupChatsRouter(handler, &models.User{ID: 1})

	req := httptest.NewRequest(http.MethodPost, "/api/sendMessage", bytes.NewBufferString(`{"to":2}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestViewMessagesSuccess(t *testing.T) {
	chatRepo := new(mocks.ChatRepositoryMock)
	convRepo := new(mocks.ConversationRepositoryMock)
	users := new(mocks.UserDirectoryMock)
	hub := new(mocks.RoomBroadcasterMock)
	handler := NewChatsHandler(chatRepo, convRepo, users, hub, nil)
	router := setupChatsRouter(handler, &models.User{ID: 1})

	chatRepo.On("FindOrCreate", mock.Anything, int64(2), int64(1)).Return(models.Chat{ID: 10, User1ID: 1, User2ID: 2}, nil)
	users.On("UserDetail", mock.Anything, int64(1), rpc.AuthOptional).Return(&models.User{ID: 1, Username: "alice"}, nil)
	users.On("UserDetail", mock.Anything, int64(2), rpc.AuthOptional).Return(&models.User{ID: 2, Username: "bob"}, nil)
	convRepo.On("ListByChat", mock.Anything, int64(10), 1, 10).
		Return([]models.Conversation{{ID: 7, ChatID: 10, FromID: 2, ToID: 1, Message: "hi"}}, int64(1), nil).Once()
	hub.On("Broadcast", "client-abc", mock.MatchedBy(func(e models.RoomEvent) bool {
		return e.Event == "viewMessages"
	})).Once()

	req := httptest.NewRequest(http.MethodGet, "/api/viewMessages/2?page=1&limit=10&clientId=client-abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, float64(10), resp["chatId"])
	assert.Equal(t, float64(1), resp["total"])
	datas := resp["datas"].([]any)
	require.Len(t, datas, 1)
	first := datas[0].(map[string]any)
	assert.Equal(t, "hi", first["message"])
	chatRepo.AssertExpectations(t)
	convRepo.AssertExpectations(t)
	hub.AssertExpectations(t)
}

func TestViewMessagesSelf(t *testing.T) {
	handler := NewChatsHandler(new(mocks.ChatRepositoryMock), new(mocks.ConversationRepositoryMock), new(mocks.UserDirectoryMock), new(mocks.RoomBroadcasterMock), nil)
	router := setupChatsRouter(handler, &models.User{ID: 1})

	req := httptest.NewRequest(http.MethodGet, "/api/viewMessages/1?page=1&limit=10&clientId=client-abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestViewMessagesMissingPagination(t *testing.T) {
	handler := NewChatsHandler(new(mocks.ChatRepositoryMock), new(mocks.ConversationRepositoryMock), new(mocks.UserDirectoryMock), new(mocks.RoomBroadcasterMock), nil)
	router := setupChatsRouter(handler, &models.User{ID: 1})

	req := httptest.NewRequest(http.MethodGet, "/api/viewMessages/2?clientId=client-abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestViewMessagesUnauthenticated(t *testing.T) {
	handler := NewChatsHandler(new(mocks.ChatRepositoryMock), new(mocks.ConversationRepositoryMock), new(mocks.UserDirectoryMock), new(mocks.RoomBroadcasterMock), nil)
	router := setupChatsRouter(handler, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/viewMessages/2?page=1&limit=10&clientId=client-abc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
