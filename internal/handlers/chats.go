package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"youapp-backend/internal/models"
	"youapp-backend/internal/repositories"
	"youapp-backend/internal/rpc"
	"youapp-backend/internal/telemetry"
)

// RoomBroadcaster is the hub surface the chat handlers push events through.
type RoomBroadcaster interface {
	Broadcast(room string, event models.RoomEvent)
}

// ChatsHandler serves message send and paginated view.
type ChatsHandler struct {
	chatRepo repositories.ChatRepository
	convRepo repositories.ConversationRepository
	users    rpc.UserDirectory
	hub      RoomBroadcaster
	audit    *telemetry.AuditEmitter
}

// NewChatsHandler builds a ChatsHandler.
func NewChatsHandler(chatRepo repositories.ChatRepository, convRepo repositories.ConversationRepository, users rpc.UserDirectory, hub RoomBroadcaster, audit *telemetry.AuditEmitter) *ChatsHandler {
	return &ChatsHandler{
		chatRepo: chatRepo,
		convRepo: convRepo,
		users:    users,
		hub:      hub,
		audit:    audit,
	}
}

// Welcome is the health string.
func (h *ChatsHandler) Welcome(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to Chats API!")
}

// SendMessage persists a message and fans it out to the chat room. The chat
// lookup and both participant validations run concurrently and are joined
// before the write.
func (h *ChatsHandler) SendMessage(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		return
	}

	var req struct {
		To      int64  `json:"to" binding:"required"`
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.To == caller.ID {
		fail(c, http.StatusForbidden, "You can't chat with yourself")
		return
	}

	var (
		chat     models.Chat
		fromUser *models.User
		toUser   *models.User
	)
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		chat, err = h.chatRepo.FindOrCreate(ctx, caller.ID, req.To)
		return err
	})
	g.Go(func() error {
		var err error
		fromUser, err = h.users.UserDetail(ctx, caller.ID, rpc.AuthOptional)
		return err
	})
	g.Go(func() error {
		var err error
		toUser, err = h.users.UserDetail(ctx, req.To, rpc.AuthOptional)
		return err
	})
	if err := g.Wait(); err != nil {
		h.failFromJoin(c, err)
		return
	}

	conv, err := h.convRepo.Create(c.Request.Context(), chat.ID, caller.ID, req.To, req.Message)
	if err != nil {
		fail(c, http.StatusInternalServerError, "could not store message")
		return
	}

	view := models.ConversationView{
		ID:        conv.ID,
		From:      fromUser.Public(),
		To:        toUser.Public(),
		Message:   conv.Message,
		CreatedAt: conv.CreatedAt,
	}

	h.hub.Broadcast(roomForChat(chat.ID), models.RoomEvent{Event: "newMessage", Data: view})
	h.audit.Emit(c.Request.Context(), "INFO", "message sent", requestIDFromContext(c), auditUserID(caller))
	c.JSON(http.StatusCreated, gin.H{"statusCode": http.StatusCreated, "data": view})
}

// ViewMessages pages through the thread with the counterpart, newest first,
// and pushes the same payload into the caller-supplied client room.
func (h *ChatsHandler) ViewMessages(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		return
	}

	counterpartID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || counterpartID <= 0 {
		fail(c, http.StatusBadRequest, "Param id must be a valid user id")
		return
	}
	if counterpartID == caller.ID {
		fail(c, http.StatusForbidden, "You can't chat with yourself")
		return
	}

	var query struct {
		Page     int    `form:"page" binding:"required,min=1"`
		Limit    int    `form:"limit" binding:"required,min=1"`
		ClientID string `form:"clientId" binding:"required"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	var chat models.Chat
	g, ctx := errgroup.WithContext(c.Request.Context())
	g.Go(func() error {
		var err error
		chat, err = h.chatRepo.FindOrCreate(ctx, counterpartID, caller.ID)
		return err
	})
	g.Go(func() error {
		_, err := h.users.UserDetail(ctx, caller.ID, rpc.AuthOptional)
		return err
	})
	g.Go(func() error {
		_, err := h.users.UserDetail(ctx, counterpartID, rpc.AuthOptional)
		return err
	})
	if err := g.Wait(); err != nil {
		h.failFromJoin(c, err)
		return
	}

	msgs, total, err := h.convRepo.ListByChat(c.Request.Context(), chat.ID, query.Page, query.Limit)
	if err != nil {
		fail(c, http.StatusInternalServerError, "could not load messages")
		return
	}

	views, err := h.enrichMessages(c, msgs)
	if err != nil {
		h.failFromJoin(c, err)
		return
	}

	page := models.MessagePage{ChatID: chat.ID, Datas: views, Total: total}
	h.hub.Broadcast(query.ClientID, models.RoomEvent{Event: "viewMessages", Data: page})
	c.JSON(http.StatusOK, gin.H{
		"statusCode": http.StatusOK,
		"chatId":     page.ChatID,
		"datas":      page.Datas,
		"total":      page.Total,
	})
}

// enrichMessages resolves both sides of every message concurrently. Each
// goroutine writes a distinct slot, so no locking is needed.
func (h *ChatsHandler) enrichMessages(c *gin.Context, msgs []models.Conversation) ([]models.ConversationView, error) {
	views := make([]models.ConversationView, len(msgs))
	g, ctx := errgroup.WithContext(c.Request.Context())
	for i, msg := range msgs {
		i, msg := i, msg
		views[i] = models.ConversationView{ID: msg.ID, Message: msg.Message, CreatedAt: msg.CreatedAt}
		g.Go(func() error {
			user, err := h.users.UserDetail(ctx, msg.FromID, rpc.AuthOptional)
			if err != nil {
				return err
			}
			views[i].From = user.Public()
			return nil
		})
		g.Go(func() error {
			user, err := h.users.UserDetail(ctx, msg.ToID, rpc.AuthOptional)
			if err != nil {
				return err
			}
			views[i].To = user.Public()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return views, nil
}

// failFromJoin maps a joined validation error to the client-facing status.
func (h *ChatsHandler) failFromJoin(c *gin.Context, err error) {
	var notFound *rpc.UserNotFoundError
	if errors.As(err, &notFound) {
		fail(c, http.StatusNotFound, notFound.Error())
		return
	}
	if errors.Is(err, rpc.ErrUserUnauthorized) {
		fail(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	fail(c, http.StatusInternalServerError, "could not process request")
}

func roomForChat(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
