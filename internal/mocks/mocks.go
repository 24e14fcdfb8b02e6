package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"youapp-backend/internal/models"
	"youapp-backend/internal/repositories"
	"youapp-backend/internal/rpc"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Create(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	var created models.User
	if val := args.Get(0); val != nil {
		created = val.(models.User)
	}
	return created, args.Error(1)
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, id int64) (models.User, error) {
	args := m.Called(ctx, id)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByIdentity(ctx context.Context, identity string) (models.User, error) {
	args := m.Called(ctx, identity)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepositoryMock) UsernameExists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *UserRepositoryMock) Update(ctx context.Context, user models.User) (models.User, error) {
	args := m.Called(ctx, user)
	var updated models.User
	if val := args.Get(0); val != nil {
		updated = val.(models.User)
	}
	return updated, args.Error(1)
}

type RefreshTokenRepositoryMock struct {
	mock.Mock
}

func (m *RefreshTokenRepositoryMock) Create(ctx context.Context, userID int64, expiresAt time.Time) (models.RefreshToken, error) {
	args := m.Called(ctx, userID, expiresAt)
	var token models.RefreshToken
	if val := args.Get(0); val != nil {
		token = val.(models.RefreshToken)
	}
	return token, args.Error(1)
}

func (m *RefreshTokenRepositoryMock) GetByID(ctx context.Context, id int64) (models.RefreshToken, error) {
	args := m.Called(ctx, id)
	var token models.RefreshToken
	if val := args.Get(0); val != nil {
		token = val.(models.RefreshToken)
	}
	return token, args.Error(1)
}

type ChatRepositoryMock struct {
	mock.Mock
}

func (m *ChatRepositoryMock) FindOrCreate(ctx context.Context, userA int64, userB int64) (models.Chat, error) {
	args := m.Called(ctx, userA, userB)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

func (m *ChatRepositoryMock) GetChat(ctx context.Context, chatID int64) (models.Chat, error) {
	args := m.Called(ctx, chatID)
	var chat models.Chat
	if val := args.Get(0); val != nil {
		chat = val.(models.Chat)
	}
	return chat, args.Error(1)
}

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) Create(ctx context.Context, chatID, fromID, toID int64, message string) (models.Conversation, error) {
	args := m.Called(ctx, chatID, fromID, toID, message)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) ListByChat(ctx context.Context, chatID int64, page, limit int) ([]models.Conversation, int64, error) {
	args := m.Called(ctx, chatID, page, limit)
	var msgs []models.Conversation
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Conversation)
	}
	return msgs, args.Get(1).(int64), args.Error(2)
}

type UserDirectoryMock struct {
	mock.Mock
}

func (m *UserDirectoryMock) Login(ctx context.Context, identity, password string) (*models.User, error) {
	args := m.Called(ctx, identity, password)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

func (m *UserDirectoryMock) UserDetail(ctx context.Context, id int64, auth int) (*models.User, error) {
	args := m.Called(ctx, id, auth)
	var user *models.User
	if val := args.Get(0); val != nil {
		user = val.(*models.User)
	}
	return user, args.Error(1)
}

type CallerMock struct {
	mock.Mock
}

func (m *CallerMock) Call(ctx context.Context, pattern string, data any, out any) error {
	args := m.Called(ctx, pattern, data, out)
	return args.Error(0)
}

type RoomBroadcasterMock struct {
	mock.Mock
}

func (m *RoomBroadcasterMock) Broadcast(room string, event models.RoomEvent) {
	m.Called(room, event)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.RefreshTokenRepository = (*RefreshTokenRepositoryMock)(nil)
var _ repositories.ChatRepository = (*ChatRepositoryMock)(nil)
var _ repositories.ConversationRepository = (*ConversationRepositoryMock)(nil)
var _ rpc.UserDirectory = (*UserDirectoryMock)(nil)
var _ rpc.Caller = (*CallerMock)(nil)
