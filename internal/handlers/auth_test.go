package handlers

import (
	"bytes"
	"encoding/json"
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
	"youapp-backend/internal/pkg/jwtauth"
	"youapp-backend/internal/repositories"
	"youapp-backend/internal/rpc"
)

func setupAuthRouter(handler *AuthHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/api/login", handler.Login)
	r.POST("/api/refreshToken", handler.Refresh)
	return r
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestLoginSuccess(t *testing.T) {
	users := new(mocks.UserDirectoryMock)
	tokens := new(mocks.RefreshTokenRepositoryMock)
	jwtSvc := jwtauth.New("test-secret", time.Minute, time.Hour)
	handler := NewAuthHandler(users, tokens, jwtSvc, time.Hour, nil)
	router := setupAuthRouter(handler)

	users.On("Login", mock.Anything, "alice", "password123").Return(&models.User{ID: 1, Username: "alice"}, nil).Once()
	tokens.On("Create", mock.Anything, int64(1), mock.AnythingOfType("time.Time")).Return(models.RefreshToken{ID: 5, UserID: 1}, nil).Once()

	body := bytes.NewBufferString(`{"userIdentity":"alice","password":"password123"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/login", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody(t, rec)
	assert.NotEmpty(t, resp["access_token"])
	assert.NotEmpty(t, resp["refresh_token"])
	users.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestLoginInvalidCredentials(t *testing.T) {
	users := new(mocks.UserDirectoryMock)
	handler := NewAuthHandler(users, new(mocks.RefreshTokenRepositoryMock), jwtauth.New("test-secret", time.Minute, time.Hour), time.Hour, nil)
	router := setupAuthRouter(handler)

	users.On("Login", mock.Anything, "alice", "wrong").Return((*models.User)(nil), rpc.ErrInvalidCredentials).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBufferString(`{"userIdentity":"alice","password":"wrong"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "Invalid username or password", resp["message"])
	users.AssertExpectations(t)
}

func TestLoginDirectoryUnavailable(t *testing.T) {
	users := new(mocks.UserDirectoryMock)
	handler := NewAuthHandler(users, new(mocks.RefreshTokenRepositoryMock), jwtauth.New("test-secret", time.Minute, time.Hour), time.Hour, nil)
	router := setupAuthRouter(handler)

	users.On("Login", mock.Anything, "alice", "password123").Return((*models.User)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBufferString(`{"userIdentity":"alice","password":"password123"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	users.AssertExpectations(t)
}

func TestLoginMissingFields(t *testing.T) {
	handler := NewAuthHandler(new(mocks.UserDirectoryMock), new(mocks.RefreshTokenRepositoryMock), jwtauth.New("test-secret", time.Minute, time.Hour), time.Hour, nil)
	router := setupAuthRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/login", bytes.NewBufferString(`{"userIdentity":"alice"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRefreshSuccess(t *testing.T) {
	tokens := new(mocks.RefreshTokenRepositoryMock)
	jwtSvc := jwtauth.New("test-secret", time.Minute, time.Hour)
	handler := NewAuthHandler(new(mocks.UserDirectoryMock), tokens, jwtSvc, time.Hour, nil)
	router := setupAuthRouter(handler)

	refreshToken, err := jwtSvc.SignRefresh(5)
	require.NoError(t, err)
	tokens.On("GetByID", mock.Anything, int64(5)).
		Return(models.RefreshToken{ID: 5, UserID: 1, ExpiresAt: time.Now().Add(time.Hour)}, nil).Once()

	body, _ := json.Marshal(gin.H{"refresh_token": refreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/refreshToken", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decodeBody(t, rec)
	assert.NotEmpty(t, resp["access_token"])
	tokens.AssertExpectations(t)
}

func TestRefreshTokenNotFound(t *testing.T) {
	tokens := new(mocks.RefreshTokenRepositoryMock)
	jwtSvc := jwtauth.New("test-secret", time.Minute, time.Hour)
	handler := NewAuthHandler(new(mocks.UserDirectoryMock), tokens, jwtSvc, time.Hour, nil)
	router := setupAuthRouter(handler)

	refreshToken, err := jwtSvc.SignRefresh(99)
	require.NoError(t, err)
	tokens.On("GetByID", mock.Anything, int64(99)).Return(models.RefreshToken{}, repositories.ErrTokenNotFound).Once()

	body, _ := json.Marshal(gin.H{"refresh_token": refreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/refreshToken", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "Refresh token is not found", resp["message"])
}

func TestRefreshTokenRevoked(t *testing.T) {
	tokens := new(mocks.RefreshTokenRepositoryMock)
	jwtSvc := jwtauth.New("test-secret", time.Minute, time.Hour)
	handler := NewAuthHandler(new(mocks.UserDirectoryMock), tokens, jwtSvc, time.Hour, nil)
	router := setupAuthRouter(handler)

	refreshToken, err := jwtSvc.SignRefresh(5)
	require.NoError(t, err)
	tokens.On("GetByID", mock.Anything, int64(5)).
		Return(models.RefreshToken{ID: 5, UserID: 1, IsRevoked: true, ExpiresAt: time.Now().Add(time.Hour)}, nil).Once()

	body, _ := json.Marshal(gin.H{"refresh_token": refreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/refreshToken", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "Refresh token has been revoke", resp["message"])
}

func TestRefreshRecordExpired(t *testing.T) {
	tokens := new(mocks.RefreshTokenRepositoryMock)
	jwtSvc := jwtauth.New("test-secret", time.Minute, time.Hour)
	handler := NewAuthHandler(new(mocks.UserDirectoryMock), tokens, jwtSvc, time.Hour, nil)
	router := setupAuthRouter(handler)

	refreshToken, err := jwtSvc.SignRefresh(5)
	require.NoError(t, err)
	tokens.On("GetByID", mock.Anything, int64(5)).
		Return(models.RefreshToken{ID: 5, UserID: 1, ExpiresAt: time.Now().Add(-time.Minute)}, nil).Once()

	body, _ := json.Marshal(gin.H{"refresh_token": refreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/refreshToken", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "Refresh token expired", resp["message"])
}

func TestRefreshJWTExpired(t *testing.T) {
	expiredSigner := jwtauth.New("test-secret", time.Minute, -time.Minute)
	handler := NewAuthHandler(new(mocks.UserDirectoryMock), new(mocks.RefreshTokenRepositoryMock), jwtauth.New("test-secret", time.Minute, time.Hour), time.Hour, nil)
	router := setupAuthRouter(handler)

	refreshToken, err := expiredSigner.SignRefresh(5)
	require.NoError(t, err)

	body, _ := json.Marshal(gin.H{"refresh_token": refreshToken})
	req := httptest.NewRequest(http.MethodPost, "/api/refreshToken", bytes.NewBuffer(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "Refresh token expired", resp["message"])
}

func TestRefreshUndecodableToken(t *testing.T) {
	handler := NewAuthHandler(new(mocks.UserDirectoryMock), new(mocks.RefreshTokenRepositoryMock), jwtauth.New("test-secret", time.Minute, time.Hour), time.Hour, nil)
	router := setupAuthRouter(handler)

	req := httptest.NewRequest(http.MethodPost, "/api/refreshToken", bytes.NewBufferString(`{"refresh_token":"garbage"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeBody(t, rec)
	assert.Equal(t, "Failed to decode token", resp["message"])
}
