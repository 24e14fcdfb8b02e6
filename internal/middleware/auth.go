package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"youapp-backend/internal/models"
	"youapp-backend/internal/pkg/jwtauth"
	"youapp-backend/internal/repositories"
	"youapp-backend/internal/rpc"
)

const currentUserKey = "currentUser"

// UserResolver turns an authenticated user id into the full user record.
type UserResolver interface {
	ResolveUser(ctx context.Context, id int64) (*models.User, error)
}

// AuthMiddleware validates the Authorization header and resolves the caller
// once; handlers read the user from the context afterwards.
func AuthMiddleware(jwtSvc *jwtauth.Service, resolver UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"statusCode": http.StatusUnauthorized, "message": "missing authorization"})
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"statusCode": http.StatusUnauthorized, "message": "invalid authorization header"})
			return
		}

		userID, err := jwtSvc.ParseAccess(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"statusCode": http.StatusUnauthorized, "message": "invalid token"})
			return
		}

		user, err := resolver.ResolveUser(c.Request.Context(), userID)
		if err != nil || user == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"statusCode": http.StatusUnauthorized, "message": "Unauthorized"})
			return
		}

		c.Set(currentUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user resolved by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	val, ok := c.Get(currentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := val.(*models.User)
	return user, ok
}

// RepoUserResolver resolves users against the local store. Used inside the
// users service itself.
type RepoUserResolver struct {
	Repo repositories.UserRepository
}

func (r RepoUserResolver) ResolveUser(ctx context.Context, id int64) (*models.User, error) {
	user, err := r.Repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// RPCUserResolver resolves users over the bus with the auth-required detail
// shape. Used by services that do not own the user collection.
type RPCUserResolver struct {
	Directory rpc.UserDirectory
}

func (r RPCUserResolver) ResolveUser(ctx context.Context, id int64) (*models.User, error) {
	return r.Directory.UserDetail(ctx, id, rpc.AuthRequired)
}
