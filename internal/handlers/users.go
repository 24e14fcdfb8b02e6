package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"youapp-backend/internal/models"
	"youapp-backend/internal/pkg/horoscope"
	"youapp-backend/internal/pkg/passwords"
	"youapp-backend/internal/repositories"
	"youapp-backend/internal/telemetry"
)

const maxProfilePictureBytes = 5 << 20

var (
	heightPattern = regexp.MustCompile(`^\d+(\.\d+)?\s(cm|in)$`)
	weightPattern = regexp.MustCompile(`^\d+(\.\d+)?\s(kg|lbs)$`)
)

// UsersHandler serves profile CRUD and the horoscope lookup.
type UsersHandler struct {
	repo       repositories.UserRepository
	storageDir string
	audit      *telemetry.AuditEmitter
}

// NewUsersHandler builds a UsersHandler.
func NewUsersHandler(repo repositories.UserRepository, storageDir string, audit *telemetry.AuditEmitter) *UsersHandler {
	return &UsersHandler{repo: repo, storageDir: storageDir, audit: audit}
}

// Welcome is the health string.
func (h *UsersHandler) Welcome(c *gin.Context) {
	c.String(http.StatusOK, "Welcome to Users API!")
}

// Register creates a user. Username and email are normalized to lowercase and
// the email conflict is reported before the username conflict.
func (h *UsersHandler) Register(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,min=3"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	username := strings.ToLower(req.Username)
	email := strings.ToLower(req.Email)

	emailTaken, err := h.repo.EmailExists(c.Request.Context(), email)
	if err != nil {
		fail(c, http.StatusInternalServerError, "could not check email")
		return
	}
	if emailTaken {
		fail(c, http.StatusConflict, "Email already taken")
		return
	}
	usernameTaken, err := h.repo.UsernameExists(c.Request.Context(), username)
	if err != nil {
		fail(c, http.StatusInternalServerError, "could not check username")
		return
	}
	if usernameTaken {
		fail(c, http.StatusConflict, "Username already taken")
		return
	}

	salt, err := passwords.GenerateSalt()
	if err != nil {
		fail(c, http.StatusInternalServerError, "could not create user")
		return
	}

	user, err := h.repo.Create(c.Request.Context(), models.User{
		Username: username,
		Email:    email,
		Password: passwords.Hash(req.Password, salt),
		Salt:     salt,
		// The interests column is NOT NULL; a nil array would bind as SQL NULL.
		Interests: pq.StringArray{},
	})
	if err != nil {
		// Backstop for the insert race behind the explicit checks.
		if errors.Is(err, repositories.ErrEmailTaken) {
			fail(c, http.StatusConflict, "Email already taken")
			return
		}
		if errors.Is(err, repositories.ErrUsernameTaken) {
			fail(c, http.StatusConflict, "Username already taken")
			return
		}
		fail(c, http.StatusInternalServerError, "could not create user")
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", "user registered", requestIDFromContext(c), auditUserID(&user))
	c.JSON(http.StatusCreated, gin.H{"statusCode": http.StatusCreated, "data": user})
}

// GetProfile returns a user by id, inlining the stored profile picture as
// base64 file content.
func (h *UsersHandler) GetProfile(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}

	user, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			fail(c, http.StatusNotFound, fmt.Sprintf("User with id %d is not found", id))
			return
		}
		fail(c, http.StatusInternalServerError, "could not load user")
		return
	}

	if user.ProfilePicture != "" {
		raw, err := os.ReadFile(filepath.Join(h.storageDir, user.ProfilePicture))
		if err == nil {
			user.ProfilePicture = base64.StdEncoding.EncodeToString(raw)
		}
	}

	c.JSON(http.StatusOK, gin.H{"statusCode": http.StatusOK, "data": user})
}

// CreateProfile derives horoscope and zodiac from a birth date.
func (h *UsersHandler) CreateProfile(c *gin.Context) {
	raw := c.Query("date_of_birth")
	if raw == "" {
		fail(c, http.StatusBadRequest, "date_of_birth is required")
		return
	}
	birthDate, err := time.Parse("2006-01-02", raw)
	if err != nil {
		fail(c, http.StatusBadRequest, "date_of_birth must be a valid date (YYYY-MM-DD)")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"statusCode": http.StatusOK,
		"data": gin.H{
			"horoscope": horoscope.Sign(birthDate),
			"zodiac":    horoscope.Zodiac(birthDate),
		},
	})
}

type updateProfileRequest struct {
	Name        *string  `form:"name" json:"name"`
	Gender      *string  `form:"gender" json:"gender"`
	DateOfBirth *string  `form:"date_of_birth" json:"date_of_birth"`
	Horoscope   *string  `form:"horoscope" json:"horoscope"`
	Zodiac      *string  `form:"zodiac" json:"zodiac"`
	Height      *string  `form:"height" json:"height"`
	Weight      *string  `form:"weight" json:"weight"`
	Interests   []string `form:"interests" json:"interests"`
}

// UpdateProfile patches the caller's own profile. Only fields present in the
// request are applied; an uploaded picture must be an image of at most 5MB.
func (h *UsersHandler) UpdateProfile(c *gin.Context) {
	id, ok := parseUserID(c)
	if !ok {
		return
	}
	caller, ok := currentUser(c)
	if !ok {
		return
	}
	if caller.ID != id {
		fail(c, http.StatusUnauthorized, "You can only update your own profile")
		return
	}

	user, err := h.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			fail(c, http.StatusNotFound, fmt.Sprintf("User with id %d is not found", id))
			return
		}
		fail(c, http.StatusInternalServerError, "could not load user")
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.Height != nil && !heightPattern.MatchString(*req.Height) {
		fail(c, http.StatusBadRequest, "Invalid height format. Use cm or in.")
		return
	}
	if req.Weight != nil && !weightPattern.MatchString(*req.Weight) {
		fail(c, http.StatusBadRequest, "Invalid weight format. Use kg or lbs.")
		return
	}

	applyPatch(&user, req)

	if file, err := c.FormFile("profilePicture"); err == nil && file != nil {
		filename, err := h.storeProfilePicture(c, id, file)
		if err != nil {
			return // response already written
		}
		user.ProfilePicture = filename
	}

	updated, err := h.repo.Update(c.Request.Context(), user)
	if err != nil {
		fail(c, http.StatusInternalServerError, "could not update user")
		return
	}

	c.JSON(http.StatusOK, gin.H{"statusCode": http.StatusOK, "data": updated})
}

func applyPatch(user *models.User, req updateProfileRequest) {
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Gender != nil {
		user.Gender = *req.Gender
	}
	if req.DateOfBirth != nil {
		user.DateOfBirth = *req.DateOfBirth
	}
	if req.Horoscope != nil {
		user.Horoscope = *req.Horoscope
	}
	if req.Zodiac != nil {
		user.Zodiac = *req.Zodiac
	}
	if req.Height != nil {
		user.Height = *req.Height
	}
	if req.Weight != nil {
		user.Weight = *req.Weight
	}
	if req.Interests != nil {
		user.Interests = req.Interests
	}
}

// storeProfilePicture validates and writes the upload, naming the file after
// the user id plus the original extension. On failure it writes the error
// response and returns a non-nil error.
func (h *UsersHandler) storeProfilePicture(c *gin.Context, userID int64, file *multipart.FileHeader) (string, error) {
	if file.Size > maxProfilePictureBytes {
		fail(c, http.StatusBadRequest, "expected size is less than 5MB")
		return "", errors.New("file too large")
	}
	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image") {
		fail(c, http.StatusBadRequest, "Uploaded file must be an image")
		return "", errors.New("not an image")
	}

	if err := os.MkdirAll(h.storageDir, 0o755); err != nil {
		fail(c, http.StatusInternalServerError, "could not store file")
		return "", err
	}
	filename := strconv.FormatInt(userID, 10) + filepath.Ext(file.Filename)
	if err := c.SaveUploadedFile(file, filepath.Join(h.storageDir, filename)); err != nil {
		fail(c, http.StatusInternalServerError, "could not store file")
		return "", err
	}
	return filename, nil
}

func parseUserID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		fail(c, http.StatusBadRequest, "Param id must be a valid user id")
		return 0, false
	}
	return id, true
}
