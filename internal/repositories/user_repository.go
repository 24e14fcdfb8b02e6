package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"youapp-backend/internal/models"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrEmailTaken    = errors.New("email already taken")
	ErrUsernameTaken = errors.New("username already taken")
)

// UserRepository abstracts user persistence.
type UserRepository interface {
	Create(ctx context.Context, user models.User) (models.User, error)
	GetByID(ctx context.Context, id int64) (models.User, error)
	GetByIdentity(ctx context.Context, identity string) (models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	Update(ctx context.Context, user models.User) (models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userColumns = `id, username, email, password, salt, name, gender, date_of_birth,
    horoscope, zodiac, height, weight, profile_picture, interests, created_at`

// Create inserts a new user. Unique violations are mapped to the conflict
// sentinels as a backstop behind the explicit existence checks.
func (r *UserRepo) Create(ctx context.Context, user models.User) (models.User, error) {
	query := `INSERT INTO users (username, email, password, salt, name, gender, date_of_birth,
            horoscope, zodiac, height, weight, profile_picture, interests)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
        RETURNING id, created_at`
	err := r.db.QueryRowxContext(ctx, query,
		user.Username, user.Email, user.Password, user.Salt, user.Name, user.Gender,
		user.DateOfBirth, user.Horoscope, user.Zodiac, user.Height, user.Weight,
		user.ProfilePicture, user.Interests,
	).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		return models.User{}, mapUniqueViolation(err)
	}
	return user, nil
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetByIdentity matches by username or email, as stored. Both are normalized
// to lowercase at registration time.
func (r *UserRepo) GetByIdentity(ctx context.Context, identity string) (models.User, error) {
	var user models.User
	query := `SELECT ` + userColumns + ` FROM users WHERE username=$1 OR email=$1`
	err := r.db.GetContext(ctx, &user, query, identity)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// EmailExists reports a case-insensitive email match.
func (r *UserRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email)=LOWER($1))`, email)
	return exists, err
}

// UsernameExists reports a case-insensitive username match.
func (r *UserRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(username)=LOWER($1))`, username)
	return exists, err
}

// Update persists the mutable profile fields.
func (r *UserRepo) Update(ctx context.Context, user models.User) (models.User, error) {
	query := `UPDATE users SET name=$2, gender=$3, date_of_birth=$4, horoscope=$5, zodiac=$6,
            height=$7, weight=$8, profile_picture=$9, interests=$10
        WHERE id=$1`
	res, err := r.db.ExecContext(ctx, query,
		user.ID, user.Name, user.Gender, user.DateOfBirth, user.Horoscope, user.Zodiac,
		user.Height, user.Weight, user.ProfilePicture, user.Interests,
	)
	if err != nil {
		return models.User{}, err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return models.User{}, err
	}
	if count == 0 {
		return models.User{}, ErrUserNotFound
	}
	return user, nil
}

func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgerrcode.UniqueViolation {
		if pqErr.Constraint == "users_email_key" {
			return ErrEmailTaken
		}
		return ErrUsernameTaken
	}
	return err
}
