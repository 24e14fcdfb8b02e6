package models

import (
	"time"

	"github.com/lib/pq"
)

// User is the profile document owned by the users service. Password and salt
// are never serialized to clients or onto the bus.
type User struct {
	ID             int64          `db:"id" json:"id"`
	Username       string         `db:"username" json:"username"`
	Email          string         `db:"email" json:"email"`
	Password       string         `db:"password" json:"-"`
	Salt           string         `db:"salt" json:"-"`
	Name           string         `db:"name" json:"name,omitempty"`
	Gender         string         `db:"gender" json:"gender,omitempty"`
	DateOfBirth    string         `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Horoscope      string         `db:"horoscope" json:"horoscope,omitempty"`
	Zodiac         string         `db:"zodiac" json:"zodiac,omitempty"`
	Height         string         `db:"height" json:"height,omitempty"`
	Weight         string         `db:"weight" json:"weight,omitempty"`
	ProfilePicture string         `db:"profile_picture" json:"profilePicture,omitempty"`
	Interests      pq.StringArray `db:"interests" json:"interests"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
}

// PublicUser is the minimal profile denormalized onto message responses.
type PublicUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
}

// Public strips the user down to the fields shared with other services.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Email: u.Email, Name: u.Name}
}
