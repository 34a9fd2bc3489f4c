package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// User represents a registered account.
type User struct {
	ID            bson.ObjectID `bson:"_id,omitempty"`
	Firstname     string        `bson:"firstname"`
	Lastname      string        `bson:"lastname"`
	DateOfBirth   *time.Time    `bson:"date_of_birth,omitempty"`
	Email         string        `bson:"email"`
	PasswordHash  string        `bson:"password_hash"`
	AccountLocked bool          `bson:"account_locked"`
	Enabled       bool          `bson:"enabled"`
	Roles         []string      `bson:"roles"`
	CreatedAt     time.Time     `bson:"created_at"`
	UpdatedAt     time.Time     `bson:"updated_at"`
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return u.Firstname + " " + u.Lastname
}
