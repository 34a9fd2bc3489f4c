package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ActivationToken is a short-lived numeric code proving control of the registered email.
type ActivationToken struct {
	ID          bson.ObjectID `bson:"_id,omitempty"`
	Token       string        `bson:"token"`
	UserID      bson.ObjectID `bson:"user_id"`
	CreatedAt   time.Time     `bson:"created_at"`
	ExpiresAt   time.Time     `bson:"expires_at"`
	ValidatedAt *time.Time    `bson:"validated_at,omitempty"`

	// Pending holds the code until it is validated. At most one pending token carries a given code.
	Pending bool `bson:"pending"`
}

// IsExpired reports whether the code can no longer be used at now.
func (t *ActivationToken) IsExpired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// IsValidated reports whether the code was already consumed.
func (t *ActivationToken) IsValidated() bool {
	return t.ValidatedAt != nil
}
