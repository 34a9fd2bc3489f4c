package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// RoleUser is granted to every account at registration.
const RoleUser = "USER"

// Role is a named authority.
type Role struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	CreatedAt time.Time     `bson:"created_at"`
}
