package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Feedback is a rating left on a book by a reader.
type Feedback struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	BookID    bson.ObjectID `bson:"book_id"`
	Note      float64       `bson:"note"`
	Comment   string        `bson:"comment"`
	CreatedBy bson.ObjectID `bson:"created_by"`
	CreatedAt time.Time     `bson:"created_at"`
}
