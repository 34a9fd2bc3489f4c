package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Book is a physical book a user offers to the network.
type Book struct {
	ID         bson.ObjectID  `bson:"_id,omitempty"`
	Title      string         `bson:"title"`
	AuthorName string         `bson:"author_name"`
	ISBN       string         `bson:"isbn"`
	Synopsis   string         `bson:"synopsis"`
	BookCover  *bson.ObjectID `bson:"book_cover,omitempty"`
	Archived   bool           `bson:"archived"`
	Shareable  bool           `bson:"shareable"`
	OwnerID    bson.ObjectID  `bson:"owner_id"`
	CreatedBy  bson.ObjectID  `bson:"created_by"`
	CreatedAt  time.Time      `bson:"created_at"`
	UpdatedAt  time.Time      `bson:"updated_at"`
}
