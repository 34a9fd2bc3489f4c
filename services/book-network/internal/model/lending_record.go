package model

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// LendingState is the position of a (book, borrower) pair in the lending cycle.
type LendingState string

const (
	LendingAvailable      LendingState = "AVAILABLE"
	LendingBorrowed       LendingState = "BORROWED"
	LendingReturned       LendingState = "RETURNED"
	LendingReturnApproved LendingState = "RETURN_APPROVED"
)

// LendingRecord tracks one borrow-to-approval cycle for a (book, borrower) pair.
type LendingRecord struct {
	ID             bson.ObjectID `bson:"_id,omitempty"`
	BookID         bson.ObjectID `bson:"book_id"`
	BookOwnerID    bson.ObjectID `bson:"book_owner_id"`
	BorrowerID     bson.ObjectID `bson:"borrower_id"`
	Returned       bool          `bson:"returned"`
	ReturnApproved bool          `bson:"return_approved"`
	CreatedAt      time.Time     `bson:"created_at"`
	UpdatedAt      time.Time     `bson:"updated_at"`
}

// State derives the lending state from the record flags.
func (r *LendingRecord) State() LendingState {
	switch {
	case r == nil:
		return LendingAvailable
	case r.ReturnApproved:
		return LendingReturnApproved
	case r.Returned:
		return LendingReturned
	default:
		return LendingBorrowed
	}
}
