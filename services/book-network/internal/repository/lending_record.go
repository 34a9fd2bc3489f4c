package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/davidnhn/book-social-network/services/book-network/internal/model"
)

// LendingRecordRepository defines the interface for lending history operations.
type LendingRecordRepository interface {
	// CreateRecord inserts a new open lending record.
	// A second open record for the same (book, borrower) pair fails with a duplicate key error.
	CreateRecord(ctx context.Context, record *model.LendingRecord) (*model.LendingRecord, error)

	// ExistsUnreturned reports whether the borrower holds the book and has not returned it.
	ExistsUnreturned(ctx context.Context, bookID, borrowerID bson.ObjectID) (bool, error)

	// MarkReturned flips the borrower's open record to returned.
	// It returns mongo.ErrNoDocuments when no open record exists.
	MarkReturned(ctx context.Context, bookID, borrowerID bson.ObjectID) (*model.LendingRecord, error)

	// ApproveReturn approves a returned, not yet approved record of a book owned by ownerID.
	// It returns mongo.ErrNoDocuments when no such record exists.
	ApproveReturn(ctx context.Context, bookID, ownerID bson.ObjectID) (*model.LendingRecord, error)

	ListByBorrower(ctx context.Context, borrowerID bson.ObjectID, params ListParams) ([]*model.LendingRecord, int64, error)
	ListReturnedByOwner(ctx context.Context, ownerID bson.ObjectID, params ListParams) ([]*model.LendingRecord, int64, error)
}

const lendingRecordCollection = "book_transaction_histories"

type lendingRecordMongoRepository struct {
	db *mongo.Database
}

// NewLendingRecordMongoRepository creates the repository and its indexes.
// The partial unique index allows at most one unreturned record per (book, borrower).
func NewLendingRecordMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) LendingRecordRepository {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "book_id", Value: 1}, {Key: "borrower_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"returned": false}).
				SetName("one_open_lending_per_borrower"),
		},
		{
			Keys: bson.D{{Key: "borrower_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "book_owner_id", Value: 1}, {Key: "returned", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}

	if _, err := db.Collection(lendingRecordCollection).Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create lending record indexes")
	}

	return &lendingRecordMongoRepository{db: db}
}

func (r *lendingRecordMongoRepository) CreateRecord(
	ctx context.Context,
	record *model.LendingRecord,
) (*model.LendingRecord, error) {
	now := time.Now()
	record.CreatedAt = now
	record.UpdatedAt = now
	record.Returned = false
	record.ReturnApproved = false

	result, err := r.db.Collection(lendingRecordCollection).InsertOne(ctx, record)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		record.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return record, nil
}

func (r *lendingRecordMongoRepository) ExistsUnreturned(
	ctx context.Context,
	bookID, borrowerID bson.ObjectID,
) (bool, error) {
	filter := bson.M{
		"book_id":     bookID,
		"borrower_id": borrowerID,
		"returned":    false,
	}

	count, err := r.db.Collection(lendingRecordCollection).CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *lendingRecordMongoRepository) MarkReturned(
	ctx context.Context,
	bookID, borrowerID bson.ObjectID,
) (*model.LendingRecord, error) {
	filter := bson.M{
		"book_id":         bookID,
		"borrower_id":     borrowerID,
		"returned":        false,
		"return_approved": false,
	}
	update := bson.M{
		"$set": bson.M{
			"returned":   true,
			"updated_at": time.Now(),
		},
	}

	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *lendingRecordMongoRepository) ApproveReturn(
	ctx context.Context,
	bookID, ownerID bson.ObjectID,
) (*model.LendingRecord, error) {
	filter := bson.M{
		"book_id":         bookID,
		"book_owner_id":   ownerID,
		"returned":        true,
		"return_approved": false,
	}
	update := bson.M{
		"$set": bson.M{
			"return_approved": true,
			"updated_at":      time.Now(),
		},
	}

	return r.findOneAndUpdate(ctx, filter, update)
}

func (r *lendingRecordMongoRepository) findOneAndUpdate(
	ctx context.Context,
	filter, update bson.M,
) (*model.LendingRecord, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetSort(bson.D{{Key: "created_at", Value: 1}})

	var record model.LendingRecord
	err := r.db.Collection(lendingRecordCollection).FindOneAndUpdate(ctx, filter, update, opts).Decode(&record)
	if err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *lendingRecordMongoRepository) ListByBorrower(
	ctx context.Context,
	borrowerID bson.ObjectID,
	params ListParams,
) ([]*model.LendingRecord, int64, error) {
	return r.list(ctx, bson.M{"borrower_id": borrowerID}, params)
}

func (r *lendingRecordMongoRepository) ListReturnedByOwner(
	ctx context.Context,
	ownerID bson.ObjectID,
	params ListParams,
) ([]*model.LendingRecord, int64, error) {
	return r.list(ctx, bson.M{"book_owner_id": ownerID, "returned": true}, params)
}

func (r *lendingRecordMongoRepository) list(
	ctx context.Context,
	filter bson.M,
	params ListParams,
) ([]*model.LendingRecord, int64, error) {
	collection := r.db.Collection(lendingRecordCollection)

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := collection.Find(ctx, filter, params.findOptions())
	if err != nil {
		return nil, 0, err
	}

	var records []*model.LendingRecord
	if err := cursor.All(ctx, &records); err != nil {
		return nil, 0, err
	}

	return records, total, nil
}
