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

// BookRepository defines the interface for book-related database operations.
type BookRepository interface {
	CreateBook(ctx context.Context, book *model.Book) (*model.Book, error)
	GetBook(ctx context.Context, id bson.ObjectID) (*model.Book, error)
	GetBooks(ctx context.Context, ids []bson.ObjectID) ([]*model.Book, error)
	UpdateBook(ctx context.Context, id bson.ObjectID, params UpdateBookParams) (*model.Book, error)

	// ToggleFlag negates flag on the book owned by ownerID in a single write.
	ToggleFlag(ctx context.Context, id, ownerID bson.ObjectID, flag BookFlag) (*model.Book, error)

	// ListDisplayableBooks lists shareable, non-archived books not owned by userID.
	ListDisplayableBooks(ctx context.Context, userID bson.ObjectID, params ListParams) ([]*model.Book, int64, error)
	ListBooksByOwner(ctx context.Context, ownerID bson.ObjectID, params ListParams) ([]*model.Book, int64, error)
}

// UpdateBookParams defines the optional parameters for updating a book.
// Only the fields that are not nil will be updated.
type UpdateBookParams struct {
	BookCover *bson.ObjectID
}

// BookFlag names a boolean book field the owner can flip.
type BookFlag string

const (
	BookShareable BookFlag = "shareable"
	BookArchived  BookFlag = "archived"
)

const bookCollection = "books"

type bookMongoRepository struct {
	db *mongo.Database
}

func NewBookMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) BookRepository {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "shareable", Value: 1}, {Key: "archived", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}

	if _, err := db.Collection(bookCollection).Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create book indexes")
	}

	return &bookMongoRepository{db: db}
}

func (r *bookMongoRepository) CreateBook(ctx context.Context, book *model.Book) (*model.Book, error) {
	now := time.Now()
	book.CreatedAt = now
	book.UpdatedAt = now

	result, err := r.db.Collection(bookCollection).InsertOne(ctx, book)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		book.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return book, nil
}

func (r *bookMongoRepository) GetBook(ctx context.Context, id bson.ObjectID) (*model.Book, error) {
	var book model.Book
	if err := r.db.Collection(bookCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&book); err != nil {
		return nil, err
	}

	return &book, nil
}

func (r *bookMongoRepository) GetBooks(ctx context.Context, ids []bson.ObjectID) ([]*model.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cursor, err := r.db.Collection(bookCollection).Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}

	var books []*model.Book
	if err := cursor.All(ctx, &books); err != nil {
		return nil, err
	}

	return books, nil
}

func (r *bookMongoRepository) UpdateBook(
	ctx context.Context,
	id bson.ObjectID,
	params UpdateBookParams,
) (*model.Book, error) {
	updateMap := bson.M{}
	if params.BookCover != nil {
		updateMap["book_cover"] = *params.BookCover
	}

	if len(updateMap) == 0 {
		return nil, errors.New("no book fields to update")
	}

	updateMap["updated_at"] = time.Now()

	result := r.db.Collection(bookCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": updateMap},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var book model.Book
	if err := result.Decode(&book); err != nil {
		return nil, err
	}

	return &book, nil
}

// ToggleFlag uses an update pipeline so the new value is computed from the stored one.
func (r *bookMongoRepository) ToggleFlag(
	ctx context.Context,
	id, ownerID bson.ObjectID,
	flag BookFlag,
) (*model.Book, error) {
	field := string(flag)
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.D{
			{Key: field, Value: bson.D{{Key: "$not", Value: bson.A{"$" + field}}}},
			{Key: "updated_at", Value: "$$NOW"},
		}}},
	}

	result := r.db.Collection(bookCollection).FindOneAndUpdate(
		ctx,
		bson.M{"_id": id, "owner_id": ownerID},
		pipeline,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	)

	var book model.Book
	if err := result.Decode(&book); err != nil {
		return nil, err
	}

	return &book, nil
}

func (r *bookMongoRepository) ListDisplayableBooks(
	ctx context.Context,
	userID bson.ObjectID,
	params ListParams,
) ([]*model.Book, int64, error) {
	filter := bson.M{
		"archived":  false,
		"shareable": true,
		"owner_id":  bson.M{"$ne": userID},
	}

	return r.list(ctx, filter, params)
}

func (r *bookMongoRepository) ListBooksByOwner(
	ctx context.Context,
	ownerID bson.ObjectID,
	params ListParams,
) ([]*model.Book, int64, error) {
	return r.list(ctx, bson.M{"owner_id": ownerID}, params)
}

func (r *bookMongoRepository) list(ctx context.Context, filter bson.M, params ListParams) ([]*model.Book, int64, error) {
	collection := r.db.Collection(bookCollection)

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := collection.Find(ctx, filter, params.findOptions())
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var books []*model.Book
	for cursor.Next(ctx) {
		var book model.Book
		if err := cursor.Decode(&book); err != nil {
			return nil, 0, err
		}
		books = append(books, &book)
	}

	if err := cursor.Err(); err != nil {
		return nil, 0, err
	}

	return books, total, nil
}
