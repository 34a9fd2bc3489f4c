package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/davidnhn/book-social-network/services/book-network/internal/model"
)

// FeedbackRepository defines the interface for feedback-related database operations.
type FeedbackRepository interface {
	CreateFeedback(ctx context.Context, feedback *model.Feedback) (*model.Feedback, error)
	ListByBook(ctx context.Context, bookID bson.ObjectID, params ListParams) ([]*model.Feedback, int64, error)

	// AverageNotes returns the mean note per book. Books without feedback are absent from the map.
	AverageNotes(ctx context.Context, bookIDs []bson.ObjectID) (map[bson.ObjectID]float64, error)
}

const feedbackCollection = "feedbacks"

type feedbackMongoRepository struct {
	db *mongo.Database
}

func NewFeedbackMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) FeedbackRepository {
	index := mongo.IndexModel{
		Keys: bson.D{{Key: "book_id", Value: 1}, {Key: "created_at", Value: -1}},
	}

	if _, err := db.Collection(feedbackCollection).Indexes().CreateOne(ctx, index); err != nil {
		logger.Fatal().Err(err).Msg("failed to create feedback indexes")
	}

	return &feedbackMongoRepository{db: db}
}

func (r *feedbackMongoRepository) CreateFeedback(ctx context.Context, feedback *model.Feedback) (*model.Feedback, error) {
	feedback.CreatedAt = time.Now()

	result, err := r.db.Collection(feedbackCollection).InsertOne(ctx, feedback)
	if err != nil {
		return nil, err
	}

	if objectID, ok := result.InsertedID.(bson.ObjectID); ok {
		feedback.ID = objectID
	} else {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}

	return feedback, nil
}

func (r *feedbackMongoRepository) ListByBook(
	ctx context.Context,
	bookID bson.ObjectID,
	params ListParams,
) ([]*model.Feedback, int64, error) {
	collection := r.db.Collection(feedbackCollection)
	filter := bson.M{"book_id": bookID}

	total, err := collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := collection.Find(ctx, filter, params.findOptions())
	if err != nil {
		return nil, 0, err
	}

	var feedbacks []*model.Feedback
	if err := cursor.All(ctx, &feedbacks); err != nil {
		return nil, 0, err
	}

	return feedbacks, total, nil
}

func (r *feedbackMongoRepository) AverageNotes(
	ctx context.Context,
	bookIDs []bson.ObjectID,
) (map[bson.ObjectID]float64, error) {
	averages := make(map[bson.ObjectID]float64, len(bookIDs))
	if len(bookIDs) == 0 {
		return averages, nil
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"book_id": bson.M{"$in": bookIDs}}}},
		{{Key: "$group", Value: bson.M{"_id": "$book_id", "average": bson.M{"$avg": "$note"}}}},
	}

	cursor, err := r.db.Collection(feedbackCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		BookID  bson.ObjectID `bson:"_id"`
		Average float64       `bson:"average"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}

	for _, row := range rows {
		averages[row.BookID] = row.Average
	}

	return averages, nil
}
