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

// ActivationTokenRepository defines the interface for activation token operations.
type ActivationTokenRepository interface {
	// CreateToken creates a new activation token.
	CreateToken(ctx context.Context, token *model.ActivationToken) (*model.ActivationToken, error)

	// GetTokenByCode retrieves the pending token carrying code, or else the most
	// recently created one.
	GetTokenByCode(ctx context.Context, code string) (*model.ActivationToken, error)

	// IsCodePending reports whether a pending token already carries code.
	IsCodePending(ctx context.Context, code string) (bool, error)

	// MarkTokenAsValidated sets validated_at and releases the code if it is still pending.
	// It reports whether this call performed the update.
	MarkTokenAsValidated(ctx context.Context, id bson.ObjectID, at time.Time) (bool, error)
}

const activationTokenCollection = "activation_tokens"

type activationTokenMongoRepository struct {
	db *mongo.Database
}

// NewActivationTokenMongoRepository creates a new MongoDB repository for activation tokens.
// Expired tokens are kept: presenting one triggers a re-issue, so no TTL index is created.
// An expired token keeps its code pending, so the code is never handed to another account
// while its holder may still present it.
func NewActivationTokenMongoRepository(
	ctx context.Context,
	logger *zerolog.Logger,
	db *mongo.Database,
) ActivationTokenRepository {
	collection := db.Collection(activationTokenCollection)

	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "token", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "token", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"pending": true}).
				SetName("one_pending_token_per_code"),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create activation token indexes")
	}

	return &activationTokenMongoRepository{
		db: db,
	}
}

func (r *activationTokenMongoRepository) CreateToken(
	ctx context.Context,
	token *model.ActivationToken,
) (*model.ActivationToken, error) {
	token.ValidatedAt = nil
	token.Pending = true

	result, err := r.db.Collection(activationTokenCollection).InsertOne(ctx, token)
	if err != nil {
		return nil, err
	}

	objectID, ok := result.InsertedID.(bson.ObjectID)
	if !ok || objectID.IsZero() {
		return nil, errors.New("failed to convert inserted ID to ObjectID")
	}
	token.ID = objectID

	return token, nil
}

func (r *activationTokenMongoRepository) GetTokenByCode(
	ctx context.Context,
	code string,
) (*model.ActivationToken, error) {
	filter := bson.M{"token": code}
	opts := options.FindOne().SetSort(bson.D{{Key: "pending", Value: -1}, {Key: "created_at", Value: -1}})

	var token model.ActivationToken
	err := r.db.Collection(activationTokenCollection).FindOne(ctx, filter, opts).Decode(&token)
	if err != nil {
		return nil, err
	}

	return &token, nil
}

func (r *activationTokenMongoRepository) IsCodePending(ctx context.Context, code string) (bool, error) {
	count, err := r.db.Collection(activationTokenCollection).CountDocuments(
		ctx,
		bson.M{"token": code, "pending": true},
		options.Count().SetLimit(1),
	)
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *activationTokenMongoRepository) MarkTokenAsValidated(
	ctx context.Context,
	id bson.ObjectID,
	at time.Time,
) (bool, error) {
	filter := bson.M{
		"_id":          id,
		"pending":      true,
		"validated_at": bson.M{"$exists": false},
	}
	update := bson.M{
		"$set": bson.M{
			"validated_at": at,
			"pending":      false,
		},
	}

	result, err := r.db.Collection(activationTokenCollection).UpdateOne(ctx, filter, update)
	if err != nil {
		return false, err
	}

	return result.ModifiedCount == 1, nil
}
