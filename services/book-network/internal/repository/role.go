package repository

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/davidnhn/book-social-network/services/book-network/internal/model"
)

// RoleRepository defines the interface for role lookups.
type RoleRepository interface {
	// EnsureRole creates the named role if it does not exist yet.
	EnsureRole(ctx context.Context, name string) (*model.Role, error)
	GetRoleByName(ctx context.Context, name string) (*model.Role, error)
}

const roleCollection = "roles"

type roleMongoRepository struct {
	db *mongo.Database
}

func NewRoleMongoRepository(ctx context.Context, logger *zerolog.Logger, db *mongo.Database) RoleRepository {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	if _, err := db.Collection(roleCollection).Indexes().CreateMany(ctx, indexes); err != nil {
		logger.Fatal().Err(err).Msg("failed to create role indexes")
	}

	return &roleMongoRepository{db: db}
}

func (r *roleMongoRepository) EnsureRole(ctx context.Context, name string) (*model.Role, error) {
	result := r.db.Collection(roleCollection).FindOneAndUpdate(
		ctx,
		bson.M{"name": name},
		bson.M{"$setOnInsert": bson.M{"name": name, "created_at": time.Now()}},
		options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After),
	)

	var role model.Role
	if err := result.Decode(&role); err != nil {
		return nil, err
	}

	return &role, nil
}

func (r *roleMongoRepository) GetRoleByName(ctx context.Context, name string) (*model.Role, error) {
	var role model.Role
	if err := r.db.Collection(roleCollection).FindOne(ctx, bson.M{"name": name}).Decode(&role); err != nil {
		return nil, err
	}

	return &role, nil
}
