package repository

import (
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ListParams defines pagination for list queries. Results are ordered newest first.
type ListParams struct {
	Limit  uint64
	Offset uint64
}

const defaultListLimit = 10

func (p ListParams) findOptions() *options.FindOptionsBuilder {
	limit := p.Limit
	if limit == 0 {
		limit = defaultListLimit
	}

	findOptions := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	if p.Offset > 0 {
		findOptions.SetSkip(int64(p.Offset))
	}

	return findOptions
}
