package database

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Lookup describes a one-to-one join on a foreign key.
type Lookup struct {
	From         string
	LocalField   string
	ForeignField string
	As           string
}

// JoinQuery is the input of JoinedPage.
type JoinQuery struct {
	Match   bson.M
	Lookup  Lookup
	Project bson.M
	Sort    bson.D
	Page    int
	Limit   int
}

// Pipeline builds match → lookup → unwind → project → sort → skip → limit.
// The unwind keeps documents whose foreign record is missing.
func (q JoinQuery) Pipeline() mongo.Pipeline {
	match := q.Match
	if match == nil {
		match = bson.M{}
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: q.Lookup.From},
			{Key: "localField", Value: q.Lookup.LocalField},
			{Key: "foreignField", Value: q.Lookup.ForeignField},
			{Key: "as", Value: q.Lookup.As},
		}}},
		{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$" + q.Lookup.As},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}

	if len(q.Project) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: q.Project}})
	}
	if len(q.Sort) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$sort", Value: q.Sort}})
	}
	if q.Limit > 0 {
		page := q.Page
		if page < 1 {
			page = 1
		}
		pipeline = append(pipeline,
			bson.D{{Key: "$skip", Value: int64((page - 1) * q.Limit)}},
			bson.D{{Key: "$limit", Value: int64(q.Limit)}},
		)
	}

	return pipeline
}

// JoinedPage runs q against c, decoding joined rows as V, and returns them
// with the total count of documents matching q.Match.
func JoinedPage[V any, T any](ctx context.Context, c *Collection[T], q JoinQuery) ([]*V, int64, error) {
	items := make([]*V, 0)
	if err := c.Aggregate(ctx, q.Pipeline(), &items); err != nil {
		return nil, 0, err
	}

	total, err := c.Count(ctx, q.Match)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}
