package database

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Collection is a typed view over a Mongo collection. Every write stamps
// createdAt/updatedAt and every error is mapped and wrapped with the
// collection name and the failing operation.
type Collection[T any] struct {
	coll *mongo.Collection
	now  func() time.Time
}

func NewCollection[T any](db *mongo.Database, name string) *Collection[T] {
	return &Collection[T]{
		coll: db.Collection(name),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (c *Collection[T]) Name() string {
	return c.coll.Name()
}

// Raw exposes the underlying driver collection.
func (c *Collection[T]) Raw() *mongo.Collection {
	return c.coll
}

// FindOptions controls paging and ordering of Find. Limit 0 returns everything.
type FindOptions struct {
	Page       int
	Limit      int
	Sort       bson.D
	Projection bson.M
}

// Find returns the requested page and the total number of matching documents.
func (c *Collection[T]) Find(ctx context.Context, filter interface{}, opts FindOptions) ([]*T, int64, error) {
	filter = orEmpty(filter)

	findOpts := options.Find()
	if len(opts.Sort) > 0 {
		findOpts.SetSort(opts.Sort)
	}
	if opts.Projection != nil {
		findOpts.SetProjection(opts.Projection)
	}
	if opts.Limit > 0 {
		page := opts.Page
		if page < 1 {
			page = 1
		}
		findOpts.SetSkip(int64((page - 1) * opts.Limit)).SetLimit(int64(opts.Limit))
	}

	cur, err := c.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, wrapError(c.Name(), "find", err)
	}
	defer cur.Close(ctx)

	items := make([]*T, 0)
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, wrapError(c.Name(), "find", err)
	}

	total, err := c.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (c *Collection[T]) FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) (*T, error) {
	var doc T
	if err := c.coll.FindOne(ctx, filter, opts...).Decode(&doc); err != nil {
		return nil, wrapError(c.Name(), "find one", err)
	}
	return &doc, nil
}

func (c *Collection[T]) FindByID(ctx context.Context, id string) (*T, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return c.FindOne(ctx, bson.M{"_id": oid})
}

// Insert stores doc with createdAt = updatedAt = now and returns its id.
func (c *Collection[T]) Insert(ctx context.Context, doc interface{}) (primitive.ObjectID, error) {
	m, err := toDocument(doc)
	if err != nil {
		return primitive.NilObjectID, wrapError(c.Name(), "insert", err)
	}

	now := c.now()
	m["createdAt"] = now
	m["updatedAt"] = now

	res, err := c.coll.InsertOne(ctx, m)
	if err != nil {
		return primitive.NilObjectID, wrapError(c.Name(), "insert", err)
	}

	oid, _ := res.InsertedID.(primitive.ObjectID)
	return oid, nil
}

// UpdateOne applies update to the first match. Plain field maps are treated as $set.
func (c *Collection[T]) UpdateOne(ctx context.Context, filter interface{}, update bson.M, upsert bool) (*mongo.UpdateResult, error) {
	res, err := c.coll.UpdateOne(ctx, filter, c.stamp(update, upsert), options.Update().SetUpsert(upsert))
	if err != nil {
		return nil, wrapError(c.Name(), "update", err)
	}
	return res, nil
}

func (c *Collection[T]) UpdateByID(ctx context.Context, id string, update bson.M) (*mongo.UpdateResult, error) {
	oid, err := ParseID(id)
	if err != nil {
		return nil, err
	}
	return c.UpdateOne(ctx, bson.M{"_id": oid}, update, false)
}

// FindOneAndUpdate applies update and returns the document as it is after the write.
func (c *Collection[T]) FindOneAndUpdate(ctx context.Context, filter interface{}, update bson.M, upsert bool) (*T, error) {
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetUpsert(upsert)

	var doc T
	if err := c.coll.FindOneAndUpdate(ctx, filter, c.stamp(update, upsert), opts).Decode(&doc); err != nil {
		return nil, wrapError(c.Name(), "find and update", err)
	}
	return &doc, nil
}

func (c *Collection[T]) Delete(ctx context.Context, filter interface{}) (int64, error) {
	res, err := c.coll.DeleteOne(ctx, filter)
	if err != nil {
		return 0, wrapError(c.Name(), "delete", err)
	}
	return res.DeletedCount, nil
}

func (c *Collection[T]) DeleteByID(ctx context.Context, id string) (int64, error) {
	oid, err := ParseID(id)
	if err != nil {
		return 0, err
	}
	return c.Delete(ctx, bson.M{"_id": oid})
}

func (c *Collection[T]) Count(ctx context.Context, filter interface{}) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, orEmpty(filter))
	if err != nil {
		return 0, wrapError(c.Name(), "count", err)
	}
	return n, nil
}

// Aggregate runs pipeline and decodes every result into out (a pointer to a slice).
func (c *Collection[T]) Aggregate(ctx context.Context, pipeline mongo.Pipeline, out interface{}) error {
	cur, err := c.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return wrapError(c.Name(), "aggregate", err)
	}
	defer cur.Close(ctx)

	if err := cur.All(ctx, out); err != nil {
		return wrapError(c.Name(), "aggregate", err)
	}
	return nil
}

// stamp merges updatedAt into $set and, for upserts, createdAt into $setOnInsert.
func (c *Collection[T]) stamp(update bson.M, upsert bool) bson.M {
	now := c.now()

	out := bson.M{}
	set := bson.M{}
	for k, v := range update {
		switch {
		case k == "$set":
			for field, val := range asM(v) {
				set[field] = val
			}
		case strings.HasPrefix(k, "$"):
			out[k] = v
		default:
			set[k] = v
		}
	}
	set["updatedAt"] = now
	out["$set"] = set

	if upsert {
		onInsert := bson.M{}
		if existing, ok := out["$setOnInsert"]; ok {
			for field, val := range asM(existing) {
				onInsert[field] = val
			}
		}
		onInsert["createdAt"] = now
		out["$setOnInsert"] = onInsert
	}

	return out
}

// orEmpty turns a nil filter (untyped or a nil bson.M) into an empty document.
func orEmpty(filter interface{}) interface{} {
	if filter == nil {
		return bson.M{}
	}
	if m, ok := filter.(bson.M); ok && m == nil {
		return bson.M{}
	}
	return filter
}

func asM(v interface{}) bson.M {
	switch t := v.(type) {
	case bson.M:
		return t
	case map[string]interface{}:
		return t
	case bson.D:
		return t.Map()
	}
	return bson.M{}
}

func toDocument(doc interface{}) (bson.M, error) {
	if m, ok := doc.(bson.M); ok {
		out := make(bson.M, len(m)+2)
		for k, v := range m {
			out[k] = v
		}
		return out, nil
	}

	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}
