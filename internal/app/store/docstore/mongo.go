package docstore

import (
	"context"
	"errors"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Mongo is the MongoDB-backed Store. Every conditional write is a single
// UpdateOne/DeleteOne whose filter carries the conditions, so MongoDB's
// single-document atomicity covers the check and the write together.
type Mongo struct {
	db *mongo.Database
}

// NewMongo wraps a database handle.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{db: db}
}

func (s *Mongo) Get(ctx context.Context, collection, id string) (Document, error) {
	oid, ok := objectID(id)
	if !ok {
		return Document{}, ErrNotFound
	}
	var raw bson.M
	if err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": oid}).Decode(&raw); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return toDocument(raw), nil
}

func (s *Mongo) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	doc := make(bson.M, len(fields)+1)
	for k, v := range fields {
		doc[k] = v
	}
	oid := primitive.NewObjectID()
	doc["_id"] = oid

	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		if wafflemongo.IsDup(err) {
			return "", ErrDuplicate
		}
		return "", err
	}
	return oid.Hex(), nil
}

func (s *Mongo) UpdateFields(ctx context.Context, collection, id string, fields Fields, conds ...Condition) error {
	oid, ok := objectID(id)
	if !ok {
		return ErrNotFound
	}
	set := make(bson.M, len(fields))
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		set[k] = v
	}
	c := s.db.Collection(collection)
	res, err := c.UpdateOne(ctx, filterFor(oid, conds), bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return missOrCondition(ctx, c, oid)
	}
	return nil
}

func (s *Mongo) Delete(ctx context.Context, collection, id string, conds ...Condition) error {
	oid, ok := objectID(id)
	if !ok {
		return ErrNotFound
	}
	c := s.db.Collection(collection)
	res, err := c.DeleteOne(ctx, filterFor(oid, conds))
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return missOrCondition(ctx, c, oid)
	}
	return nil
}

func (s *Mongo) Query(ctx context.Context, collection, field string, value any) ([]Document, error) {
	return s.find(ctx, collection, bson.M{field: value})
}

func (s *Mongo) List(ctx context.Context, collection string) ([]Document, error) {
	return s.find(ctx, collection, bson.M{})
}

func (s *Mongo) find(ctx context.Context, collection string, filter bson.M) ([]Document, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := s.db.Collection(collection).Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []bson.M
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]Document, 0, len(rows))
	for _, raw := range rows {
		out = append(out, toDocument(raw))
	}
	return out, nil
}

// MutateSets folds the ops into one aggregation-pipeline update. Per field
// the ops nest in order, e.g. remove-then-add becomes
// $setUnion[$setDifference[$f, [v]], [v]], evaluated server-side in one write.
func (s *Mongo) MutateSets(ctx context.Context, collection, id string, conds []Condition, ops []SetOp) error {
	oid, ok := objectID(id)
	if !ok {
		return ErrNotFound
	}
	c := s.db.Collection(collection)
	if len(ops) == 0 {
		// Nothing to write; still answer existence and conditions.
		n, err := c.CountDocuments(ctx, filterFor(oid, conds), options.Count().SetLimit(1))
		if err != nil {
			return err
		}
		if n == 0 {
			return missOrCondition(ctx, c, oid)
		}
		return nil
	}

	exprs := make(map[string]any, len(ops))
	var order []string
	for _, op := range ops {
		cur, seen := exprs[op.Field]
		if !seen {
			cur = bson.M{"$ifNull": bson.A{"$" + op.Field, bson.A{}}}
			order = append(order, op.Field)
		}
		val := bson.M{"$literal": bson.A{op.Value}}
		if op.Remove {
			cur = bson.M{"$setDifference": bson.A{cur, val}}
		} else {
			cur = bson.M{"$setUnion": bson.A{cur, val}}
		}
		exprs[op.Field] = cur
	}
	set := make(bson.D, 0, len(order))
	for _, f := range order {
		set = append(set, bson.E{Key: f, Value: exprs[f]})
	}
	pipeline := mongo.Pipeline{{{Key: "$set", Value: set}}}

	res, err := c.UpdateOne(ctx, filterFor(oid, conds), pipeline)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return missOrCondition(ctx, c, oid)
	}
	return nil
}

/* -------------------------------- helpers -------------------------------- */

func objectID(id string) (primitive.ObjectID, bool) {
	oid, err := primitive.ObjectIDFromHex(id)
	return oid, err == nil
}

func toDocument(raw bson.M) Document {
	var id string
	if oid, ok := raw["_id"].(primitive.ObjectID); ok {
		id = oid.Hex()
	}
	delete(raw, "_id")
	return Document{ID: id, Fields: Fields(raw)}
}

func filterFor(oid primitive.ObjectID, conds []Condition) bson.M {
	f := bson.M{"_id": oid}
	if len(conds) == 0 {
		return f
	}
	and := make(bson.A, 0, len(conds))
	for _, c := range conds {
		and = append(and, condFilter(c))
	}
	f["$and"] = and
	return f
}

func condFilter(c Condition) bson.M {
	switch c.kind {
	case condNotContains:
		return bson.M{c.field: bson.M{"$ne": c.value}}
	case condSizeBelowField:
		return bson.M{"$expr": bson.M{"$lt": bson.A{sizeOf(c.field), "$" + c.other}}}
	case condSizeAtMost:
		return bson.M{"$expr": bson.M{"$lte": bson.A{sizeOf(c.field), c.limit}}}
	default:
		// Equals and Contains share the same query shape: on an array field
		// MongoDB matches by element.
		return bson.M{c.field: c.value}
	}
}

func sizeOf(field string) bson.M {
	return bson.M{"$size": bson.M{"$ifNull": bson.A{"$" + field, bson.A{}}}}
}

// missOrCondition tells a missing document apart from a failed condition
// after a write matched nothing.
func missOrCondition(ctx context.Context, c *mongo.Collection, oid primitive.ObjectID) error {
	n, err := c.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrConditionFailed
}
