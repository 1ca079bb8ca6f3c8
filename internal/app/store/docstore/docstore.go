// Package docstore is the persistence contract the membership and RSVP
// managers are written against. Documents are addressed by (collection, id),
// array-valued fields are treated as sets, and every write may carry a list
// of Conditions that are evaluated atomically with the write itself.
//
// Two implementations exist: Mongo (production) and Memory (tests and local
// runs). Both must give identical answers for the same sequence of calls.
package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	// ErrNotFound is returned when the addressed document does not exist.
	ErrNotFound = errors.New("docstore: document not found")

	// ErrConditionFailed is returned when the document exists but at least
	// one write condition did not hold at write time. Nothing was written.
	ErrConditionFailed = errors.New("docstore: write condition not met")

	// ErrDuplicate is returned by Create when a unique index rejects the document.
	ErrDuplicate = errors.New("docstore: duplicate key")
)

// Fields is a partial or full document body. The "_id" key is reserved.
type Fields map[string]any

// Document is a stored document: its id plus every other field.
type Document struct {
	ID     string
	Fields Fields
}

// Has reports whether the document carries the named field at all
// (a stored null counts as missing).
func (d Document) Has(field string) bool {
	v, ok := d.Fields[field]
	return ok && v != nil
}

// Decode copies the document into out (a pointer to a struct with bson tags).
// The id is not decoded; callers assign Document.ID themselves.
func (d Document) Decode(out any) error {
	raw, err := bson.Marshal(bson.M(d.Fields))
	if err != nil {
		return fmt.Errorf("docstore: encode %s: %w", d.ID, err)
	}
	if err := bson.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("docstore: decode %s: %w", d.ID, err)
	}
	return nil
}

type condKind int

const (
	condEquals condKind = iota
	condContains
	condNotContains
	condSizeBelowField
	condSizeAtMost
)

// Condition is a predicate over one document, checked inside the write.
type Condition struct {
	kind  condKind
	field string
	value any
	other string
	limit int
}

// Equals holds when field == value.
func Equals(field string, value any) Condition {
	return Condition{kind: condEquals, field: field, value: value}
}

// Contains holds when the set field contains value.
func Contains(field, value string) Condition {
	return Condition{kind: condContains, field: field, value: value}
}

// NotContains holds when the set field does not contain value
// (a missing field counts as the empty set).
func NotContains(field, value string) Condition {
	return Condition{kind: condNotContains, field: field, value: value}
}

// SizeBelowField holds when len(field) < the numeric value of limitField.
// This is the "add-if-size-below-N" capacity guard.
func SizeBelowField(field, limitField string) Condition {
	return Condition{kind: condSizeBelowField, field: field, other: limitField}
}

// SizeAtMost holds when len(field) <= n.
func SizeAtMost(field string, n int) Condition {
	return Condition{kind: condSizeAtMost, field: field, limit: n}
}

// SetOp adds a value to, or removes a value from, a set field.
// Ops on the same field apply in order.
type SetOp struct {
	Field  string
	Value  string
	Remove bool
}

// AddToSet returns an op that adds value to field if it is not already there.
func AddToSet(field, value string) SetOp {
	return SetOp{Field: field, Value: value}
}

// RemoveFromSet returns an op that removes value from field.
func RemoveFromSet(field, value string) SetOp {
	return SetOp{Field: field, Value: value, Remove: true}
}

// Store is the Document Store.
//
// Every method that writes takes optional conditions. When the document
// exists but a condition fails the method returns ErrConditionFailed and
// leaves the document untouched. Conditions and write form one atomic unit.
type Store interface {
	// Get returns the document or ErrNotFound.
	Get(ctx context.Context, collection, id string) (Document, error)

	// Create inserts a new document and returns its generated id.
	Create(ctx context.Context, collection string, fields Fields) (string, error)

	// UpdateFields merges only the named fields; others are left untouched.
	UpdateFields(ctx context.Context, collection, id string, fields Fields, conds ...Condition) error

	// Delete removes the document.
	Delete(ctx context.Context, collection, id string, conds ...Condition) error

	// Query returns documents whose field equals value. When the stored
	// field is a set, a document matches if the set contains value.
	Query(ctx context.Context, collection, field string, value any) ([]Document, error)

	// List returns every document in the collection.
	List(ctx context.Context, collection string) ([]Document, error)

	// MutateSets applies ops to one document as a single atomic write,
	// only if every condition holds. With no ops it writes nothing but
	// still returns ErrNotFound or ErrConditionFailed.
	MutateSets(ctx context.Context, collection, id string, conds []Condition, ops []SetOp) error
}

var (
	_ Store = (*Mongo)(nil)
	_ Store = (*Memory)(nil)
)
