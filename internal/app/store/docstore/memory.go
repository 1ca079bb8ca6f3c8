package docstore

import (
	"context"
	"reflect"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Memory is an in-process Store. One mutex covers every collection, so a
// conditional write evaluates and applies without interleaving.
type Memory struct {
	mu   sync.Mutex
	data map[string]map[string]Fields
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]map[string]Fields)}
}

func (m *Memory) coll(name string) map[string]Fields {
	c, ok := m.data[name]
	if !ok {
		c = make(map[string]Fields)
		m.data[name] = c
	}
	return c
}

func (m *Memory) Get(ctx context.Context, collection, id string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.coll(collection)[id]
	if !ok {
		return Document{}, ErrNotFound
	}
	return Document{ID: id, Fields: cloneFields(f)}, nil
}

func (m *Memory) Create(ctx context.Context, collection string, fields Fields) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	id := primitive.NewObjectID().Hex()
	f := cloneFields(fields)
	delete(f, "_id")
	m.coll(collection)[id] = f
	return id, nil
}

func (m *Memory) UpdateFields(ctx context.Context, collection, id string, fields Fields, conds ...Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.coll(collection)[id]
	if !ok {
		return ErrNotFound
	}
	if !matchAll(f, conds) {
		return ErrConditionFailed
	}
	for k, v := range fields {
		if k == "_id" {
			continue
		}
		f[k] = cloneValue(v)
	}
	return nil
}

func (m *Memory) Delete(ctx context.Context, collection, id string, conds ...Condition) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	c := m.coll(collection)
	f, ok := c[id]
	if !ok {
		return ErrNotFound
	}
	if !matchAll(f, conds) {
		return ErrConditionFailed
	}
	delete(c, id)
	return nil
}

func (m *Memory) Query(ctx context.Context, collection, field string, value any) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []Document
	for id, f := range m.coll(collection) {
		if fieldMatches(f[field], value) {
			out = append(out, Document{ID: id, Fields: cloneFields(f)})
		}
	}
	sortByID(out)
	return out, nil
}

func (m *Memory) List(ctx context.Context, collection string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Document, 0, len(m.coll(collection)))
	for id, f := range m.coll(collection) {
		out = append(out, Document{ID: id, Fields: cloneFields(f)})
	}
	sortByID(out)
	return out, nil
}

func (m *Memory) MutateSets(ctx context.Context, collection, id string, conds []Condition, ops []SetOp) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.coll(collection)[id]
	if !ok {
		return ErrNotFound
	}
	if !matchAll(f, conds) {
		return ErrConditionFailed
	}
	for _, op := range ops {
		set, _ := asStrings(f[op.Field])
		if op.Remove {
			set = without(set, op.Value)
		} else if !containsString(set, op.Value) {
			set = append(set, op.Value)
		}
		if set == nil {
			set = []string{}
		}
		f[op.Field] = set
	}
	return nil
}

/* ------------------------------ evaluation ------------------------------ */

func matchAll(f Fields, conds []Condition) bool {
	for _, c := range conds {
		if !match(f, c) {
			return false
		}
	}
	return true
}

func match(f Fields, c Condition) bool {
	switch c.kind {
	case condEquals:
		return valuesEqual(f[c.field], c.value)
	case condContains:
		set, _ := asStrings(f[c.field])
		return containsString(set, c.value.(string))
	case condNotContains:
		set, _ := asStrings(f[c.field])
		return !containsString(set, c.value.(string))
	case condSizeBelowField:
		set, _ := asStrings(f[c.field])
		limit, ok := asInt64(f[c.other])
		return ok && int64(len(set)) < limit
	case condSizeAtMost:
		set, _ := asStrings(f[c.field])
		return len(set) <= c.limit
	}
	return false
}

func fieldMatches(stored, want any) bool {
	if s, ok := want.(string); ok {
		if set, isSet := asStrings(stored); isSet {
			return containsString(set, s)
		}
	}
	return valuesEqual(stored, want)
}

func valuesEqual(a, b any) bool {
	if ai, ok := asInt64(a); ok {
		if bi, ok := asInt64(b); ok {
			return ai == bi
		}
	}
	return reflect.DeepEqual(a, b)
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	}
	return 0, false
}

// asStrings reports the value as a string set; ok is false when v is not a
// slice. A nil value is an empty set.
func asStrings(v any) ([]string, bool) {
	switch s := v.(type) {
	case nil:
		return nil, false
	case []string:
		return s, true
	case primitive.A:
		return anyStrings(s), true
	case []any:
		return anyStrings(s), true
	}
	return nil, false
}

func anyStrings(in []any) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func without(set []string, v string) []string {
	out := make([]string, 0, len(set))
	for _, s := range set {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}

func cloneFields(in Fields) Fields {
	out := make(Fields, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	if set, ok := asStrings(v); ok {
		return append([]string{}, set...)
	}
	return v
}

func sortByID(docs []Document) {
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
}
