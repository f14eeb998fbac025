// Package memstore is an in-memory store.Documents used by route tests.
// It understands the filter subset the handlers emit: equality on top-level or
// dotted fields, and {"$in": [...]}.
package memstore

import (
	"context"
	"reflect"
	"strings"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reshop/server/internal/models"
	"github.com/reshop/server/internal/store"
)

// Collection is a goroutine-safe in-memory collection.
type Collection struct {
	mu   sync.Mutex
	docs []bson.M
	fail error
}

var _ store.Documents = (*Collection)(nil)

// New returns a collection pre-populated with copies of docs.
func New(docs ...bson.M) *Collection {
	c := &Collection{}
	for _, d := range docs {
		d = clone(d)
		if _, ok := d[models.FieldID]; !ok {
			d[models.FieldID] = primitive.NewObjectID()
		}
		c.docs = append(c.docs, d)
	}
	return c
}

// FailWith makes every subsequent operation return err. Pass nil to recover.
func (c *Collection) FailWith(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fail = err
}

// Len returns the number of stored documents.
func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.docs)
}

func (c *Collection) Find(_ context.Context, filter bson.M) ([]bson.M, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return nil, c.fail
	}
	out := []bson.M{}
	for _, d := range c.docs {
		if matches(d, filter) {
			out = append(out, clone(d))
		}
	}
	return out, nil
}

func (c *Collection) FindOne(_ context.Context, filter bson.M) (bson.M, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return nil, c.fail
	}
	if i := c.index(filter); i >= 0 {
		return clone(c.docs[i]), nil
	}
	return nil, nil
}

func (c *Collection) FindByID(ctx context.Context, id string) (bson.M, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	return c.FindOne(ctx, bson.M{models.FieldID: oid})
}

func (c *Collection) Insert(_ context.Context, doc bson.M) (*models.InsertResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return nil, c.fail
	}
	d := clone(doc)
	if _, ok := d[models.FieldID]; !ok {
		d[models.FieldID] = primitive.NewObjectID()
	}
	c.docs = append(c.docs, d)
	return &models.InsertResult{Acknowledged: true, InsertedID: d[models.FieldID]}, nil
}

func (c *Collection) Upsert(_ context.Context, filter, set bson.M) (*models.UpdateResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return nil, c.fail
	}
	if i := c.index(filter); i >= 0 {
		modified := int64(0)
		for k, v := range set {
			if old, ok := c.docs[i][k]; !ok || !reflect.DeepEqual(old, v) {
				c.docs[i][k] = v
				modified = 1
			}
		}
		return &models.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: modified}, nil
	}

	d := bson.M{}
	for k, v := range filter {
		if _, isOp := v.(bson.M); !isOp && !strings.Contains(k, ".") {
			d[k] = v
		}
	}
	for k, v := range set {
		d[k] = v
	}
	if _, ok := d[models.FieldID]; !ok {
		d[models.FieldID] = primitive.NewObjectID()
	}
	c.docs = append(c.docs, d)
	return &models.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: d[models.FieldID]}, nil
}

func (c *Collection) UpsertByID(ctx context.Context, id string, set bson.M) (*models.UpdateResult, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	delete(set, models.FieldID)
	return c.Upsert(ctx, bson.M{models.FieldID: oid}, set)
}

func (c *Collection) DeleteByID(_ context.Context, id string) (*models.DeleteResult, error) {
	oid, err := store.ParseID(id)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return nil, c.fail
	}
	if i := c.index(bson.M{models.FieldID: oid}); i >= 0 {
		c.docs = append(c.docs[:i], c.docs[i+1:]...)
		return &models.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
	}
	return &models.DeleteResult{Acknowledged: true}, nil
}

func (c *Collection) DeleteMany(_ context.Context, filter bson.M) (*models.DeleteResult, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return nil, c.fail
	}
	kept := c.docs[:0]
	var n int64
	for _, d := range c.docs {
		if matches(d, filter) {
			n++
			continue
		}
		kept = append(kept, d)
	}
	c.docs = kept
	return &models.DeleteResult{Acknowledged: true, DeletedCount: n}, nil
}

func (c *Collection) index(filter bson.M) int {
	for i, d := range c.docs {
		if matches(d, filter) {
			return i
		}
	}
	return -1
}

func matches(doc, filter bson.M) bool {
	for key, want := range filter {
		got, ok := lookup(doc, key)
		if op, isOp := want.(bson.M); isOp {
			if !matchOp(got, ok, op) {
				return false
			}
			continue
		}
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func matchOp(got any, present bool, op bson.M) bool {
	for name, arg := range op {
		switch name {
		case "$in":
			if !present || !contains(arg, got) {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func contains(list, v any) bool {
	rv := reflect.ValueOf(list)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if reflect.DeepEqual(rv.Index(i).Interface(), v) {
			return true
		}
	}
	return false
}

func lookup(doc bson.M, path string) (any, bool) {
	var cur any = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case bson.M:
		return m, true
	case map[string]any:
		return m, true
	default:
		return nil, false
	}
}

func clone(d bson.M) bson.M {
	out := make(bson.M, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}
