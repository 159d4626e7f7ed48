// Package persistence is the document store boundary. The application relies
// on exactly two query shapes: the most recent document in a collection
// ordered by a timestamp field, and a write that merges a document by key.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned by Latest when no document matches.
var ErrNotFound = errors.New("document not found")

// Filter is an equality filter on top-level string fields.
type Filter map[string]string

// Store is implemented by every backend.
type Store interface {
	// Latest decodes into out the document in collection that matches filter
	// and has the greatest orderField. It returns ErrNotFound on no match.
	Latest(ctx context.Context, collection, orderField string, filter Filter, out any) error

	// Merge writes doc under key. Top-level fields of doc replace the stored
	// ones; fields doc does not carry are kept.
	Merge(ctx context.Context, collection, key string, doc any) error

	Close(ctx context.Context) error
}

// Drivers accepted by Open.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Driver     string
	MongoURI   string
	Database   string
	SQLitePath string
}

// Open creates the backend named by opts.Driver.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch strings.ToLower(opts.Driver) {
	case "", DriverMemory:
		return NewMemoryStore(), nil
	case DriverSQLite:
		return NewSQLiteStore(opts.SQLitePath)
	case DriverMongo:
		return NewMongoStore(ctx, opts.MongoURI, opts.Database)
	default:
		return nil, fmt.Errorf("unsupported store driver %q", opts.Driver)
	}
}

// toDocument encodes v through BSON so every backend sees the same field names.
func toDocument(v any) (bson.M, error) {
	data, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return m, nil
}

func decodeDocument(m bson.M, out any) error {
	data, err := bson.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	if err := bson.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode document: %w", err)
	}
	return nil
}

func mergeInto(dst, src bson.M) bson.M {
	if dst == nil {
		dst = bson.M{}
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func matches(m bson.M, f Filter) bool {
	for k, want := range f {
		got, ok := m[k].(string)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// compareOrder orders two field values. Missing or unsupported values sort first.
func compareOrder(a, b any) int {
	ka, oka := orderKey(a)
	kb, okb := orderKey(b)
	switch {
	case !oka && !okb:
		return 0
	case !oka:
		return -1
	case !okb:
		return 1
	case ka < kb:
		return -1
	case ka > kb:
		return 1
	}
	return 0
}

func orderKey(v any) (float64, bool) {
	switch t := v.(type) {
	case primitive.DateTime:
		return float64(t), true
	case time.Time:
		return float64(t.UnixMilli()), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case float64:
		return t, true
	}
	return 0, false
}

// candidate is a stored document considered by Latest.
type candidate struct {
	doc bson.M
	seq int64
}

// pickLatest returns the matching candidate with the greatest orderField,
// breaking ties by write sequence.
func pickLatest(cands []candidate, orderField string, filter Filter) (bson.M, bool) {
	var best *candidate
	for i := range cands {
		c := &cands[i]
		if !matches(c.doc, filter) {
			continue
		}
		if best == nil {
			best = c
			continue
		}
		cmp := compareOrder(c.doc[orderField], best.doc[orderField])
		if cmp > 0 || (cmp == 0 && c.seq > best.seq) {
			best = c
		}
	}
	if best == nil {
		return nil, false
	}
	return best.doc, true
}
