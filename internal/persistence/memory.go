package persistence

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

type memoryDoc struct {
	doc bson.M
	seq int64
}

// MemoryStore keeps documents in process. Documents are stored BSON-encoded
// so reads never alias the caller's values.
type MemoryStore struct {
	mu          sync.RWMutex
	collections map[string]map[string]memoryDoc
	seq         int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{collections: make(map[string]map[string]memoryDoc)}
}

// Merge implements Store.
func (s *MemoryStore) Merge(ctx context.Context, collection, key string, doc any) error {
	m, err := toDocument(doc)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	coll, ok := s.collections[collection]
	if !ok {
		coll = make(map[string]memoryDoc)
		s.collections[collection] = coll
	}

	s.seq++
	existing := coll[key]
	coll[key] = memoryDoc{doc: mergeInto(existing.doc, m), seq: s.seq}
	return nil
}

// Latest implements Store.
func (s *MemoryStore) Latest(ctx context.Context, collection, orderField string, filter Filter, out any) error {
	s.mu.RLock()
	coll := s.collections[collection]
	cands := make([]candidate, 0, len(coll))
	for _, d := range coll {
		cands = append(cands, candidate{doc: d.doc, seq: d.seq})
	}
	best, ok := pickLatest(cands, orderField, filter)
	var err error
	if ok {
		// decode under the lock; a concurrent Merge mutates stored maps
		err = decodeDocument(best, out)
	}
	s.mu.RUnlock()

	if !ok {
		return ErrNotFound
	}
	return err
}

// Close implements Store.
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}
