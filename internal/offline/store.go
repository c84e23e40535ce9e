package offline

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/terraincognita07/sidetrack/internal/models"
)

// MemoryStore keeps generations in process memory.
type MemoryStore struct {
	mu          sync.RWMutex
	generations map[string]map[string]Response
	written     map[string]uint64
	sequence    uint64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		generations: make(map[string]map[string]Response),
		written:     make(map[string]uint64),
	}
}

func (store *MemoryStore) Match(_ context.Context, generation string, key string) (Response, bool, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	response, ok := store.generations[generation][key]
	if !ok {
		return Response{}, false, nil
	}
	return response.clone(), true, nil
}

func (store *MemoryStore) Put(_ context.Context, generation string, key string, response Response) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.bucket(generation)[key] = response.clone()
	return nil
}

func (store *MemoryStore) PutAll(_ context.Context, generation string, responses map[string]Response) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	bucket := store.bucket(generation)
	for key, response := range responses {
		bucket[key] = response.clone()
	}
	return nil
}

func (store *MemoryStore) Generations(context.Context) ([]string, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()
	names := make([]string, 0, len(store.generations))
	for name := range store.generations {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		return store.written[names[i]] < store.written[names[j]]
	})
	return names, nil
}

func (store *MemoryStore) DeleteGeneration(_ context.Context, generation string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	delete(store.generations, generation)
	delete(store.written, generation)
	return nil
}

func (store *MemoryStore) bucket(generation string) map[string]Response {
	store.sequence++
	store.written[generation] = store.sequence
	bucket, ok := store.generations[generation]
	if !ok {
		bucket = make(map[string]Response)
		store.generations[generation] = bucket
	}
	return bucket
}

// CachedResponseRepository is the persistence a RecordStore writes through.
type CachedResponseRepository interface {
	Find(ctx context.Context, generation string, requestKey string) (models.CachedResponse, bool, error)
	Upsert(ctx context.Context, cached *models.CachedResponse) error
	UpsertAll(ctx context.Context, batch []models.CachedResponse) error
	ListGenerations(ctx context.Context) ([]string, error)
	DeleteGeneration(ctx context.Context, generation string) error
}

// RecordStore keeps generations in the database so the shell survives
// restarts while the origin is down.
type RecordStore struct {
	records CachedResponseRepository
	now     func() time.Time
}

func NewRecordStore(records CachedResponseRepository) *RecordStore {
	return &RecordStore{records: records, now: time.Now}
}

func (store *RecordStore) Match(ctx context.Context, generation string, key string) (Response, bool, error) {
	cached, found, err := store.records.Find(ctx, generation, key)
	if err != nil || !found {
		return Response{}, false, err
	}
	return Response{Status: cached.Status, ContentType: cached.ContentType, Body: cached.Body}, true, nil
}

func (store *RecordStore) Put(ctx context.Context, generation string, key string, response Response) error {
	record := store.record(generation, key, response)
	return store.records.Upsert(ctx, &record)
}

func (store *RecordStore) PutAll(ctx context.Context, generation string, responses map[string]Response) error {
	keys := make([]string, 0, len(responses))
	for key := range responses {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	batch := make([]models.CachedResponse, 0, len(keys))
	for _, key := range keys {
		batch = append(batch, store.record(generation, key, responses[key]))
	}
	return store.records.UpsertAll(ctx, batch)
}

func (store *RecordStore) Generations(ctx context.Context) ([]string, error) {
	return store.records.ListGenerations(ctx)
}

func (store *RecordStore) DeleteGeneration(ctx context.Context, generation string) error {
	return store.records.DeleteGeneration(ctx, generation)
}

func (store *RecordStore) record(generation string, key string, response Response) models.CachedResponse {
	return models.CachedResponse{
		Generation:  generation,
		RequestKey:  key,
		Status:      response.Status,
		ContentType: response.ContentType,
		Body:        append([]byte(nil), response.Body...),
		StoredAt:    store.now().UTC(),
	}
}
