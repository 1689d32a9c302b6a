package remote

import (
	"context"
	"sort"
	"strings"
	"time"
)

// memObject is one stored object in a Memory store.
type memObject struct {
	body         []byte
	etag         string
	lastModified time.Time
	headers      map[string]string
}

// Memory is an in-memory Store. Tests use it to script remote state and to
// assert how many calls a run performed.
type Memory struct {
	objects map[string]memObject

	// Per-operation call counters.
	Queries int
	Puts    int
	Lists   int
	Deletes int

	// QueryErr, PutErr, ListErr and DeleteErr, when set, are returned by the
	// corresponding operation instead of performing it.
	QueryErr  error
	PutErr    error
	ListErr   error
	DeleteErr error

	// ETagFor computes the ETag recorded on Put. When nil, objects carry no
	// ETag, as with stores that do not expose a content fingerprint.
	ETagFor func(body []byte) string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memObject)}
}

// Seed places an object into the store directly, bypassing counters.
func (m *Memory) Seed(key string, body []byte, etag string) {
	m.objects[key] = memObject{
		body:         body,
		etag:         etag,
		lastModified: time.Now(),
	}
}

// Has reports whether key exists, bypassing counters.
func (m *Memory) Has(key string) bool {
	_, ok := m.objects[key]
	return ok
}

// Calls returns the total number of store calls made.
func (m *Memory) Calls() int {
	return m.Queries + m.Puts + m.Lists + m.Deletes
}

func (m *Memory) Query(_ context.Context, key string) (QueryResult, error) {
	m.Queries++
	if m.QueryErr != nil {
		return QueryResult{}, m.QueryErr
	}
	obj, ok := m.objects[key]
	if !ok {
		return QueryResult{}, nil
	}
	return QueryResult{Found: true, Meta: ObjectMeta{
		Key:          key,
		ETag:         obj.etag,
		LastModified: obj.lastModified,
		Size:         int64(len(obj.body)),
	}}, nil
}

func (m *Memory) Put(_ context.Context, key string, body []byte, headers map[string]string) error {
	m.Puts++
	if m.PutErr != nil {
		return m.PutErr
	}
	obj := memObject{
		body:         append([]byte(nil), body...),
		lastModified: time.Now(),
		headers:      headers,
	}
	if m.ETagFor != nil {
		obj.etag = m.ETagFor(body)
	}
	m.objects[key] = obj
	return nil
}

func (m *Memory) List(_ context.Context, prefix string) ([]string, error) {
	m.Lists++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var keys []string
	for k := range m.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *Memory) Delete(_ context.Context, keys []string) error {
	m.Deletes++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	for _, k := range keys {
		delete(m.objects, k)
	}
	return nil
}
