package domain

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// isoLayout mirrors a full ISO-8601 timestamp so "now" compares correctly against
// year ("2014"), month ("2014-01") and day ("2014-01-01") keys.
const isoLayout = "2006-01-02T15:04:05.000000"

// maxCachedQueries bounds the resolution cache; later queries are resolved
// without being stored.
const maxCachedQueries = 4096

// queryLayouts are the date shapes accepted from callers
var queryLayouts = []string{"2006", "2006-01", "2006-01-02"}

// ValidateDate accepts "" (now) or a YYYY, YYYY-MM or YYYY-MM-DD date
func ValidateDate(query string) error {
	if query == "" {
		return nil
	}
	for _, layout := range queryLayouts {
		if len(query) != len(layout) {
			continue
		}
		if _, err := time.Parse(layout, query); err == nil {
			return nil
		}
	}
	msg := query
	if len(msg) > 32 {
		msg = msg[:32] + "..."
	}
	return &InvalidInputError{Field: "date", Message: fmt.Sprintf("%q is not a YYYY, YYYY-MM or YYYY-MM-DD date", msg)}
}

// DatedRegistry maps effective-date keys to values that take effect on that date.
// It is immutable after construction except for the resolution cache.
type DatedRegistry[T any] struct {
	entries map[string]T
	keys    []string
	now     func() time.Time
	cache   sync.Map // query string -> resolved key
	cached  atomic.Int64
}

// RegistryOption configures a DatedRegistry
type RegistryOption func(*registryOptions)

type registryOptions struct {
	now func() time.Time
}

// WithClock overrides the clock used when no date is supplied
func WithClock(now func() time.Time) RegistryOption {
	return func(o *registryOptions) {
		o.now = now
	}
}

// NewDatedRegistry builds a registry over a copy of entries
func NewDatedRegistry[T any](entries map[string]T, opts ...RegistryOption) *DatedRegistry[T] {
	o := registryOptions{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}

	r := &DatedRegistry[T]{
		entries: make(map[string]T, len(entries)),
		keys:    make([]string, 0, len(entries)),
		now:     o.now,
	}
	for k, v := range entries {
		r.entries[k] = v
		r.keys = append(r.keys, k)
	}
	sort.Strings(r.keys)
	return r
}

// TryGet looks up an exact key
func (r *DatedRegistry[T]) TryGet(key string) (T, bool) {
	v, ok := r.entries[key]
	return v, ok
}

// Keys returns the known keys in ascending order
func (r *DatedRegistry[T]) Keys() []string {
	return append([]string(nil), r.keys...)
}

// Latest returns the newest key, or "" for an empty registry
func (r *DatedRegistry[T]) Latest() string {
	if len(r.keys) == 0 {
		return ""
	}
	return r.keys[len(r.keys)-1]
}

// Len returns the number of keys
func (r *DatedRegistry[T]) Len() int {
	return len(r.keys)
}

// ResolveDate returns the key in effect on query. A known key is returned as is.
// An empty query means "now". Otherwise the greatest key strictly less than the
// query wins. Results are cached per query for the lifetime of the registry, up to
// maxCachedQueries entries; the "now" query is always cached.
func (r *DatedRegistry[T]) ResolveDate(query string) (string, error) {
	if _, ok := r.entries[query]; ok {
		return query, nil
	}
	if cached, ok := r.cache.Load(query); ok {
		return cached.(string), nil
	}

	date := query
	if date == "" {
		date = r.now().Format(isoLayout)
	}
	key, err := r.lookup(date)
	if err != nil {
		return "", err
	}

	if query == "" || r.cached.Load() < maxCachedQueries {
		if _, loaded := r.cache.LoadOrStore(query, key); !loaded {
			r.cached.Add(1)
		}
	}
	return key, nil
}

// CachedQueries reports how many query resolutions are memoized
func (r *DatedRegistry[T]) CachedQueries() int {
	return int(r.cached.Load())
}

func (r *DatedRegistry[T]) lookup(date string) (string, error) {
	// keys are sorted, so the last key below date is the maximum
	idx := sort.SearchStrings(r.keys, date)
	if idx == 0 {
		earliest := ""
		if len(r.keys) > 0 {
			earliest = r.keys[0]
		}
		return "", &NoApplicableTableError{Query: date, Earliest: earliest}
	}
	return r.keys[idx-1], nil
}

// Resolve returns the value in effect on query together with its key
func (r *DatedRegistry[T]) Resolve(query string) (T, string, error) {
	key, err := r.ResolveDate(query)
	if err != nil {
		var zero T
		return zero, "", err
	}
	return r.entries[key], key, nil
}
