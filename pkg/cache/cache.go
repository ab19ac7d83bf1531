// Package cache memoizes analysis verdicts by audio content digest.
//
// The key is the hex SHA-256 of the raw audio bytes, the same digest the
// custody seal records, so renaming a file never defeats the cache while
// changing a single byte always does. Entries are msgpack Records keyed
// "verdict:{digest}" in a kv.Store and are served only while they are
// younger than the max age and were produced by the current pipeline
// version; anything else reads as a miss.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/forensics"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/kv"
	"github.com/SWORDIntel/AUDIOANALYSISX1-sub000/pkg/seal"
)

// DefaultMaxAge is how long a cached verdict stays servable.
const DefaultMaxAge = 24 * time.Hour

// ErrBadDigest reports a key that is not a hex SHA-256.
var ErrBadDigest = errors.New("cache: digest must be 64 hex characters")

// Record is the stored form of a cache entry.
type Record struct {
	Document forensics.Document `msgpack:"document"`
	Version  string             `msgpack:"version"`
	CachedAt int64              `msgpack:"cached_at"` // unix seconds
}

// Stats summarizes the cache for the stats command.
type Stats struct {
	Entries int
	Stale   int
	Oldest  time.Time
}

// Cache is a verdict cache over a kv.Store. Construct one per process
// and pass it where needed.
type Cache struct {
	store   kv.Store
	maxAge  time.Duration
	version string
}

// Option configures a Cache.
type Option func(*Cache)

// WithMaxAge overrides the serve window.
func WithMaxAge(d time.Duration) Option {
	return func(c *Cache) { c.maxAge = d }
}

// WithVersion overrides the pipeline version stamped into new records.
func WithVersion(v string) Option {
	return func(c *Cache) { c.version = v }
}

// New creates a Cache over the given store.
func New(store kv.Store, opts ...Option) *Cache {
	c := &Cache{
		store:   store,
		maxAge:  DefaultMaxAge,
		version: seal.PipelineVersion,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached document for an audio digest, or nil when the
// cache holds no servable entry. Absent, stale, version-mismatched, and
// undecodable records all read as a miss.
func (c *Cache) Get(ctx context.Context, digest string) (*forensics.Document, error) {
	if err := checkDigest(digest); err != nil {
		return nil, err
	}
	data, err := c.store.Get(ctx, recordKey(digest))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get: %w", err)
	}

	var rec Record
	if err := msgpack.Unmarshal(data, &rec); err != nil {
		return nil, nil
	}
	if !c.servable(rec, time.Now()) {
		return nil, nil
	}
	return &rec.Document, nil
}

// Put stores a document under an audio digest, stamped with the pipeline
// version and the current time.
func (c *Cache) Put(ctx context.Context, digest string, doc forensics.Document) error {
	if err := checkDigest(digest); err != nil {
		return err
	}
	rec := Record{
		Document: doc,
		Version:  c.version,
		CachedAt: time.Now().Unix(),
	}
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return c.store.Set(ctx, recordKey(digest), data)
}

// Delete removes the entry for a digest, if any.
func (c *Cache) Delete(ctx context.Context, digest string) error {
	if err := checkDigest(digest); err != nil {
		return err
	}
	return c.store.Delete(ctx, recordKey(digest))
}

// Prune removes every record that would no longer be served: expired,
// produced by another pipeline version, or undecodable. It returns the
// number of records removed.
func (c *Cache) Prune(ctx context.Context) (int, error) {
	now := time.Now()
	var doomed []kv.Key
	for entry, err := range c.store.List(ctx, kv.Key{"verdict"}) {
		if err != nil {
			return 0, fmt.Errorf("cache prune: %w", err)
		}
		var rec Record
		if err := msgpack.Unmarshal(entry.Value, &rec); err != nil {
			doomed = append(doomed, entry.Key)
			continue
		}
		if !c.servable(rec, now) {
			doomed = append(doomed, entry.Key)
		}
	}
	if len(doomed) == 0 {
		return 0, nil
	}
	if err := c.store.BatchDelete(ctx, doomed); err != nil {
		return 0, fmt.Errorf("cache prune: %w", err)
	}
	return len(doomed), nil
}

// Stats walks the cache and counts total and stale entries.
func (c *Cache) Stats(ctx context.Context) (Stats, error) {
	now := time.Now()
	var st Stats
	for entry, err := range c.store.List(ctx, kv.Key{"verdict"}) {
		if err != nil {
			return Stats{}, fmt.Errorf("cache stats: %w", err)
		}
		st.Entries++
		var rec Record
		if err := msgpack.Unmarshal(entry.Value, &rec); err != nil {
			st.Stale++
			continue
		}
		if !c.servable(rec, now) {
			st.Stale++
		}
		at := time.Unix(rec.CachedAt, 0)
		if rec.CachedAt > 0 && (st.Oldest.IsZero() || at.Before(st.Oldest)) {
			st.Oldest = at
		}
	}
	return st, nil
}

func (c *Cache) servable(rec Record, now time.Time) bool {
	if rec.Version != c.version {
		return false
	}
	age := now.Sub(time.Unix(rec.CachedAt, 0))
	return age <= c.maxAge
}

func recordKey(digest string) kv.Key {
	return kv.Key{"verdict", digest}
}

func checkDigest(digest string) error {
	if len(digest) != 64 {
		return ErrBadDigest
	}
	for _, r := range digest {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		default:
			return ErrBadDigest
		}
	}
	return nil
}
