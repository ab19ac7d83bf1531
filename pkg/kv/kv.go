// Package kv is the disk layer under the verdict cache and the analysis
// job ledger. Keys are hierarchical path segments (for example
// ["verdict", "<audio digest>"] or ["job", "<job id>"]) joined by a
// configurable separator byte, default ':'.
//
// Two implementations are provided: a BadgerDB-backed store for the CLI
// and an in-memory store for tests.
package kv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
)

// ErrNotFound is returned by Get when a key has no value.
var ErrNotFound = errors.New("kv: not found")

// Key is a hierarchical path made of string segments. Segments must not
// contain the configured separator byte; encode panics if one does,
// since a digest or id that embeds the separator would silently corrupt
// the keyspace.
type Key []string

// String renders the key with ':' for display and logs. Storage encoding
// goes through Options.encode, which honors the configured separator.
func (k Key) String() string {
	return strings.Join(k, ":")
}

// Entry is a key-value pair produced by List and consumed by BatchSet.
type Entry struct {
	Key   Key
	Value []byte
}

// Store is a key-value store with path-based keys.
type Store interface {
	// Get retrieves the value for a key. Returns ErrNotFound if not present.
	Get(ctx context.Context, key Key) ([]byte, error)

	// Set stores a key-value pair, overwriting any existing value.
	Set(ctx context.Context, key Key, value []byte) error

	// Delete removes a key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key Key) error

	// List iterates entries whose key starts with the given prefix, in
	// lexicographic order of the encoded key. A nil prefix lists all.
	List(ctx context.Context, prefix Key) iter.Seq2[Entry, error]

	// BatchSet atomically stores multiple key-value pairs.
	BatchSet(ctx context.Context, entries []Entry) error

	// BatchDelete atomically removes multiple keys.
	BatchDelete(ctx context.Context, keys []Key) error

	// Close releases any resources held by the store.
	Close() error
}

// DefaultSeparator joins key segments in storage encoding.
const DefaultSeparator byte = ':'

// Options configures key encoding shared by all store implementations.
type Options struct {
	// Separator is the byte placed between key segments on disk.
	// Zero means DefaultSeparator.
	Separator byte
}

func (o *Options) sep() byte {
	if o != nil && o.Separator != 0 {
		return o.Separator
	}
	return DefaultSeparator
}

// encode flattens a Key to its storage bytes.
func (o *Options) encode(k Key) []byte {
	s := o.sep()
	n := 0
	for i, seg := range k {
		if strings.IndexByte(seg, s) >= 0 {
			panic(fmt.Sprintf("kv: key segment %q contains separator %q", seg, s))
		}
		if i > 0 {
			n++
		}
		n += len(seg)
	}
	buf := make([]byte, n)
	pos := 0
	for i, seg := range k {
		if i > 0 {
			buf[pos] = s
			pos++
		}
		pos += copy(buf[pos:], seg)
	}
	return buf
}

// decode splits storage bytes back into a Key.
func (o *Options) decode(b []byte) Key {
	parts := bytes.Split(b, []byte{o.sep()})
	k := make(Key, len(parts))
	for i, p := range parts {
		k[i] = string(p)
	}
	return k
}
