// Package storage archives sealed analysis bundles.
//
// A FileStore is a flat namespace of forward-slash paths holding one
// directory per asset: {asset_id}/report.json and {asset_id}/seal.json.
// Local disk and S3-compatible object stores are provided; Open picks
// one from a destination URI so the CLI can send evidence to either
// with the same flag.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
)

// FileStore reads and writes archive files. Paths are forward-slash
// separated and relative to the store root. Implementations must be
// safe for concurrent use.
type FileStore interface {
	// Read opens the named file. The caller closes the returned reader.
	// A missing file yields an error wrapping os.ErrNotExist.
	Read(ctx context.Context, path string) (io.ReadCloser, error)

	// Write opens the named file for writing, truncating any previous
	// content and creating parents as needed. The file is not fully
	// durable until Close returns nil.
	Write(ctx context.Context, path string) (io.WriteCloser, error)

	// Delete removes the named file. Deleting a missing file is not an
	// error.
	Delete(ctx context.Context, path string) error

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)
}

// Open returns the FileStore addressed by uri.
//
// A plain path or a file:// URI lands on local disk. s3://bucket/prefix
// lands on an object store, with the client built from the standard AWS
// environment (AWS_REGION, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY,
// and AWS_ENDPOINT_URL for S3-compatible endpoints such as MinIO).
func Open(uri string) (FileStore, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("storage: parse destination %q: %w", uri, err)
	}
	switch u.Scheme {
	case "":
		return NewLocal(uri)
	case "file":
		path := u.Path
		if u.Host != "" {
			// file://relative/path parses the first segment as a host.
			path = u.Host + u.Path
		}
		if path == "" {
			return nil, fmt.Errorf("storage: empty path in %q", uri)
		}
		return NewLocal(path)
	case "s3":
		if u.Host == "" {
			return nil, fmt.Errorf("storage: missing bucket in %q", uri)
		}
		client, err := s3FromEnv()
		if err != nil {
			return nil, err
		}
		return NewS3(client, u.Host, strings.Trim(u.Path, "/")), nil
	default:
		return nil, fmt.Errorf("storage: unsupported scheme %q in %q", u.Scheme, uri)
	}
}
