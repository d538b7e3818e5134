package storage

import (
	"context"
	"io"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"
)

// Package storage contains the S3-compatible object store used as the
// figure cache. Implementations must avoid using local disk and rely on
// streaming I/O only.

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1 and the implementation
// will buffer/chunk as supported by the backend.
// ContentType and Metadata are optional.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
// Methods use context and streaming readers/writers; no local disk is used.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Delete removes an object by key.
	Delete(ctx context.Context, key string) error
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// FigureKey derives the cache key for a figure of an arXiv HTML page.
// https://arxiv.org/html/2504.07491v1 with index 2 maps to
// figures/html/2504.07491v1/x2.png. A page URL that does not parse
// falls back to its raw string so keys stay deterministic.
func FigureKey(pageURL string, index int) string {
	p := pageURL
	if u, err := url.Parse(pageURL); err == nil && u.Path != "" {
		p = u.Path
	}
	p = strings.Trim(p, "/")
	return path.Join("figures", p, "x"+strconv.Itoa(index)+".png")
}
