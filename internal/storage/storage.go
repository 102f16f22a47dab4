// Package storage persists room images and hands back the URL clients load
// them from.
package storage

import (
	"context"
	"io"
	"strings"
)

type ImageStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	PublicURL() string
}

// KeyFromURL recovers the object key from a URL produced by a store rooted at
// publicURL. ok is false for URLs the store did not produce.
func KeyFromURL(publicURL, url string) (string, bool) {
	prefix := strings.TrimRight(publicURL, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
