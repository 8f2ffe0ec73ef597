// Package blobstore is the Blob Store Facade: a thin, path-addressed
// get/put/list/delete/copy surface over github.com/viant/afs, the same
// abstract-filesystem library the teacher uses for every durable read/write
// (file://, mem://, or a cloud-backed URL). It is the single seam the
// History Store and Registry Store go through; the configuration loader
// reads through an afs.Service directly.
package blobstore

import (
	"bytes"
	"context"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/storage"
	"github.com/viant/carecore/internal/cerrors"
)

// Store is the Blob Store Facade.
type Store struct {
	fs      afs.Service
	baseURL string
}

// New wraps fs, rooting every relative path under baseURL (e.g. "mem://conversations"
// or "file:///var/lib/carecore"). baseURL must not have a trailing slash.
func New(fs afs.Service, baseURL string) *Store {
	return &Store{fs: fs, baseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *Store) url(path string) string {
	path = strings.TrimPrefix(path, "/")
	return s.baseURL + "/" + path
}

// Get reads the object at path. A missing object is reported via
// cerrors.KindNotFound so callers that treat "missing" as "empty" (the
// History Store, the Registry Store) can branch on it with cerrors.Is.
func (s *Store) Get(ctx context.Context, path string) ([]byte, error) {
	url := s.url(path)
	exists, err := s.fs.Exists(ctx, url)
	if err != nil {
		return nil, cerrors.Transient("blobstore.Get: exists", err)
	}
	if !exists {
		return nil, cerrors.NotFound("blobstore.Get", errNotFound(path))
	}
	data, err := s.fs.DownloadWithURL(ctx, url)
	if err != nil {
		return nil, cerrors.Transient("blobstore.Get: download", err)
	}
	return data, nil
}

// Exists reports whether path has a live object.
func (s *Store) Exists(ctx context.Context, path string) (bool, error) {
	exists, err := s.fs.Exists(ctx, s.url(path))
	if err != nil {
		return false, cerrors.Transient("blobstore.Exists", err)
	}
	return exists, nil
}

// Put writes data to path, creating any implied parent directories.
func (s *Store) Put(ctx context.Context, path string, data []byte) error {
	if err := s.fs.Upload(ctx, s.url(path), 0644, bytes.NewReader(data)); err != nil {
		return cerrors.Transient("blobstore.Put", err)
	}
	return nil
}

// Delete removes path. Deleting a missing object is not an error.
func (s *Store) Delete(ctx context.Context, path string) error {
	exists, err := s.Exists(ctx, path)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	if err := s.fs.Delete(ctx, s.url(path)); err != nil {
		return cerrors.Transient("blobstore.Delete", err)
	}
	return nil
}

// List returns the object paths (relative to baseURL) under prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	objects, err := s.fs.List(ctx, s.url(prefix))
	if err != nil {
		return nil, cerrors.Transient("blobstore.List", err)
	}
	var paths []string
	for _, obj := range objects {
		if obj.IsDir() {
			continue
		}
		paths = append(paths, relativize(s.baseURL, obj))
	}
	return paths, nil
}

// Copy copies the object at src to dst. Idempotent when the source is
// already missing: archival retries must not fail or duplicate a prior
// successful copy, so a missing source is treated as "already archived".
func (s *Store) Copy(ctx context.Context, src, dst string) error {
	exists, err := s.Exists(ctx, src)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	data, err := s.Get(ctx, src)
	if err != nil {
		return err
	}
	return s.Put(ctx, dst, data)
}

func relativize(baseURL string, obj storage.Object) string {
	url := obj.URL()
	if strings.HasPrefix(url, baseURL) {
		return strings.TrimPrefix(strings.TrimPrefix(url, baseURL), "/")
	}
	return url
}

type notFoundError string

func (e notFoundError) Error() string { return "blob not found: " + string(e) }

func errNotFound(path string) error { return notFoundError(path) }
