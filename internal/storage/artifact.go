package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrObjectNotFound = errors.New("object not found")
	ErrEmptyArtifact  = errors.New("artifact is empty")
)

// KeyPrefix is the folder uploaded contracts are stored under.
const KeyPrefix = "contracts/"

// Artifact is an uploaded contract and a URL it can be fetched from.
type Artifact struct {
	Key  string
	URL  string
	Size int64
}

// ArtifactStore uploads raw contract files and hands back a retrievable URL.
type ArtifactStore struct {
	store  Storage
	expiry time.Duration
	newID  func() string
}

// NewArtifactStore wraps s; expiry bounds the lifetime of returned URLs.
func NewArtifactStore(s Storage, expiry time.Duration) *ArtifactStore {
	return &ArtifactStore{store: s, expiry: expiry, newID: uuid.NewString}
}

// Upload stores data under contracts/<uuid><ext> in a single attempt.
func (a *ArtifactStore) Upload(ctx context.Context, data []byte, filename string) (Artifact, error) {
	if len(data) == 0 {
		return Artifact{}, ErrEmptyArtifact
	}

	key := ObjectKey(a.newID(), filename)
	info, err := a.store.Put(ctx, key, bytes.NewReader(data), PutObjectOptions{
		Size:        int64(len(data)),
		ContentType: "application/pdf",
		Metadata:    map[string]string{"original-filename": filepath.Base(filename)},
	})
	if err != nil {
		return Artifact{}, fmt.Errorf("upload to storage: %w", err)
	}

	u, err := a.store.PresignGet(ctx, info.Key, a.expiry)
	if err != nil {
		return Artifact{Key: info.Key, Size: info.Size}, fmt.Errorf("presign url: %w", err)
	}
	return Artifact{Key: info.Key, URL: u, Size: info.Size}, nil
}

// URL re-signs the download URL for a stored key. Presigning never touches
// the backend, so the object is checked first.
func (a *ArtifactStore) URL(ctx context.Context, key string) (string, error) {
	if _, err := a.store.Stat(ctx, key); err != nil {
		return "", err
	}
	return a.store.PresignGet(ctx, key, a.expiry)
}

// Delete removes a stored contract.
func (a *ArtifactStore) Delete(ctx context.Context, key string) error {
	return a.store.Delete(ctx, key)
}

// ObjectKey builds contracts/<id><ext>, defaulting the extension to .pdf.
func ObjectKey(id, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" || len(ext) > 8 {
		ext = ".pdf"
	}
	return KeyPrefix + id + ext
}
