package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// BlobStore persists raw page and photo assets and hands back a stable
// public reference for each.
type BlobStore interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, ref string) error
}

// FSBlobStore keeps assets on the local filesystem and serves them under a
// base URL. Suitable for a single-node deployment.
type FSBlobStore struct {
	Dir     string
	BaseURL string
}

func (s *FSBlobStore) Put(_ context.Context, data []byte, contentType string) (string, error) {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create asset directory: %w", err)
	}
	name := uuid.NewString() + extFor(contentType)
	if err := os.WriteFile(filepath.Join(s.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write asset: %w", err)
	}
	return strings.TrimSuffix(s.BaseURL, "/") + "/" + name, nil
}

func (s *FSBlobStore) Delete(_ context.Context, ref string) error {
	name := ref[strings.LastIndexByte(ref, '/')+1:]
	if name == "" || strings.Contains(name, "..") {
		return fmt.Errorf("unrecognized asset reference %q", ref)
	}
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	return nil
}

func extFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".bin"
	}
}
