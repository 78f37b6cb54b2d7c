package store

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFSBlobStorePutAndDelete(t *testing.T) {
	dir := t.TempDir()
	s := &FSBlobStore{Dir: dir, BaseURL: "/assets/"}

	ref, err := s.Put(context.Background(), []byte{0x89, 0x50}, "image/png")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasPrefix(ref, "/assets/") || !strings.HasSuffix(ref, ".png") {
		t.Errorf("ref = %s, want /assets/<uuid>.png", ref)
	}

	name := ref[strings.LastIndexByte(ref, '/')+1:]
	if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
		t.Fatalf("asset file missing: %v", err)
	}

	if err := s.Delete(context.Background(), ref); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, name)); !os.IsNotExist(err) {
		t.Error("asset file should be gone")
	}

	// Deleting a missing asset is not an error.
	if err := s.Delete(context.Background(), ref); err != nil {
		t.Errorf("second Delete: %v", err)
	}
}

func TestFSBlobStoreExtensions(t *testing.T) {
	cases := map[string]string{
		"image/png":  ".png",
		"image/jpeg": ".jpg",
		"image/webp": ".webp",
		"text/plain": ".bin",
	}
	for ct, want := range cases {
		if got := extFor(ct); got != want {
			t.Errorf("extFor(%s) = %s, want %s", ct, got, want)
		}
	}
}
