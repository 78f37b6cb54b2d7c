package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mekonnen/cv-studio/internal/compose"
)

// DirSink writes each document into a directory under its own filename.
type DirSink struct {
	Dir string
}

func (s DirSink) Put(_ context.Context, doc *compose.Document) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(s.Dir, doc.Filename)
	if err := os.WriteFile(path, doc.PDF, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// CollectSink accumulates documents in memory, for archive downloads and tests.
type CollectSink struct {
	Docs []*compose.Document
}

func (s *CollectSink) Put(_ context.Context, doc *compose.Document) error {
	s.Docs = append(s.Docs, doc)
	return nil
}
