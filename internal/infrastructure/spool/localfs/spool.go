// Package localfs spools fetched batches to disk between the ingest and
// process stages so a worker crash never loses fetched mail.
package localfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/advancementhq/feedback-pipeline/internal/core/domain"
)

type Spool struct {
	basePath string
}

func New(basePath string) (*Spool, error) {
	if basePath == "" {
		basePath = "./data/spool"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create spool dir: %w", err)
	}
	return &Spool{basePath: basePath}, nil
}

func (s *Spool) Save(_ context.Context, batch *domain.Batch) error {
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return fmt.Errorf("encode batch: %w", err)
	}

	path := s.path(batch.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write batch file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("publish batch file: %w", err)
	}
	return nil
}

func (s *Spool) Load(_ context.Context, batchID string) (*domain.Batch, error) {
	data, err := os.ReadFile(s.path(batchID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrBatchNotFound
		}
		return nil, fmt.Errorf("read batch file: %w", err)
	}

	var batch domain.Batch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("decode batch %s: %w", batchID, err)
	}
	return &batch, nil
}

func (s *Spool) path(batchID string) string {
	// Batch IDs are UUIDs; Base guards against path traversal if a
	// malformed ID ever arrives off the queue.
	return filepath.Join(s.basePath, filepath.Base(batchID)+".json")
}
