package planstore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"bizplan/internal/services/storage"
)

// PlanFile is the document's name inside the data directory
const PlanFile = "plan.json"

// FileBackend keeps the plan in the (optionally encrypted) data directory
type FileBackend struct {
	store *storage.Storage
	name  string
}

// NewFile returns a backend writing PlanFile through store
func NewFile(store *storage.Storage) *FileBackend {
	return &FileBackend{store: store, name: PlanFile}
}

func (b *FileBackend) Name() string { return "file" }

func (b *FileBackend) Load(context.Context) ([]byte, error) {
	data, err := b.store.ReadFile(b.name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.name, err)
	}
	return data, nil
}

func (b *FileBackend) Save(_ context.Context, data []byte) error {
	if err := b.store.WriteFile(b.name, data); err != nil {
		return fmt.Errorf("write %s: %w", b.name, err)
	}
	return nil
}

func (b *FileBackend) Close() error { return nil }
