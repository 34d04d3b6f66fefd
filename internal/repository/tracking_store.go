package repository

import (
	"context"
	"os"

	"github.com/frontboat/agent-gmx-sub000/internal/domain/models"
	domrepo "github.com/frontboat/agent-gmx-sub000/internal/domain/repository"
	"github.com/frontboat/agent-gmx-sub000/pkg/fsio"
)

// FileTrackingStore persists the signal tracking log as a JSON array. This
// engine is the sole writer; Save goes through the atomic temp-then-rename
// path so concurrent readers never see a torn file.
type FileTrackingStore struct {
	path string
}

var _ domrepo.TrackingStore = (*FileTrackingStore)(nil)

func NewFileTrackingStore(path string) *FileTrackingStore {
	return &FileTrackingStore{path: path}
}

func (s *FileTrackingStore) Load(ctx context.Context) ([]models.TrackingEntry, error) {
	var entries []models.TrackingEntry
	if err := fsio.ReadJSON(s.path, &entries); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return entries, nil
}

func (s *FileTrackingStore) Save(ctx context.Context, entries []models.TrackingEntry) error {
	return fsio.WriteJSONAtomic(s.path, entries)
}
