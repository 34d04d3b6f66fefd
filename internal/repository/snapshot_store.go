package repository

import (
	"context"
	"os"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/frontboat/agent-gmx-sub000/internal/domain/models"
	domrepo "github.com/frontboat/agent-gmx-sub000/internal/domain/repository"
	"github.com/frontboat/agent-gmx-sub000/pkg/fsio"
	"github.com/frontboat/agent-gmx-sub000/pkg/logger"
)

const (
	snapshotReadRetries = 3
	snapshotReadBackoff = 100 * time.Millisecond
)

// FileSnapshotStore reads the forecast snapshot log written by the external
// ingestion process. The file holds a map of symbol to snapshot array.
// A missing or corrupt file degrades to empty history; transient read
// errors are retried before degrading.
type FileSnapshotStore struct {
	path     string
	validate *validator.Validate
	logger   *logger.Logger
}

var _ domrepo.SnapshotStore = (*FileSnapshotStore)(nil)

func NewFileSnapshotStore(path string, l *logger.Logger) *FileSnapshotStore {
	return &FileSnapshotStore{
		path:     path,
		validate: validator.New(),
		logger:   l,
	}
}

func (s *FileSnapshotStore) History(ctx context.Context, symbol string) ([]models.Snapshot, error) {
	var bySymbol map[string][]models.Snapshot

	var lastErr error
	for attempt := 0; attempt < snapshotReadRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		err := fsio.ReadJSON(s.path, &bySymbol)
		if err == nil {
			lastErr = nil
			break
		}
		if os.IsNotExist(err) {
			return nil, nil
		}
		lastErr = err
		time.Sleep(snapshotReadBackoff)
	}
	if lastErr != nil {
		// Corrupt or persistently unreadable file: treat as no data so the
		// caller produces a reasoned NEUTRAL rather than an error.
		s.logger.Warn("snapshot log unreadable, degrading to empty history",
			logger.String("path", s.path),
			logger.Error(lastErr),
		)
		return nil, nil
	}

	raw := bySymbol[symbol]
	out := make([]models.Snapshot, 0, len(raw))
	for _, snap := range raw {
		if err := s.validate.Struct(&snap); err != nil {
			s.logger.Debug("skipping invalid snapshot",
				logger.String("symbol", symbol),
				logger.Error(err),
			)
			continue
		}
		out = append(out, snap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}
