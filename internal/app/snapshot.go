package app

import (
	"context"
	"fmt"
	"time"

	"github.com/evanschultz/ideas/internal/domain"
)

// SnapshotVersion defines a package constant value.
const SnapshotVersion = "ideas.snapshot.v1"

// Snapshot is a portable copy of the persisted list and selection.
type Snapshot struct {
	Version     string        `json:"version"`
	ExportedAt  time.Time     `json:"exported_at"`
	ActiveIndex int           `json:"active_index"`
	Ideas       []domain.Idea `json:"ideas"`
}

// ExportSnapshot reads the persisted state. It does not require Load.
func (s *Service) ExportSnapshot(ctx context.Context) (Snapshot, error) {
	ideas, err := s.repo.LoadIdeas(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load ideas: %w", err)
	}
	active, err := s.repo.LoadActiveIndex(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load active index: %w", err)
	}
	store := NewStore(ideas)
	store.Select(active)
	store.ClampActive()

	return Snapshot{
		Version:     SnapshotVersion,
		ExportedAt:  s.clock().UTC(),
		ActiveIndex: store.Active(),
		Ideas:       store.Ideas(),
	}, nil
}

// ImportSnapshot replaces the persisted list and selection. A loaded store is
// replaced as well.
func (s *Service) ImportSnapshot(ctx context.Context, snap Snapshot) error {
	if err := snap.Validate(); err != nil {
		return err
	}
	if err := s.repo.SaveIdeas(ctx, snap.Ideas); err != nil {
		return fmt.Errorf("save ideas: %w", err)
	}
	if err := s.repo.SaveActiveIndex(ctx, snap.ActiveIndex); err != nil {
		return fmt.Errorf("save active index: %w", err)
	}
	if s.store != nil {
		store := NewStore(snap.Ideas)
		store.Select(snap.ActiveIndex)
		s.store = store
	}
	return nil
}

// Validate checks the version and that the selection points into the list.
func (s *Snapshot) Validate() error {
	if s.Version != "" && s.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version: %q", s.Version)
	}
	if s.Ideas == nil {
		s.Ideas = []domain.Idea{}
	}
	last := max(0, len(s.Ideas)-1)
	if s.ActiveIndex < 0 || s.ActiveIndex > last {
		return fmt.Errorf("snapshot active_index %d of %d ideas: %w", s.ActiveIndex, len(s.Ideas), domain.ErrIndexOutOfRange)
	}
	return nil
}
