package app

import (
	"context"
	"fmt"
	"time"
)

// Service couples the in-memory store with its persistence collaborator.
type Service struct {
	repo  Repository
	store *Store
	clock func() time.Time
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithClock sets the time source used for snapshot timestamps.
func WithClock(clock func() time.Time) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService constructs a new value for this package.
func NewService(repo Repository, opts ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, ErrNoRepository
	}
	s := &Service{repo: repo, clock: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Load reads the persisted list and selection. A persisted index beyond the list is clamped.
func (s *Service) Load(ctx context.Context) (*Store, error) {
	ideas, err := s.repo.LoadIdeas(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ideas: %w", err)
	}
	active, err := s.repo.LoadActiveIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active index: %w", err)
	}
	store := NewStore(ideas)
	store.Select(active)
	store.ClampActive()
	s.store = store
	return store, nil
}

// Store returns the loaded store.
func (s *Service) Store() (*Store, error) {
	if s.store == nil {
		return nil, ErrNotLoaded
	}
	return s.store, nil
}

// Persist rewrites the full idea list.
func (s *Service) Persist(ctx context.Context) error {
	if s.store == nil {
		return ErrNotLoaded
	}
	if err := s.repo.SaveIdeas(ctx, s.store.Ideas()); err != nil {
		return fmt.Errorf("save ideas: %w", err)
	}
	return nil
}

// PersistActiveIndex writes the selected index.
func (s *Service) PersistActiveIndex(ctx context.Context) error {
	if s.store == nil {
		return ErrNotLoaded
	}
	if err := s.repo.SaveActiveIndex(ctx, s.store.Active()); err != nil {
		return fmt.Errorf("save active index: %w", err)
	}
	return nil
}
