package app

import (
	"fmt"

	"github.com/evanschultz/ideas/internal/domain"
)

// Store owns the ordered idea list and the currently selected index.
// It only mutates memory; persistence is the Service's concern.
type Store struct {
	ideas  []domain.Idea
	active int
}

// NewStore constructs a store holding a copy of ideas.
func NewStore(ideas []domain.Idea) *Store {
	return &Store{ideas: append([]domain.Idea(nil), ideas...)}
}

// Len returns the number of ideas.
func (s *Store) Len() int {
	return len(s.ideas)
}

// Ideas returns a copy of the list in display order.
func (s *Store) Ideas() []domain.Idea {
	return append([]domain.Idea(nil), s.ideas...)
}

// Idea returns the idea at index.
func (s *Store) Idea(index int) (domain.Idea, bool) {
	if index < 0 || index >= len(s.ideas) {
		return domain.Idea{}, false
	}
	return s.ideas[index], true
}

// Active returns the selected index.
func (s *Store) Active() int {
	return s.active
}

// Select sets the selected index without bounds checks; callers keep it in range.
func (s *Store) Select(index int) {
	s.active = index
}

// ClampActive pulls the selected index back into range, or to 0 for an empty list.
func (s *Store) ClampActive() {
	switch {
	case len(s.ideas) == 0, s.active < 0:
		s.active = 0
	case s.active >= len(s.ideas):
		s.active = len(s.ideas) - 1
	}
}

// Add appends an idea. Titles are not validated here.
func (s *Store) Add(title, description string) {
	s.ideas = append(s.ideas, domain.NewIdea(title, description))
}

// Remove deletes the idea at index and keeps the selection inside the shorter list.
func (s *Store) Remove(index int) error {
	if index < 0 || index >= len(s.ideas) {
		return fmt.Errorf("remove idea %d of %d: %w", index, len(s.ideas), domain.ErrIndexOutOfRange)
	}
	s.ideas = append(s.ideas[:index], s.ideas[index+1:]...)
	s.ClampActive()
	return nil
}

// Update overwrites the idea at index. It is a no-op on an empty list.
func (s *Store) Update(index int, title, description string) error {
	if len(s.ideas) == 0 {
		return nil
	}
	if index < 0 || index >= len(s.ideas) {
		return fmt.Errorf("update idea %d of %d: %w", index, len(s.ideas), domain.ErrIndexOutOfRange)
	}
	s.ideas[index] = domain.NewIdea(title, description)
	return nil
}
