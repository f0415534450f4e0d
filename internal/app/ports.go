package app

import (
	"context"

	"github.com/evanschultz/ideas/internal/domain"
)

// Repository persists the idea list and the last selected index.
type Repository interface {
	LoadIdeas(context.Context) ([]domain.Idea, error)
	SaveIdeas(context.Context, []domain.Idea) error
	LoadActiveIndex(context.Context) (int, error)
	SaveActiveIndex(context.Context, int) error
}
