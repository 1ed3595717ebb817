// Package memory keeps links in process memory. It backs the development setup
// and tests that need a working backend without a database.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/nexxeln/website/internal/models"
)

type LinkRepository struct {
	mu     sync.RWMutex
	links  map[string]models.Link
	lastID int64
	now    func() time.Time
}

func NewLinkRepository() *LinkRepository {
	return &LinkRepository{
		links: make(map[string]models.Link),
		now:   time.Now,
	}
}

func (r *LinkRepository) Create(ctx context.Context, slug, url string) (*models.Link, error) {
	const op = "database.memory.LinkRepository.Create"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.links[slug]; ok {
		return nil, fmt.Errorf("%s: %w", op, models.ErrSlugTaken)
	}

	r.lastID++
	now := r.now()
	link := models.Link{
		ID:        r.lastID,
		Slug:      slug,
		URL:       url,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.links[slug] = link

	return &link, nil
}

func (r *LinkRepository) Exists(ctx context.Context, slug string) (bool, error) {
	const op = "database.memory.LinkRepository.Exists"

	if err := ctx.Err(); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.links[slug]
	return ok, nil
}
