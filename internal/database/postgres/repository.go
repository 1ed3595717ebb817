package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/nexxeln/website/internal/models"
)

type linkRecord struct {
	ID        int64     `db:"id"`
	Slug      string    `db:"slug"`
	URL       string    `db:"url"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func (r *linkRecord) ToLink() *models.Link {
	return &models.Link{
		ID:        r.ID,
		Slug:      r.Slug,
		URL:       r.URL,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type LinkRepository struct {
	db *sqlx.DB
}

func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{
		db: db,
	}
}

// Create inserts a link. The unique constraint on slug is the final arbiter
// between concurrent creators and is reported as models.ErrSlugTaken.
func (r *LinkRepository) Create(ctx context.Context, slug, url string) (*models.Link, error) {
	const op = "database.postgres.LinkRepository.Create"

	rec := new(linkRecord)
	query := `INSERT INTO links(slug, url)
		VALUES ($1, $2)
		RETURNING id, slug, url, created_at, updated_at`

	err := r.db.GetContext(ctx, rec, query, slug, url)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrSlugTaken)
		}

		return nil, fmt.Errorf("%s: failed to create link record: %w", op, err)
	}

	return rec.ToLink(), nil
}

func (r *LinkRepository) Exists(ctx context.Context, slug string) (bool, error) {
	const op = "database.postgres.LinkRepository.Exists"

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM links WHERE slug = $1)`

	if err := r.db.GetContext(ctx, &exists, query, slug); err != nil {
		return false, fmt.Errorf("%s: failed to check link record: %w", op, err)
	}

	return exists, nil
}
