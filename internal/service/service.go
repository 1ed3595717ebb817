package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/nexxeln/website/internal/models"
	"github.com/nexxeln/website/internal/slug"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// generatedSlugAlphabet keeps generated slugs inside the slug alphabet and already lowercase.
const generatedSlugAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// ErrMaxRetriesExceeded is returned when the maximum number of retries for generating a slug is exceeded.
var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating slug")

// LinkRepository defines the storage operations the link service relies on.
type LinkRepository interface {
	// Create inserts a new link. Returns models.ErrSlugTaken if the slug is already assigned.
	Create(ctx context.Context, slug, url string) (*models.Link, error)

	// Exists reports whether a link with the slug is stored.
	Exists(ctx context.Context, slug string) (bool, error)
}

// LinkService implements the availability check and link creation behind the website's shortener form.
type LinkService struct {
	repo                LinkRepository
	generatedSlugLength int
}

// NewLinkService creates a new instance of LinkService. generatedSlugLength is the
// starting length of slugs generated for requests that do not choose one.
func NewLinkService(repo LinkRepository, generatedSlugLength int) *LinkService {
	return &LinkService{
		repo:                repo,
		generatedSlugLength: generatedSlugLength,
	}
}

// CheckSlug reports whether s is already assigned. The check is advisory: the slug may
// be taken between the check and a later CreateLink.
func (s *LinkService) CheckSlug(ctx context.Context, value string) (bool, error) {
	const op = "service.LinkService.CheckSlug"

	value = slug.Normalize(value)
	if !slug.Valid(value) {
		return false, fmt.Errorf("%s: %w", op, slug.ErrInvalid)
	}

	used, err := s.repo.Exists(ctx, value)
	if err != nil {
		return false, fmt.Errorf("%s: failed to check slug: %w", op, err)
	}

	return used, nil
}

// CreateLink stores a link from value to url. An empty value gets a generated slug.
func (s *LinkService) CreateLink(ctx context.Context, value, url string) (*models.Link, error) {
	const op = "service.LinkService.CreateLink"

	if value == "" {
		return s.createGenerated(ctx, url)
	}

	value = slug.Normalize(value)
	if !slug.Valid(value) {
		return nil, fmt.Errorf("%s: %w", op, slug.ErrInvalid)
	}

	link, err := s.repo.Create(ctx, value, url)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create link: %w", op, err)
	}

	return link, nil
}

// createGenerated retries on collisions, growing the slug by one character each time.
func (s *LinkService) createGenerated(ctx context.Context, url string) (*models.Link, error) {
	const op = "service.LinkService.createGenerated"
	const maxRetries = 5

	length := s.generatedSlugLength

	for i := 0; i < maxRetries; i++ {
		if length > slug.MaxLength {
			length = slug.MaxLength
		}

		value, err := gonanoid.Generate(generatedSlugAlphabet, length)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate slug: %w", op, err)
		}

		link, err := s.repo.Create(ctx, value, url)
		if err != nil {
			if errors.Is(err, models.ErrSlugTaken) {
				length++
				continue
			}

			return nil, fmt.Errorf("%s: failed to create link: %w", op, err)
		}

		return link, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}
