// Package service contains the core business logic for shortening URLs,
// resolving short codes and reporting click statistics.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/mkarpenko/url-shortener/internal/models"
	"github.com/mkarpenko/url-shortener/internal/storage"
)

// ErrMaxRetriesExceeded is returned when the maximum number of attempts at
// generating a unique short code is exceeded. The request as a whole is
// safe to retry.
var ErrMaxRetriesExceeded = errors.New("maximum retries exceeded for generating short code")

// maxShortenAttempts bounds the generate-and-insert loop of ShortenURL.
const maxShortenAttempts = 10

// URLStore defines the storage operations required by the service. Every
// implementation must make each operation atomic with respect to
// concurrent callers.
type URLStore interface {
	// Insert creates a new record for the code->URL mapping. It returns
	// storage.ErrShortCodeExists if the short code is already taken,
	// leaving the store unchanged.
	Insert(ctx context.Context, shortCode, originalURL string) (*models.URL, error)

	// Get returns the record for shortCode, or storage.ErrURLNotFound.
	// It does not modify the record.
	Get(ctx context.Context, shortCode string) (*models.URL, error)

	// IncrementClick atomically adds 1 to the click count of shortCode
	// and returns the updated record, or storage.ErrURLNotFound.
	IncrementClick(ctx context.Context, shortCode string) (*models.URL, error)
}

// CodeGenerator produces candidate short codes. Generation is pure;
// uniqueness is settled by URLStore.Insert.
type CodeGenerator interface {
	Generate() (string, error)
}

// URLService provides methods to manage URL shortening operations.
type URLService struct {
	store URLStore
	gen   CodeGenerator
}

// NewURLService creates a new URLService backed by the provided store and
// code generator.
func NewURLService(store URLStore, gen CodeGenerator) *URLService {
	return &URLService{
		store: store,
		gen:   gen,
	}
}

// ShortenURL validates and normalizes originalURL, then allocates a unique
// short code for it. On a short code collision it retries with a fresh code,
// up to maxShortenAttempts times; no record is created when it fails.
//
// Shortening is deliberately not idempotent: submitting the same URL twice
// produces two distinct codes and two distinct records.
func (s *URLService) ShortenURL(ctx context.Context, originalURL string) (*models.URL, error) {
	const op = "service.URLService.ShortenURL"

	normalized, err := normalizeURL(originalURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	for i := 0; i < maxShortenAttempts; i++ {
		shortCode, err := s.gen.Generate()
		if err != nil {
			return nil, fmt.Errorf("%s: failed to generate short code: %w", op, err)
		}

		url, err := s.store.Insert(ctx, shortCode, normalized)
		if err != nil {
			if errors.Is(err, storage.ErrShortCodeExists) {
				continue
			}

			return nil, fmt.Errorf("%s: failed to shorten url: %w", op, err)
		}

		return url, nil
	}

	return nil, fmt.Errorf("%s: %w", op, ErrMaxRetriesExceeded)
}

// ResolveShortCode returns the record for shortCode, counting the visit.
// The increment happens before the result is returned, as a single atomic
// store operation, so concurrent redirects to the same code never lose
// clicks.
func (s *URLService) ResolveShortCode(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "service.URLService.ResolveShortCode"

	url, err := s.store.IncrementClick(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to resolve short code: %w", op, err)
	}

	return url, nil
}

// GetURLStats returns the record for shortCode without counting a visit.
func (s *URLService) GetURLStats(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "service.URLService.GetURLStats"

	url, err := s.store.Get(ctx, shortCode)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to get url stats: %w", op, err)
	}

	return url, nil
}
