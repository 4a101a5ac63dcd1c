// Package memory provides an in-process URL store. It is used for local
// development and tests where a database is not available.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mkarpenko/url-shortener/internal/models"
	"github.com/mkarpenko/url-shortener/internal/storage"
)

// URLRepository stores URL records in a map guarded by a RWMutex. All
// mutations take the write lock, so insert-if-absent and increment are
// single atomic steps; reads share the read lock and never observe a
// half-applied write.
type URLRepository struct {
	mu   sync.RWMutex
	urls map[string]*models.URL
}

func NewURLRepository() *URLRepository {
	return &URLRepository{
		urls: make(map[string]*models.URL),
	}
}

// Insert creates a new record. It returns storage.ErrShortCodeExists when
// the short code is already taken; nothing is written in that case.
func (r *URLRepository) Insert(_ context.Context, shortCode, originalURL string) (*models.URL, error) {
	const op = "storage.memory.URLRepository.Insert"

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.urls[shortCode]; ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrShortCodeExists)
	}

	url := &models.URL{
		ShortCode:   shortCode,
		OriginalURL: originalURL,
		CreatedAt:   time.Now().UTC(),
	}
	r.urls[shortCode] = url

	return copyURL(url), nil
}

// Get returns the record for shortCode without touching its click count.
func (r *URLRepository) Get(_ context.Context, shortCode string) (*models.URL, error) {
	const op = "storage.memory.URLRepository.Get"

	r.mu.RLock()
	defer r.mu.RUnlock()

	url, ok := r.urls[shortCode]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrURLNotFound)
	}

	return copyURL(url), nil
}

// IncrementClick adds 1 to the click count of shortCode and returns the
// updated record.
func (r *URLRepository) IncrementClick(_ context.Context, shortCode string) (*models.URL, error) {
	const op = "storage.memory.URLRepository.IncrementClick"

	r.mu.Lock()
	defer r.mu.Unlock()

	url, ok := r.urls[shortCode]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrURLNotFound)
	}

	url.ClickCount++

	return copyURL(url), nil
}

// copyURL keeps callers from mutating the stored record through the
// returned pointer.
func copyURL(url *models.URL) *models.URL {
	cp := *url
	return &cp
}
