package memory

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/mkarpenko/url-shortener/internal/storage"
	"github.com/stretchr/testify/assert"
	"golang.org/x/sync/errgroup"
)

func TestURLRepository_Insert(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		repo := NewURLRepository()

		url, err := repo.Insert(context.TODO(), "Ab3Xy9", "https://example.com")

		assert.NoError(t, err)
		assert.NotNil(t, url)
		assert.Equal(t, "Ab3Xy9", url.ShortCode)
		assert.Equal(t, "https://example.com", url.OriginalURL)
		assert.Zero(t, url.ClickCount)
		assert.False(t, url.CreatedAt.IsZero())
	})

	t.Run("short code exists", func(t *testing.T) {
		repo := NewURLRepository()

		_, err := repo.Insert(context.TODO(), "Ab3Xy9", "https://example.com")
		assert.NoError(t, err)

		url, err := repo.Insert(context.TODO(), "Ab3Xy9", "https://example.org")

		assert.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrShortCodeExists)
		assert.Nil(t, url)

		got, err := repo.Get(context.TODO(), "Ab3Xy9")
		assert.NoError(t, err)
		assert.Equal(t, "https://example.com", got.OriginalURL)
	})

	t.Run("concurrent inserts of the same code have one winner", func(t *testing.T) {
		const n = 50

		repo := NewURLRepository()
		g := new(errgroup.Group)

		var won atomic.Int64

		for i := 0; i < n; i++ {
			g.Go(func() error {
				_, err := repo.Insert(context.TODO(), "Ab3Xy9", "https://example.com")
				if err == nil {
					won.Add(1)
					return nil
				}
				if errors.Is(err, storage.ErrShortCodeExists) {
					return nil
				}
				return err
			})
		}

		assert.NoError(t, g.Wait())
		assert.Equal(t, int64(1), won.Load())
	})
}

func TestURLRepository_Get(t *testing.T) {
	t.Run("url not found", func(t *testing.T) {
		repo := NewURLRepository()

		url, err := repo.Get(context.TODO(), "ZZZZZZ")

		assert.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrURLNotFound)
		assert.Nil(t, url)
	})

	t.Run("returned record is a copy", func(t *testing.T) {
		repo := NewURLRepository()

		_, err := repo.Insert(context.TODO(), "Ab3Xy9", "https://example.com")
		assert.NoError(t, err)

		url, err := repo.Get(context.TODO(), "Ab3Xy9")
		assert.NoError(t, err)

		url.ClickCount = 42

		got, err := repo.Get(context.TODO(), "Ab3Xy9")
		assert.NoError(t, err)
		assert.Zero(t, got.ClickCount)
	})
}

func TestURLRepository_IncrementClick(t *testing.T) {
	t.Run("url not found", func(t *testing.T) {
		repo := NewURLRepository()

		url, err := repo.IncrementClick(context.TODO(), "ZZZZZZ")

		assert.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrURLNotFound)
		assert.Nil(t, url)
	})

	t.Run("success", func(t *testing.T) {
		repo := NewURLRepository()

		created, err := repo.Insert(context.TODO(), "Ab3Xy9", "https://example.com")
		assert.NoError(t, err)

		url, err := repo.IncrementClick(context.TODO(), "Ab3Xy9")

		assert.NoError(t, err)
		assert.Equal(t, int64(1), url.ClickCount)
		assert.Equal(t, created.CreatedAt, url.CreatedAt)
	})

	t.Run("concurrent increments lose no updates", func(t *testing.T) {
		const n = 100

		repo := NewURLRepository()

		_, err := repo.Insert(context.TODO(), "Ab3Xy9", "https://example.com")
		assert.NoError(t, err)

		g := new(errgroup.Group)
		for i := 0; i < n; i++ {
			g.Go(func() error {
				_, err := repo.IncrementClick(context.TODO(), "Ab3Xy9")
				return err
			})
		}
		assert.NoError(t, g.Wait())

		url, err := repo.Get(context.TODO(), "Ab3Xy9")
		assert.NoError(t, err)
		assert.Equal(t, int64(n), url.ClickCount)
	})
}
