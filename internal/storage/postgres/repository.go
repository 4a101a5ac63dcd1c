package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/mkarpenko/url-shortener/internal/models"
	"github.com/mkarpenko/url-shortener/internal/storage"
)

type urlRecord struct {
	ShortCode   string    `db:"short_code"`
	OriginalURL string    `db:"original_url"`
	ClickCount  int64     `db:"click_count"`
	CreatedAt   time.Time `db:"created_at"`
}

func (r *urlRecord) ToURL() *models.URL {
	return &models.URL{
		ShortCode:   r.ShortCode,
		OriginalURL: r.OriginalURL,
		ClickCount:  r.ClickCount,
		CreatedAt:   r.CreatedAt,
	}
}

// URLRepository stores URL records in PostgreSQL. Insert uniqueness and
// click counting both rely on the engine, so concurrent callers never see
// partial state: the primary key rejects duplicate codes atomically, and
// increments happen inside a single UPDATE.
type URLRepository struct {
	db *sqlx.DB
}

func NewURLRepository(db *sqlx.DB) *URLRepository {
	return &URLRepository{
		db: db,
	}
}

// Insert creates a new record. It returns storage.ErrShortCodeExists when
// the short code is already taken; nothing is written in that case.
func (r *URLRepository) Insert(ctx context.Context, shortCode, originalURL string) (*models.URL, error) {
	const op = "storage.postgres.URLRepository.Insert"

	rec := new(urlRecord)
	query := `INSERT INTO urls(short_code, original_url)
		VALUES ($1, $2)
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, shortCode, originalURL)
	if err != nil {
		if isUniqueViolationError(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrShortCodeExists)
		}

		return nil, fmt.Errorf("%s: failed to insert url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

// Get returns the record for shortCode without touching its click count.
func (r *URLRepository) Get(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "storage.postgres.URLRepository.Get"

	rec := new(urlRecord)
	query := `SELECT * FROM urls WHERE short_code = $1`

	err := r.db.GetContext(ctx, rec, query, shortCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to get url record: %w", op, err)
	}

	return rec.ToURL(), nil
}

// IncrementClick adds 1 to the click count of shortCode and returns the
// updated record. The read-modify-write happens inside one UPDATE, so
// concurrent increments on the same code never lose updates.
func (r *URLRepository) IncrementClick(ctx context.Context, shortCode string) (*models.URL, error) {
	const op = "storage.postgres.URLRepository.IncrementClick"

	rec := new(urlRecord)
	query := `UPDATE urls
		SET click_count = click_count + 1
		WHERE short_code = $1
		RETURNING *`

	err := r.db.GetContext(ctx, rec, query, shortCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrURLNotFound)
		}

		return nil, fmt.Errorf("%s: failed to increment click count: %w", op, err)
	}

	return rec.ToURL(), nil
}
