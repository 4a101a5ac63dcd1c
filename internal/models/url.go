package models

import "time"

// URL represents a shortened URL and its click statistics.
type URL struct {
	// ShortCode is the 6-character code associated with the original URL.
	// It is the primary key of the record and never changes after creation.
	ShortCode string
	// OriginalURL is the full URL that the short code resolves to.
	OriginalURL string
	// ClickCount tracks how many times the short code has been resolved
	// via redirect. It only ever increases.
	ClickCount int64
	// CreatedAt is the timestamp indicating when the record was created.
	CreatedAt time.Time
}
