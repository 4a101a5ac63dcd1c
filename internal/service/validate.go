package service

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when the submitted URL is missing, malformed,
// or uses an unsupported scheme.
var ErrInvalidURL = errors.New("invalid url")

// normalizeURL trims surrounding whitespace and checks that raw is an
// absolute http or https URL with a non-empty host. The scheme and host
// are lowercased; the path, query and fragment are preserved verbatim.
func normalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: url is empty", ErrInvalidURL)
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return "", fmt.Errorf("%w: scheme must be http or https", ErrInvalidURL)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("%w: host is empty", ErrInvalidURL)
	}

	parsed.Scheme = scheme
	parsed.Host = strings.ToLower(parsed.Host)

	return parsed.String(), nil
}
