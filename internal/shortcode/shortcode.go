// Package shortcode generates random short codes.
//
// Generation is pure: the generator never consults the store. Uniqueness is
// enforced at insertion time by the store's primary key, and the caller
// retries with a fresh code on conflict.
package shortcode

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Alphabet is the set of symbols short codes are drawn from.
const Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// Length is the fixed length of every generated short code. With a
// 62-symbol alphabet this gives roughly 5.7e10 possible codes, so
// collisions stay rare relative to any realistic table size.
const Length = 6

// Generator produces random short codes of a fixed length.
type Generator struct {
	length int
}

// New returns a generator producing codes of the default length.
func New() *Generator {
	return &Generator{length: Length}
}

// Generate returns a new random code drawn uniformly from Alphabet.
func (g *Generator) Generate() (string, error) {
	const op = "shortcode.Generator.Generate"

	code, err := gonanoid.Generate(Alphabet, g.length)
	if err != nil {
		return "", fmt.Errorf("%s: failed to generate short code: %w", op, err)
	}

	return code, nil
}

// Valid reports whether s has the exact shape of a generated short code:
// Length characters, each from Alphabet.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}

	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('A' <= c && c <= 'Z' || 'a' <= c && c <= 'z' || '0' <= c && c <= '9') {
			return false
		}
	}

	return true
}
