package multipart

import (
	"math/rand"
	"strings"
)

// MaxBoundaryLength is the longest boundary permitted by RFC 2046.
const MaxBoundaryLength = 70

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

// GenerateBoundary will generate a random boundary that is probably unique
// in most circumstances.
func GenerateBoundary() string {
	s := make([]rune, 30)
	for i := range s {
		s[i] = letters[rand.Intn(len(letters))]
	}
	return string(s)
}

// ValidateBoundary returns ErrInvalidBoundary unless b is 1 to 70 characters
// from the RFC 2046 bchars set and does not end in a space.
func ValidateBoundary(b string) error {
	if len(b) < 1 || len(b) > MaxBoundaryLength {
		return ErrInvalidBoundary
	}

	if strings.HasSuffix(b, " ") {
		return ErrInvalidBoundary
	}

	for _, c := range b {
		if 'A' <= c && c <= 'Z' || 'a' <= c && c <= 'z' || '0' <= c && c <= '9' {
			continue
		}
		switch c {
		case '\'', '(', ')', '+', '_', ',', '-', '.', '/', ':', '=', '?', ' ':
			continue
		}
		return ErrInvalidBoundary
	}

	return nil
}
