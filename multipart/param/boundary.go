package param

import "strings"

// ExtractBoundary returns the boundary parameter of contentType as bytes, but
// only if the required mediaType (e.g., "multipart/related") appears as a bare
// token in at least one group. The second return value is false if either is
// missing. This never fails: a header that cannot be understood simply has no
// boundary.
func ExtractBoundary(contentType, mediaType string) ([]byte, bool) {
	s := Parse(contentType)
	if !s.HasKey(strings.ToLower(strings.TrimSpace(mediaType))) {
		return nil, false
	}

	b := s.Boundary()
	if b == "" {
		return nil, false
	}

	return []byte(b), true
}
