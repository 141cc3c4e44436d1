package param

import (
	"strings"
)

const (
	// Boundary is the name of the boundary parameter that may be present in the
	// Content-type header.
	Boundary = "boundary"

	// Type is the name of the type parameter used by multipart/related to name
	// the media type of the root part.
	Type = "type"

	// Charset is the name of the charset parameter that may be present in the
	// Content-type header.
	Charset = "charset"

	// TransferSyntax is the name of the transfer-syntax parameter DICOMweb
	// attaches to application/dicom parts.
	TransferSyntax = "transfer-syntax"
)

// Param is a single parameter from a parameterized header. Name is always
// lower-cased. Value is unquoted and unescaped. A bare token (a flag, or the
// media type at the front of a Content-type) has an empty Value.
type Param struct {
	Name  string
	Value string
}

// Group is the ordered list of parameters found between two top-level commas.
type Group []Param

// Get returns the first non-empty value for the named parameter in this group.
func (g Group) Get(name string) string {
	name = strings.ToLower(name)
	for _, p := range g {
		if p.Name == name && p.Value != "" {
			return p.Value
		}
	}
	return ""
}

// Has returns true if the named parameter or bare flag appears in this group.
func (g Group) Has(name string) bool {
	name = strings.ToLower(name)
	for _, p := range g {
		if p.Name == name {
			return true
		}
	}
	return false
}

// Set is the parsed form of a parameterized header value: one Group per
// comma-separated top-level group, in the order encountered.
type Set []Group

// HasKey returns true if name appears as a parameter name or as a bare flag in
// any group.
func (s Set) HasKey(name string) bool {
	for _, g := range s {
		if g.Has(name) {
			return true
		}
	}
	return false
}

// Value returns the first non-empty value for the named parameter across all
// groups, in encounter order. It returns an empty string when there is no
// match.
func (s Set) Value(name string) string {
	for _, g := range s {
		if v := g.Get(name); v != "" {
			return v
		}
	}
	return ""
}

// Values returns every non-empty value for the named parameter across all
// groups, in encounter order.
func (s Set) Values(name string) []string {
	name = strings.ToLower(name)

	var vs []string
	for _, g := range s {
		for _, p := range g {
			if p.Name == name && p.Value != "" {
				vs = append(vs, p.Value)
			}
		}
	}
	return vs
}

// MediaType returns the first bare token containing a slash, e.g.,
// "multipart/related". Returns an empty string if there is none.
func (s Set) MediaType() string {
	for _, g := range s {
		for _, p := range g {
			if p.Value == "" && strings.ContainsRune(p.Name, '/') {
				return p.Name
			}
		}
	}
	return ""
}

// Boundary returns the value of the "boundary" parameter.
func (s Set) Boundary() string {
	return s.Value(Boundary)
}

// Type returns the value of the "type" parameter.
func (s Set) Type() string {
	return s.Value(Type)
}

// Charset returns the value of the "charset" parameter.
func (s Set) Charset() string {
	return s.Value(Charset)
}
