package storage

import (
	"errors"
	"fmt"
	"mime"
	"strings"

	"github.com/gobwas/glob"
)

var (
	// ErrTooLarge is returned when an upload exceeds the size limit.
	ErrTooLarge = errors.New("file too large")

	// ErrTypeNotAllowed is returned when an upload's content type is not
	// accepted.
	ErrTypeNotAllowed = errors.New("file type not allowed")
)

// Policy restricts what may be uploaded.
type Policy struct {
	MaxSize int64
	types   []glob.Glob
}

// NewPolicy compiles a policy from content type glob patterns such as
// "image/*". No patterns means every type is accepted.
func NewPolicy(maxSize int64, patterns []string) (*Policy, error) {
	p := &Policy{MaxSize: maxSize}
	for _, pattern := range patterns {
		g, err := glob.Compile(strings.ToLower(strings.TrimSpace(pattern)), '/')
		if err != nil {
			return nil, fmt.Errorf("invalid content type pattern %q: %w", pattern, err)
		}
		p.types = append(p.types, g)
	}
	return p, nil
}

// AllowType reports whether the content type is accepted. Parameters such
// as charset are ignored.
func (p *Policy) AllowType(contentType string) bool {
	if len(p.types) == 0 {
		return true
	}
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	for _, g := range p.types {
		if g.Match(mt) {
			return true
		}
	}
	return false
}

// Check validates an upload of the given size and content type. A negative
// size means unknown.
func (p *Policy) Check(size int64, contentType string) error {
	if p.MaxSize > 0 && size > p.MaxSize {
		return ErrTooLarge
	}
	if !p.AllowType(contentType) {
		return fmt.Errorf("%w: %s", ErrTypeNotAllowed, contentType)
	}
	return nil
}
