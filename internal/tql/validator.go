package tql

import (
	"errors"
	"fmt"

	"github.com/brezhnevtusks/Unidork-sub000/internal/domain/tags"
)

// Validate checks e for authoring mistakes: malformed nodes, invalid tags,
// and tags reg does not know. Every problem is reported, joined.
// Evaluation never consults a registry; this is an authoring-time check.
func Validate(e *Expression, reg *tags.Registry) error {
	var errs []error
	e.Walk(func(path string, node *Expression) bool {
		if err := checkNode(path, node); err != nil {
			errs = append(errs, err)
			return false
		}
		for i, t := range node.Tags {
			switch {
			case !t.IsValid():
				errs = append(errs, fmt.Errorf("%s tag %d: %w", path, i, tags.ErrInvalidTag))
			case reg != nil && !reg.IsKnown(t):
				errs = append(errs, fmt.Errorf("%s: %w", path, &tags.UnknownTagError{Tag: t.String()}))
			}
		}
		return true
	})
	return errors.Join(errs...)
}
