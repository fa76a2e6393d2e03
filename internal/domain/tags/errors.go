package tags

import (
	"errors"
	"fmt"
)

// Tag errors
var (
	ErrInvalidTag       = errors.New("invalid tag")
	ErrEmpty            = errors.New("tag is empty")
	ErrStartsWithDot    = errors.New("tag starts with a dot")
	ErrEndsWithDot      = errors.New("tag ends with a dot")
	ErrRepeatedDot      = errors.New("tag contains repeated dots")
	ErrInvalidCharacter = errors.New("tag contains an invalid character")
	ErrAlreadyExists    = errors.New("tag already exists")
	ErrCorruptSnapshot  = errors.New("corrupt registry snapshot")
)

// Reason identifies why a tag string was rejected.
type Reason int

const (
	ReasonEmpty Reason = iota
	ReasonStartsWithDot
	ReasonEndsWithDot
	ReasonRepeatedDot
	ReasonInvalidCharacter
	ReasonAlreadyExists
)

func (r Reason) String() string {
	switch r {
	case ReasonEmpty:
		return "Empty"
	case ReasonStartsWithDot:
		return "StartsWithDot"
	case ReasonEndsWithDot:
		return "EndsWithDot"
	case ReasonRepeatedDot:
		return "RepeatedDot"
	case ReasonInvalidCharacter:
		return "InvalidCharacter"
	case ReasonAlreadyExists:
		return "AlreadyExists"
	default:
		return "Unknown"
	}
}

func (r Reason) sentinel() error {
	switch r {
	case ReasonEmpty:
		return ErrEmpty
	case ReasonStartsWithDot:
		return ErrStartsWithDot
	case ReasonEndsWithDot:
		return ErrEndsWithDot
	case ReasonRepeatedDot:
		return ErrRepeatedDot
	case ReasonInvalidCharacter:
		return ErrInvalidCharacter
	case ReasonAlreadyExists:
		return ErrAlreadyExists
	default:
		return ErrInvalidTag
	}
}

// RegistrationError is returned when a tag string cannot be parsed or registered.
// It unwraps to the sentinel matching its Reason, so errors.Is(err, ErrRepeatedDot)
// works for callers that only care about the category.
type RegistrationError struct {
	Tag    string
	Reason Reason
	Pos    int // byte offset of the offending character, -1 when not applicable
}

func (e *RegistrationError) Error() string {
	if e.Pos >= 0 && e.Reason == ReasonInvalidCharacter {
		return fmt.Sprintf("cannot register %q: %v at position %d", e.Tag, e.Reason.sentinel(), e.Pos)
	}
	return fmt.Sprintf("cannot register %q: %v", e.Tag, e.Reason.sentinel())
}

func (e *RegistrationError) Unwrap() error {
	return e.Reason.sentinel()
}

// UnknownTagError is returned when a syntactically valid tag is not in the registry.
type UnknownTagError struct {
	Tag string
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("unknown tag %q", e.Tag)
}
