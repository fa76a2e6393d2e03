package tags

import (
	"strings"
)

// Separator delimits the segments of a hierarchical tag.
const Separator = "."

// Tag is an immutable hierarchical identifier in the form Segment(.Segment)*.
// The zero value is the invalid tag.
type Tag struct {
	name string
}

// Parse checks the syntax of s and returns it as a Tag.
// It does not consult any registry; use Registry.Lookup to require a known tag.
func Parse(s string) (Tag, error) {
	if err := checkSyntax(s); err != nil {
		return Tag{}, err
	}
	return Tag{name: s}, nil
}

// MustParse is like Parse but panics on error. Intended for literals and tests.
func MustParse(s string) Tag {
	t, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseAll parses every string, stopping at the first error.
func ParseAll(values ...string) ([]Tag, error) {
	out := make([]Tag, 0, len(values))
	for _, v := range values {
		t, err := Parse(v)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// checkSyntax applies the registration format rules, in the order the
// registry reports them.
func checkSyntax(s string) error {
	switch {
	case s == "":
		return &RegistrationError{Tag: s, Reason: ReasonEmpty, Pos: -1}
	case strings.HasPrefix(s, Separator):
		return &RegistrationError{Tag: s, Reason: ReasonStartsWithDot, Pos: 0}
	case strings.HasSuffix(s, Separator):
		return &RegistrationError{Tag: s, Reason: ReasonEndsWithDot, Pos: len(s) - 1}
	case strings.Contains(s, Separator+Separator):
		return &RegistrationError{Tag: s, Reason: ReasonRepeatedDot, Pos: strings.Index(s, Separator+Separator)}
	}
	for i := 0; i < len(s); i++ {
		if !isTagChar(s[i]) {
			return &RegistrationError{Tag: s, Reason: ReasonInvalidCharacter, Pos: i}
		}
	}
	return nil
}

// isTagChar returns true for [A-Za-z0-9.].
func isTagChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '.'
}

// String returns the full dotted name.
func (t Tag) String() string {
	return t.name
}

// IsValid reports whether the tag holds a non-empty name.
func (t Tag) IsValid() bool {
	return t.name != ""
}

// Equal reports whether both tags are valid and share the same name.
// An invalid tag never equals anything, including another invalid tag.
func (t Tag) Equal(other Tag) bool {
	return t.IsValid() && t.name == other.name
}

// Compare orders tags lexicographically by name.
func (t Tag) Compare(other Tag) int {
	return strings.Compare(t.name, other.name)
}

// Depth is the number of separators in the name. Root tags have depth 0.
func (t Tag) Depth() int {
	return strings.Count(t.name, Separator)
}

// IsRoot reports whether the tag has no parent segment.
func (t Tag) IsRoot() bool {
	return t.IsValid() && t.Depth() == 0
}

// Name returns the individual name: the segment after the last separator.
func (t Tag) Name() string {
	if i := strings.LastIndex(t.name, Separator); i >= 0 {
		return t.name[i+1:]
	}
	return t.name
}

// Parent returns the tag formed by dropping the last segment.
// Root and invalid tags return the invalid tag.
func (t Tag) Parent() Tag {
	if i := strings.LastIndex(t.name, Separator); i >= 0 {
		return Tag{name: t.name[:i]}
	}
	return Tag{}
}

// Parts returns the progressively longer prefixes of the tag, root first,
// ending with the tag itself. "A.B.C" yields [A, A.B, A.B.C].
func (t Tag) Parts() []Tag {
	if !t.IsValid() {
		return nil
	}
	parts := make([]Tag, 0, t.Depth()+1)
	for i := 0; i < len(t.name); i++ {
		if t.name[i] == '.' {
			parts = append(parts, Tag{name: t.name[:i]})
		}
	}
	return append(parts, t)
}

// AncestorParts returns Parts without the tag itself.
func (t Tag) AncestorParts() []Tag {
	parts := t.Parts()
	if len(parts) == 0 {
		return nil
	}
	return parts[:len(parts)-1]
}

// Child returns the tag formed by appending segment. The result is not validated.
func (t Tag) Child(segment string) Tag {
	if !t.IsValid() {
		return Tag{name: segment}
	}
	return Tag{name: t.name + Separator + segment}
}

// MarshalText implements encoding.TextMarshaler.
func (t Tag) MarshalText() ([]byte, error) {
	return []byte(t.name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. The text must pass Parse.
func (t *Tag) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Strings converts tags to their names.
func Strings(ts []Tag) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.name
	}
	return out
}
