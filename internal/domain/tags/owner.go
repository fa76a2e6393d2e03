package tags

// Owner is implemented by anything that exposes a tag set.
// The query functions below derive every match operation from OwnedTags.
type Owner interface {
	OwnedTags() *Set
}

// Has reports a loose match: t is owned, or a registered descendant of t is owned.
// Owning "A.B.C" satisfies Has(A), Has(A.B) and Has(A.B.C); owning "A.B" does
// not satisfy Has(A.B.C).
func Has(o Owner, t Tag) bool {
	if !t.IsValid() {
		return false
	}
	set := o.OwnedTags()
	for _, owned := range set.tags {
		if owned == t || set.registry.IsDescendantOf(owned, t) {
			return true
		}
	}
	return false
}

// HasAny reports whether any tag loosely matches. An empty list never matches.
func HasAny(o Owner, ts []Tag) bool {
	for _, t := range ts {
		if Has(o, t) {
			return true
		}
	}
	return false
}

// HasAll reports whether every tag loosely matches. An empty list always matches.
func HasAll(o Owner, ts []Tag) bool {
	for _, t := range ts {
		if !Has(o, t) {
			return false
		}
	}
	return true
}

// HasNone reports whether no tag loosely matches.
func HasNone(o Owner, ts []Tag) bool {
	return !HasAny(o, ts)
}

// HasExact reports whether t is literally owned.
func HasExact(o Owner, t Tag) bool {
	return o.OwnedTags().Contains(t)
}

// HasAnyExact reports whether any tag is literally owned.
func HasAnyExact(o Owner, ts []Tag) bool {
	for _, t := range ts {
		if HasExact(o, t) {
			return true
		}
	}
	return false
}

// HasAllExact reports whether every tag is literally owned.
func HasAllExact(o Owner, ts []Tag) bool {
	for _, t := range ts {
		if !HasExact(o, t) {
			return false
		}
	}
	return true
}

// HasNoneExact reports whether no tag is literally owned.
func HasNoneExact(o Owner, ts []Tag) bool {
	return !HasAnyExact(o, ts)
}

// Matcher binds the query functions to one owner.
type Matcher struct {
	Owner Owner
}

// Match wraps o in a Matcher.
func Match(o Owner) Matcher {
	return Matcher{Owner: o}
}

func (m Matcher) Has(t Tag) bool { return Has(m.Owner, t) }
func (m Matcher) HasAny(ts ...Tag) bool { return HasAny(m.Owner, ts) }
func (m Matcher) HasAll(ts ...Tag) bool { return HasAll(m.Owner, ts) }
func (m Matcher) HasNone(ts ...Tag) bool { return HasNone(m.Owner, ts) }
func (m Matcher) HasExact(t Tag) bool { return HasExact(m.Owner, t) }
func (m Matcher) HasAnyExact(ts ...Tag) bool { return HasAnyExact(m.Owner, ts) }
func (m Matcher) HasAllExact(ts ...Tag) bool { return HasAllExact(m.Owner, ts) }
func (m Matcher) HasNoneExact(ts ...Tag) bool { return HasNoneExact(m.Owner, ts) }

// The *Of variants take another owner's tags as the list.

func (m Matcher) HasAnyOf(other Owner) bool { return HasAny(m.Owner, other.OwnedTags().tags) }
func (m Matcher) HasAllOf(other Owner) bool { return HasAll(m.Owner, other.OwnedTags().tags) }
func (m Matcher) HasNoneOf(other Owner) bool { return HasNone(m.Owner, other.OwnedTags().tags) }

func (m Matcher) HasAnyExactOf(other Owner) bool {
	return HasAnyExact(m.Owner, other.OwnedTags().tags)
}

func (m Matcher) HasAllExactOf(other Owner) bool {
	return HasAllExact(m.Owner, other.OwnedTags().tags)
}

func (m Matcher) HasNoneExactOf(other Owner) bool {
	return HasNoneExact(m.Owner, other.OwnedTags().tags)
}
