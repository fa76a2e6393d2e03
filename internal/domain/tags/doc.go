// Package tags implements the domain layer for the hierarchical tag taxonomy.
//
// This package follows the same layering rules as the rest of the domain:
//   - Contains only pure Go code with standard library imports (no external dependencies)
//   - Defines value objects (Tag) and entities (Registry, Set, Entity)
//   - Implements domain logic (hierarchy decomposition, branch-exclusive sets, loose/exact matching)
//   - Has no knowledge of infrastructure concerns (file I/O, YAML parsing, databases)
//
// # Core Types
//
// Tag is an immutable dot-delimited identifier such as "Enemy.Flying.Boss".
// A Tag can only be obtained through Parse (syntax check) or Registry.Lookup
// (known-tag check); an unchecked string never silently becomes a Tag.
//
// Registry is the forest of all known tags. It validates and registers new
// tags, answers ancestor/descendant queries and removes subtrees. Registries
// are plain values created with NewRegistry; there is no package-level
// singleton, so tests and hosts construct isolated registries.
//
// Set is an entity-owned collection of tags that never holds two tags on the
// same branch: adding a tag drops every ancestor and descendant already in the
// set, so the most recently added tag on a branch wins.
//
// Owner is the capability implemented by anything that exposes a Set. The
// Has* functions answer loose (hierarchy-aware) queries and the HasExact*
// functions answer literal membership queries.
//
// # Concurrency
//
// None of the types in this package are safe for concurrent use. A Registry
// and the Sets that consult it must be used from a single goroutine, or the
// caller must serialise access externally.
package tags
