// Package taxonomy implements the application layer for the tag taxonomy.
//
// Service is the single entry point used by the CLI and the file watcher. It
// owns the live tags.Registry and coordinates:
//   - persistence through the tags.TaxonomyRepository and tags.EntityRepository ports
//   - a read-through cache of entity records (internal/cachemanager)
//   - change notifications on a pubsub.Broker
//   - OpenTelemetry spans around every operation
//   - feature flags that switch cascade and strict-query behaviour
//
// # Taxonomy file
//
// The YAML taxonomy file lists full tag names, ancestors optional, and may
// carry named queries:
//
//	tags:
//	  - Enemy.Flying.Boss
//	  - Enemy.Ground
//	  - Player
//	queries:
//	  - name: bosses
//	    expression: any(Enemy.Flying.Boss)
//
// Import merges the file into the current registry. Reload replaces the
// registry with exactly what the file lists.
//
// # Concurrency
//
// The domain types are single-threaded. Service serialises access to its
// registry with a RWMutex because the watcher reloads the taxonomy while
// CLI-driven operations may be running.
package taxonomy
