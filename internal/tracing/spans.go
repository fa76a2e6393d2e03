package tracing

// Span attribute keys.
const (
	AttrTag         = "tag.name"
	AttrTagCount    = "tag.count"
	AttrEntityID    = "entity.id"
	AttrEntityCount = "entity.count"
	AttrQuery       = "query.text"
	AttrQueryKind   = "query.kind"
	AttrQueryName   = "query.name"
	AttrMatched     = "query.matched"
	AttrSource      = "taxonomy.source"
	AttrPruned      = "entity.pruned"

	AttrErrorMessage = "error.message"
)

// Span names.
const (
	SpanLoad         = "taxonomy.load"
	SpanRegister     = "taxonomy.register"
	SpanRemove       = "taxonomy.remove"
	SpanImport       = "taxonomy.import"
	SpanExport       = "taxonomy.export"
	SpanReload       = "taxonomy.reload"
	SpanPrune        = "taxonomy.prune"
	SpanEntityCreate = "entity.create"
	SpanEntityUpdate = "entity.update"
	SpanEntityDelete = "entity.delete"
	SpanEntityFind   = "entity.find"
	SpanQueryEval    = "query.evaluate"
	SpanQuerySelect  = "query.select"
)

// Event names for span events.
const (
	EventCascade    = "cascade.applied"
	EventCacheFlush = "cache.flushed"
)
