package api

// Edge is one directed reference from a schema node to a target id, typed
// by the construct that produced it (spec.md §4.3 "Edge mapping").
type Edge struct {
	From SchemaId
	To   SchemaId
	Kind EdgeKind
}
