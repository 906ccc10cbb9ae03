// Package api holds the wire/value types shared between the ingestion
// pipeline, the graph engine, the artifact index, and their consumers
// (CLI, MCP server). It carries no behavior beyond small helpers on its own
// types — construction and queries live in internal/*.
package api

import "fmt"

// SchemaId is the canonical identifier of a schema node: the document's
// $id if present, else its bundle-relative path. Local definitions carry
// the suffix "#<name>".
type SchemaId string

// String satisfies fmt.Stringer so SchemaId prints bare in logs/errors.
func (id SchemaId) String() string { return string(id) }

// FieldRef describes one entry in a schema's "properties" map.
type FieldRef struct {
	Name       string
	TyRef      string // the $ref string as written, if the field is a direct $ref; not normalized
	InlineKind string // JSON Schema "type" string, if the field has no $ref
	Required   bool
}

// EnumRepr is the recognized set of x-familiar-enum-repr values.
type EnumRepr string

const (
	EnumReprInternallyTagged EnumRepr = "internally_tagged"
	EnumReprAdjacentlyTagged EnumRepr = "adjacently_tagged"
	EnumReprExternallyTagged EnumRepr = "externally_tagged"
	EnumReprUntagged         EnumRepr = "untagged"
	EnumReprSimpleEnum       EnumRepr = "simple_enum"
)

// Casing is the recognized set of x-familiar-casing values.
type Casing string

const (
	CasingSnake          Casing = "snake_case"
	CasingCamel          Casing = "camelCase"
	CasingPascal         Casing = "PascalCase"
	CasingScreamingSnake Casing = "SCREAMING_SNAKE_CASE"
	CasingKebab          Casing = "kebab-case"
	CasingLower          Casing = "lowercase"
)

// CodegenFacets is the optional facet bag parsed from a schema's
// x-familiar-* codegen-intent keys (spec.md §3, §4.2, §6).
type CodegenFacets struct {
	EnumRepr      EnumRepr
	Discriminator string
	Content       string
	Casing        Casing
	Flatten       bool
	SkipNone      bool
	Newtype       bool
}

// SchemaNode is one graph node: a schema document or one of its local
// ($defs/definitions) sub-schemas.
type SchemaNode struct {
	Id         SchemaId
	FilePath   string // bundle-relative path of the containing document
	Definition string // local definition name, empty for root schemas
	Title      string
	Kind       string // x-familiar-kind
	Service    string // x-familiar-service
	Fields     []FieldRef
	Codegen    *CodegenFacets // nil if no recognized codegen facet was present
	Raw        map[string]any // the parsed document/sub-schema, retained for callers
}

// IsLocalDefinition reports whether this node is a #<name> local definition.
func (n *SchemaNode) IsLocalDefinition() bool { return n.Definition != "" }

// EdgeKind is the closed 16-variant enumeration of spec.md §3.
type EdgeKind int

const (
	// Standard refs.
	TypeRef EdgeKind = iota
	LocalRef
	// Composition.
	Extends
	VariantOf
	UnionOf
	ItemType
	ValueType
	FieldType
	// Infrastructure (x-familiar-*).
	RunsOn
	UsesQueue
	Requires
	Reads
	Writes
	ConnectsTo
	Input
	Output
)

var edgeKindNames = [...]string{
	TypeRef:    "TypeRef",
	LocalRef:   "LocalRef",
	Extends:    "Extends",
	VariantOf:  "VariantOf",
	UnionOf:    "UnionOf",
	ItemType:   "ItemType",
	ValueType:  "ValueType",
	FieldType:  "FieldType",
	RunsOn:     "RunsOn",
	UsesQueue:  "UsesQueue",
	Requires:   "Requires",
	Reads:      "Reads",
	Writes:     "Writes",
	ConnectsTo: "ConnectsTo",
	Input:      "Input",
	Output:     "Output",
}

func (k EdgeKind) String() string {
	if int(k) < 0 || int(k) >= len(edgeKindNames) {
		return fmt.Sprintf("EdgeKind(%d)", int(k))
	}
	return edgeKindNames[k]
}

// IsComposition reports whether k is one of the schema-composition kinds.
func (k EdgeKind) IsComposition() bool {
	switch k {
	case Extends, VariantOf, UnionOf, ItemType, ValueType, FieldType:
		return true
	default:
		return false
	}
}

// IsInfrastructure reports whether k is one of the x-familiar-* wiring kinds.
func (k EdgeKind) IsInfrastructure() bool {
	switch k {
	case RunsOn, UsesQueue, Requires, Reads, Writes, ConnectsTo, Input, Output:
		return true
	default:
		return false
	}
}

// Label is the short DOT-edge label for k (original_source graph.rs parity).
func (k EdgeKind) Label() string {
	switch k {
	case TypeRef:
		return "ref"
	case LocalRef:
		return "local"
	case Extends:
		return "extends"
	case VariantOf:
		return "variant"
	case UnionOf:
		return "union"
	case ItemType:
		return "item"
	case ValueType:
		return "value"
	case FieldType:
		return "field"
	case RunsOn:
		return "runs_on"
	case UsesQueue:
		return "uses_queue"
	case Requires:
		return "requires"
	case Reads:
		return "reads"
	case Writes:
		return "writes"
	case ConnectsTo:
		return "connects_to"
	case Input:
		return "input"
	case Output:
		return "output"
	default:
		return "unknown"
	}
}

// Color is the DOT hex color for k, ported from original_source
// schemas/graph.rs EdgeKind::color().
func (k EdgeKind) Color() string {
	switch k {
	case TypeRef:
		return "#666666"
	case LocalRef:
		return "#AAAAAA"
	case Extends:
		return "#4CAF50"
	case VariantOf:
		return "#FF9800"
	case UnionOf:
		return "#FFC107"
	case ItemType:
		return "#9C27B0"
	case ValueType:
		return "#E91E63"
	case FieldType:
		return "#9E9E9E"
	case RunsOn:
		return "#2196F3"
	case UsesQueue:
		return "#673AB7"
	case Requires:
		return "#FF5722"
	case Reads:
		return "#00BCD4"
	case Writes:
		return "#F44336"
	case ConnectsTo:
		return "#03A9F4"
	case Input:
		return "#8BC34A"
	case Output:
		return "#FF5722"
	default:
		return "#000000"
	}
}
