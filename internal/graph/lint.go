package graph

import "github.com/agentic-research/familiar-registry/api"

// LintWarningKind is the closed set of lint_unions diagnostics (spec.md
// §4.4 "lint_unions").
type LintWarningKind string

const (
	UntaggedUnion LintWarningKind = "UNTAGGED_UNION"
	AnyOfObjects  LintWarningKind = "ANYOF_OBJECTS"
	MissingKind   LintWarningKind = "MISSING_KIND"
)

// LintWarning is one lint_unions finding.
type LintWarning struct {
	Id   api.SchemaId
	Kind LintWarningKind
	Detail string
}

// LintUnions checks id's raw document for the three union-hygiene
// conditions spec.md §4.4 names.
func (g *Graph) LintUnions(id api.SchemaId) []LintWarning {
	n, ok := g.Get(id)
	if !ok {
		return nil
	}

	var out []LintWarning

	oneOf, _ := n.Raw["oneOf"].([]any)
	if len(oneOf) > 0 {
		hasRepr := n.Codegen != nil && (n.Codegen.EnumRepr != "" || n.Codegen.Discriminator != "")
		if !hasRepr {
			out = append(out, LintWarning{Id: id, Kind: UntaggedUnion, Detail: "oneOf present without x-familiar-enum-repr or x-familiar-discriminator"})
		}
	}

	anyOf, _ := n.Raw["anyOf"].([]any)
	if len(anyOf) > 0 && allObjectTyped(anyOf) {
		out = append(out, LintWarning{Id: id, Kind: AnyOfObjects, Detail: "anyOf members are all object-typed; likely intended as oneOf or allOf"})
	}

	if n.Kind == "" {
		out = append(out, LintWarning{Id: id, Kind: MissingKind, Detail: "x-familiar-kind is absent"})
	}

	return out
}

func allObjectTyped(members []any) bool {
	if len(members) == 0 {
		return false
	}
	for _, m := range members {
		obj, ok := m.(map[string]any)
		if !ok {
			return false
		}
		if t, ok := obj["type"].(string); !ok || t != "object" {
			return false
		}
	}
	return true
}
