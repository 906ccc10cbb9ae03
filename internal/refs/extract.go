package refs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agentic-research/familiar-registry/api"
)

// rawRef is an (unresolved target, edge kind) pair produced by one level of
// extractTypeRefs, before normalization and resolution against the node
// table.
type rawRef struct {
	target string
	kind   api.EdgeKind
	// unsupported, when non-empty, marks a ref form the extractor
	// recognizes but will not resolve (e.g. a mixed "file.json#/definitions/X"
	// ref, spec.md §9 Open Question 1) — Extract turns it into a BrokenRef
	// diagnostic instead of silently dropping it.
	unsupported string
}

func isPromotable(k api.EdgeKind) bool {
	return k == api.TypeRef || k == api.LocalRef
}

// Extract walks node's raw document for $ref/allOf/oneOf/anyOf/items/
// additionalProperties/properties constructs and x-familiar-* infra keys,
// resolves every target against allNodes, and returns the deduplicated
// edge list plus any BrokenRef diagnostics (spec.md §4.3).
//
// depth bounds how many hops of "properties" nesting are traversed; 0
// means unlimited. $ref, allOf, oneOf, anyOf, items and
// additionalProperties are always traversed regardless of depth.
func Extract(node *api.SchemaNode, allNodes map[api.SchemaId]*api.SchemaNode, depth int) ([]api.Edge, api.Diagnostics) {
	basePath := node.FilePath

	raw := extractTypeRefs(node.Raw, basePath, depth, 0)
	raw = append(raw, extractInfraRefs(node)...)

	seen := map[string]bool{}
	var edges []api.Edge
	var diags api.Diagnostics

	for _, r := range raw {
		if r.target == "" {
			if r.unsupported != "" {
				diags = append(diags, api.Diagnostic{
					Kind: api.KindBrokenRef, Severity: api.SeverityWarning,
					Path: string(node.Id), Detail: r.unsupported,
				})
			}
			continue
		}

		from, to := node.Id, api.SchemaId(r.target)
		if r.reversed {
			from, to = api.SchemaId(r.target), node.Id
		}

		resolved, ok := resolve(allNodes, r.target, basePath)
		if !ok {
			diags = append(diags, api.Diagnostic{
				Kind: api.KindBrokenRef, Severity: api.SeverityWarning,
				Path: string(node.Id), Detail: fmt.Sprintf("unresolved reference %q", r.target),
			})
			continue
		}
		if r.reversed {
			from = resolved
		} else {
			to = resolved
		}

		key := string(from) + "->" + string(to) + "|" + r.kind.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		edges = append(edges, api.Edge{From: from, To: to, Kind: r.kind})
	}

	return edges, diags
}

func resolve(allNodes map[api.SchemaId]*api.SchemaNode, target, basePath string) (api.SchemaId, bool) {
	if _, ok := allNodes[api.SchemaId(target)]; ok {
		return api.SchemaId(target), true
	}
	if n := normalizeRef(basePath, target); n != "" {
		if _, ok := allNodes[api.SchemaId(n)]; ok {
			return api.SchemaId(n), true
		}
	}
	return "", false
}

// rawRefR extends rawRef with the "reversed" direction x-familiar-consumers
// needs (spec.md §4.3 "x-familiar-consumers (on queue, reversed)").
type rawRefR struct {
	rawRef
	reversed bool
}

func extractTypeRefs(doc map[string]any, basePath string, depth, currentDepth int) []rawRefR {
	if doc == nil {
		return nil
	}
	atDepthLimit := depth > 0 && currentDepth >= depth

	if ref, ok := doc["$ref"].(string); ok {
		return []rawRefR{refEdge(basePath, ref)}
	}

	var out []rawRefR

	if arr, ok := doc["allOf"].([]any); ok {
		out = append(out, walkComposition(arr, basePath, depth, currentDepth, api.Extends)...)
	}
	if arr, ok := doc["oneOf"].([]any); ok {
		out = append(out, walkComposition(arr, basePath, depth, currentDepth, api.VariantOf)...)
	}
	if arr, ok := doc["anyOf"].([]any); ok {
		out = append(out, walkComposition(arr, basePath, depth, currentDepth, api.UnionOf)...)
	}
	if items, ok := asObject(doc["items"]); ok {
		for _, r := range extractTypeRefs(items, basePath, depth, currentDepth) {
			out = append(out, promote(r, api.ItemType))
		}
	}
	if ap, ok := asObject(doc["additionalProperties"]); ok {
		for _, r := range extractTypeRefs(ap, basePath, depth, currentDepth) {
			out = append(out, promote(r, api.ValueType))
		}
	}
	if !atDepthLimit {
		if props, ok := asObject(doc["properties"]); ok {
			for _, name := range sortedKeys(props) {
				field, ok := asObject(props[name])
				if !ok {
					continue
				}
				for _, r := range extractTypeRefs(field, basePath, depth, currentDepth+1) {
					out = append(out, promote(r, api.FieldType))
				}
			}
		}
	}

	if !atDepthLimit {
		for _, key := range sortedKeys(doc) {
			if isHandledKey(key) {
				continue
			}
			if nested, ok := asObject(doc[key]); ok {
				out = append(out, extractTypeRefs(nested, basePath, depth, currentDepth)...)
			}
		}
	}

	return out
}

func promote(r rawRefR, to api.EdgeKind) rawRefR {
	if isPromotable(r.kind) {
		r.kind = to
	}
	return r
}

func walkComposition(items []any, basePath string, depth, currentDepth int, promoteTo api.EdgeKind) []rawRefR {
	var out []rawRefR
	for _, item := range items {
		obj, ok := asObject(item)
		if !ok {
			continue
		}
		for _, r := range extractTypeRefs(obj, basePath, depth, currentDepth) {
			out = append(out, promote(r, promoteTo))
		}
	}
	return out
}

// refEdge classifies one $ref string: local definition, mixed (unsupported:
// returned with an empty target and an unsupported message, which Extract
// turns into a BrokenRef diagnostic), pure-fragment (ignored), or external
// (normalized against basePath by the caller).
func refEdge(basePath, ref string) rawRefR {
	if target, ok := localDefTarget(basePath, ref); ok {
		return rawRefR{rawRef{target: target, kind: api.LocalRef}, false}
	}
	if strings.HasPrefix(ref, "#") {
		// Pure-fragment ref to something other than definitions/$defs: per
		// spec.md §4.3 these are ignored outright, no diagnostic.
		return rawRefR{}
	}
	if strings.Contains(ref, "#") {
		// "other.json#/definitions/Foo" — mixed file+fragment ref.
		// Unsupported per spec.md §9 Open Question 1: documented rather
		// than guessed at.
		return rawRefR{rawRef: rawRef{unsupported: fmt.Sprintf("mixed file+fragment reference %q is unsupported", ref)}}
	}
	return rawRefR{rawRef{target: ref, kind: api.TypeRef}, false}
}

func extractInfraRefs(node *api.SchemaNode) []rawRefR {
	doc := node.Raw
	if doc == nil {
		return nil
	}
	var out []rawRefR

	if t, ok := refFromValue(doc["x-familiar-service"]); ok {
		out = append(out, rawRefR{rawRef{target: t, kind: api.RunsOn}, false})
	}
	if t, ok := refFromValue(doc["x-familiar-queue"]); ok {
		out = append(out, rawRefR{rawRef{target: t, kind: api.UsesQueue}, false})
	}
	for _, t := range refsFromArray(doc["x-familiar-consumers"]) {
		out = append(out, rawRefR{rawRef{target: t, kind: api.UsesQueue}, true})
	}
	for _, t := range refsFromArray(doc["x-familiar-depends"]) {
		out = append(out, rawRefR{rawRef{target: t, kind: api.Requires}, false})
	}
	for _, t := range refsFromArray(doc["x-familiar-components"]) {
		out = append(out, rawRefR{rawRef{target: t, kind: api.Requires}, false})
	}
	for _, t := range refsFromArray(doc["x-familiar-reads"]) {
		out = append(out, rawRefR{rawRef{target: t, kind: api.Reads}, false})
	}
	for _, t := range refsFromArray(doc["x-familiar-writes"]) {
		out = append(out, rawRefR{rawRef{target: t, kind: api.Writes}, false})
	}
	for _, t := range refsFromArray(doc["x-familiar-resources"]) {
		out = append(out, rawRefR{rawRef{target: t, kind: api.ConnectsTo}, false})
	}
	if t, ok := refFromValue(doc["x-familiar-input"]); ok {
		out = append(out, rawRefR{rawRef{target: t, kind: api.Input}, false})
	}
	if t, ok := refFromValue(doc["x-familiar-output"]); ok {
		out = append(out, rawRefR{rawRef{target: t, kind: api.Output}, false})
	}

	return out
}

func refFromValue(v any) (string, bool) {
	obj, ok := asObject(v)
	if !ok {
		return "", false
	}
	ref, ok := obj["$ref"].(string)
	return ref, ok
}

func refsFromArray(v any) []string {
	arr, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range arr {
		if ref, ok := refFromValue(item); ok {
			out = append(out, ref)
		}
	}
	return out
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

var handledKeys = map[string]bool{
	"$ref": true, "allOf": true, "oneOf": true, "anyOf": true,
	"items": true, "additionalProperties": true, "properties": true,
	"definitions": true, "$defs": true,
}

func isHandledKey(key string) bool {
	if handledKeys[key] {
		return true
	}
	return strings.HasPrefix(key, "x-familiar")
}

func sortedKeys(m map[string]any) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
