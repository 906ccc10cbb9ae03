// Package schema implements the Schema Parser (spec.md §4.2): it turns one
// (path, content) record into a SchemaNode plus its local definitions, or a
// parse error carrying the path.
package schema

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/agentic-research/familiar-registry/api"
	"github.com/ohler55/ojg/jp"
)

// compiled selectors, built once and reused across every parsed document —
// the same pattern the teacher's internal/ingest.JsonWalker uses for
// JSONPath matching.
var (
	selID          = jp.MustParseString("$id")
	selTitle       = jp.MustParseString("title")
	selProperties  = jp.MustParseString("properties")
	selRequired    = jp.MustParseString("required")
	selDefinitions = jp.MustParseString("definitions")
	selDefs        = jp.MustParseString("$defs")
	selOneOf       = jp.MustParseString("oneOf")
	selKind        = jp.MustParseString("x-familiar-kind")
	selService     = jp.MustParseString("x-familiar-service")
)

// ParseResult is the output of parsing one schema document.
type ParseResult struct {
	Root        *api.SchemaNode
	Locals      []*api.SchemaNode
	Diagnostics api.Diagnostics
}

// Parse parses one schema document. path is the bundle-relative path of
// the containing file.
func Parse(path string, content []byte) (*ParseResult, error) {
	var doc map[string]any
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	var diags api.Diagnostics

	root := &api.SchemaNode{
		Id:       canonicalID(path, doc),
		FilePath: path,
		Title:    firstString(selTitle, doc),
		Kind:     firstString(selKind, doc),
		Service:  firstString(selService, doc),
		Fields:   extractFields(doc),
		Raw:      doc,
	}

	facets, fdiags := extractFacets(path, doc)
	root.Codegen = facets
	diags = append(diags, fdiags...)

	if hasOneOf(doc) && (facets == nil || (facets.EnumRepr == "" && facets.Discriminator == "")) {
		diags = append(diags, api.Diagnostic{
			Kind: api.KindAmbiguousUnion, Severity: api.SeverityWarning,
			Path: string(root.Id),
			Detail: "oneOf present without x-familiar-enum-repr or x-familiar-discriminator",
		})
	}

	locals, ldiags := extractLocalDefinitions(path, doc)
	diags = append(diags, ldiags...)

	return &ParseResult{Root: root, Locals: locals, Diagnostics: diags}, nil
}

// canonicalID takes $id if present and non-empty, else the relative path
// (spec.md §4.2 "Canonical id").
func canonicalID(path string, doc map[string]any) api.SchemaId {
	if id := firstString(selID, doc); id != "" {
		return api.SchemaId(id)
	}
	return api.SchemaId(path)
}

func extractFields(doc map[string]any) []api.FieldRef {
	propsRaw := firstValue(selProperties, doc)
	props, ok := propsRaw.(map[string]any)
	if !ok {
		return nil
	}

	required := map[string]bool{}
	for _, r := range selRequired.Get(doc) {
		if arr, ok := r.([]any); ok {
			for _, v := range arr {
				if s, ok := v.(string); ok {
					required[s] = true
				}
			}
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	fields := make([]api.FieldRef, 0, len(names))
	for _, name := range names {
		prop, _ := props[name].(map[string]any)
		fr := api.FieldRef{Name: name, Required: required[name]}
		if ref, ok := prop["$ref"].(string); ok {
			fr.TyRef = ref
		} else if t, ok := prop["type"].(string); ok {
			fr.InlineKind = t
		}
		fields = append(fields, fr)
	}
	return fields
}

func hasOneOf(doc map[string]any) bool {
	v := firstValue(selOneOf, doc)
	arr, ok := v.([]any)
	return ok && len(arr) > 0
}

// extractLocalDefinitions builds SchemaNodes for every entry under
// "definitions" (draft-04..07) and "$defs" (2019-09+), per spec.md §4.2.
func extractLocalDefinitions(path string, doc map[string]any) ([]*api.SchemaNode, api.Diagnostics) {
	var out []*api.SchemaNode
	var diags api.Diagnostics

	for _, sel := range []jp.Expr{selDefinitions, selDefs} {
		raw := firstValue(sel, doc)
		defs, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		names := make([]string, 0, len(defs))
		for name := range defs {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			defDoc, _ := defs[name].(map[string]any)
			node := &api.SchemaNode{
				Id:         api.SchemaId(fmt.Sprintf("%s#%s", path, name)),
				FilePath:   path,
				Definition: name,
				Title:      firstString(selTitle, defDoc),
				Kind:       firstString(selKind, defDoc),
				Fields:     extractFields(defDoc),
				Raw:        defDoc,
			}
			facets, fdiags := extractFacets(string(node.Id), defDoc)
			node.Codegen = facets
			diags = append(diags, fdiags...)
			out = append(out, node)
		}
	}
	return out, diags
}

func firstValue(sel jp.Expr, doc map[string]any) any {
	if doc == nil {
		return nil
	}
	res := sel.Get(doc)
	if len(res) == 0 {
		return nil
	}
	return res[0]
}

func firstString(sel jp.Expr, doc map[string]any) string {
	v := firstValue(sel, doc)
	s, _ := v.(string)
	return s
}
