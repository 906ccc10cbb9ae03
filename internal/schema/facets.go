package schema

import (
	"fmt"

	"github.com/agentic-research/familiar-registry/api"
)

// recognizedFacets is the full set of x-familiar-* keys spec.md §6
// recognizes. Any x-familiar- key not in this table is an UnknownFacet
// diagnostic (spec.md §7).
var recognizedFacets = map[string]struct{}{
	"x-familiar-kind":          {},
	"x-familiar-service":       {},
	"x-familiar-deprecated":    {},
	"x-familiar-role":          {},
	"x-familiar-pii":           {},
	"x-familiar-queue":         {},
	"x-familiar-resources":     {},
	"x-familiar-depends":       {},
	"x-familiar-input":         {},
	"x-familiar-output":        {},
	"x-familiar-reads":         {},
	"x-familiar-writes":        {},
	"x-familiar-system":        {},
	"x-familiar-systems":       {},
	"x-familiar-components":    {},
	"x-familiar-consumers":     {},
	"x-familiar-producers":     {},
	"x-familiar-enum-repr":     {},
	"x-familiar-discriminator": {},
	"x-familiar-content":       {},
	"x-familiar-casing":        {},
	"x-familiar-flatten":       {},
	"x-familiar-skip-none":     {},
	"x-familiar-newtype":       {},
}

const familiarPrefix = "x-familiar-"

var recognizedEnumReprs = map[api.EnumRepr]struct{}{
	api.EnumReprInternallyTagged: {},
	api.EnumReprAdjacentlyTagged: {},
	api.EnumReprExternallyTagged: {},
	api.EnumReprUntagged:         {},
	api.EnumReprSimpleEnum:       {},
}

var recognizedCasings = map[api.Casing]struct{}{
	api.CasingSnake:          {},
	api.CasingCamel:          {},
	api.CasingPascal:         {},
	api.CasingScreamingSnake: {},
	api.CasingKebab:          {},
	api.CasingLower:          {},
}

// extractFacets reads the recognized x-familiar-* codegen-intent keys into
// a CodegenFacets bag, flags unrecognized x-familiar-* keys under
// UnknownFacet, and checks the internally/adjacently-tagged-requires-
// discriminator consistency rule (spec.md §4.2).
//
// Target-specific keys (x-familiar-rust-*) are scoped per spec.md §6 and
// are not part of the portable CodegenFacets bag; they are read directly
// by rust-specific collaborators, not by this engine.
func extractFacets(path string, doc map[string]any) (*api.CodegenFacets, api.Diagnostics) {
	var diags api.Diagnostics
	var facets api.CodegenFacets
	var found bool

	for key, raw := range doc {
		if len(key) <= len(familiarPrefix) || key[:len(familiarPrefix)] != familiarPrefix {
			continue
		}
		if isScopedFacet(key) {
			continue
		}
		if _, ok := recognizedFacets[key]; !ok {
			diags = append(diags, api.Diagnostic{
				Kind: api.KindUnknownFacet, Severity: api.SeverityWarning,
				Path: path, Detail: fmt.Sprintf("unrecognized facet key %q", key),
			})
			continue
		}

		switch key {
		case "x-familiar-enum-repr":
			if s, ok := raw.(string); ok {
				repr := api.EnumRepr(s)
				if _, ok := recognizedEnumReprs[repr]; !ok {
					diags = append(diags, api.Diagnostic{
						Kind: api.KindUnknownFacet, Severity: api.SeverityWarning,
						Path: path, Detail: fmt.Sprintf("unrecognized x-familiar-enum-repr value %q", s),
					})
				}
				facets.EnumRepr = repr
				found = true
			}
		case "x-familiar-discriminator":
			if s, ok := raw.(string); ok {
				facets.Discriminator = s
				found = true
			}
		case "x-familiar-content":
			if s, ok := raw.(string); ok {
				facets.Content = s
				found = true
			}
		case "x-familiar-casing":
			if s, ok := raw.(string); ok {
				casing := api.Casing(s)
				if _, ok := recognizedCasings[casing]; !ok {
					diags = append(diags, api.Diagnostic{
						Kind: api.KindUnknownFacet, Severity: api.SeverityWarning,
						Path: path, Detail: fmt.Sprintf("unrecognized x-familiar-casing value %q", s),
					})
				}
				facets.Casing = casing
				found = true
			}
		case "x-familiar-flatten":
			if b, ok := raw.(bool); ok {
				facets.Flatten = b
				found = true
			}
		case "x-familiar-skip-none":
			if b, ok := raw.(bool); ok {
				facets.SkipNone = b
				found = true
			}
		case "x-familiar-newtype":
			if b, ok := raw.(bool); ok {
				facets.Newtype = b
				found = true
			}
		}
	}

	if facets.EnumRepr == api.EnumReprInternallyTagged || facets.EnumRepr == api.EnumReprAdjacentlyTagged {
		if facets.Discriminator == "" {
			diags = append(diags, api.Diagnostic{
				Kind: api.KindFacetConflict, Severity: api.SeverityWarning,
				Path: path, Detail: fmt.Sprintf("%s requires x-familiar-discriminator", facets.EnumRepr),
			})
		}
	}

	if !found {
		return nil, diags
	}
	return &facets, diags
}

// isScopedFacet reports whether key is a target-specific facet
// (x-familiar-rust-*, …) rather than a portable one — these are never
// flagged as unknown by the engine.
func isScopedFacet(key string) bool {
	const rustPrefix = "x-familiar-rust-"
	return len(key) > len(rustPrefix) && key[:len(rustPrefix)] == rustPrefix
}
