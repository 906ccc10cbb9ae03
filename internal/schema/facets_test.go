package schema

import (
	"testing"

	"github.com/agentic-research/familiar-registry/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractFacetsRecognized(t *testing.T) {
	doc := map[string]any{
		"x-familiar-enum-repr":     "adjacently_tagged",
		"x-familiar-discriminator": "type",
		"x-familiar-content":       "payload",
		"x-familiar-casing":        "snake_case",
		"x-familiar-flatten":      true,
		"x-familiar-skip-none":    true,
		"x-familiar-newtype":      false,
	}

	facets, diags := extractFacets("x.json", doc)
	require.NotNil(t, facets)
	assert.Empty(t, diags)
	assert.Equal(t, api.EnumReprAdjacentlyTagged, facets.EnumRepr)
	assert.Equal(t, "type", facets.Discriminator)
	assert.Equal(t, "payload", facets.Content)
	assert.Equal(t, api.CasingSnake, facets.Casing)
	assert.True(t, facets.Flatten)
	assert.True(t, facets.SkipNone)
	assert.False(t, facets.Newtype)
}

func TestExtractFacetsNil(t *testing.T) {
	facets, diags := extractFacets("x.json", map[string]any{"title": "X"})
	assert.Nil(t, facets)
	assert.Empty(t, diags)
}

func TestExtractFacetsUnknownKey(t *testing.T) {
	facets, diags := extractFacets("x.json", map[string]any{"x-familiar-bogus": "yes"})
	assert.Nil(t, facets)
	require.Len(t, diags, 1)
	assert.Equal(t, api.KindUnknownFacet, diags[0].Kind)
}

func TestExtractFacetsUnknownEnumReprValue(t *testing.T) {
	facets, diags := extractFacets("x.json", map[string]any{"x-familiar-enum-repr": "sideways"})
	require.NotNil(t, facets)
	require.Len(t, diags, 1)
	assert.Equal(t, api.KindUnknownFacet, diags[0].Kind)
}

func TestExtractFacetsDiscriminatorRequired(t *testing.T) {
	t.Run("internally_tagged without discriminator conflicts", func(t *testing.T) {
		_, diags := extractFacets("x.json", map[string]any{"x-familiar-enum-repr": "internally_tagged"})
		require.Len(t, diags, 1)
		assert.Equal(t, api.KindFacetConflict, diags[0].Kind)
	})

	t.Run("untagged needs no discriminator", func(t *testing.T) {
		_, diags := extractFacets("x.json", map[string]any{"x-familiar-enum-repr": "untagged"})
		assert.Empty(t, diags)
	})
}

func TestExtractFacetsScopedRustKeysIgnored(t *testing.T) {
	facets, diags := extractFacets("x.json", map[string]any{"x-familiar-rust-derive": "Clone"})
	assert.Nil(t, facets)
	assert.Empty(t, diags)
}
