package ingest

import (
	"context"
	"testing"

	"github.com/agentic-research/familiar-registry/api"
	"github.com/agentic-research/familiar-registry/internal/graph"
	"github.com/agentic-research/familiar-registry/internal/source"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bundleOf(files map[string]string) *source.Bundle {
	var sf []source.SourceFile
	for path, content := range files {
		sf = append(sf, source.SourceFile{RelPath: path, Content: []byte(content)})
	}
	return &source.Bundle{FS: memfs.New(), Files: sf}
}

func TestBuildTwoPassWiring(t *testing.T) {
	bundle := bundleOf(map[string]string{
		"order.json":    `{"$id":"order.json","title":"Order","properties":{"customer":{"$ref":"customer.json"}}}`,
		"customer.json": `{"$id":"customer.json","title":"Customer"}`,
	})

	engine, diags, err := Build(context.Background(), bundle, "", BuildOptions{})
	require.NoError(t, err)
	assert.Empty(t, diags.ByKind(api.KindDuplicateSchemaId))

	id, ok := engine.Graph.Resolve("order.json")
	require.True(t, ok)
	refsOut := engine.Graph.RefsOut(id)
	require.Len(t, refsOut, 1)
	assert.Equal(t, api.SchemaId("customer.json"), refsOut[0].To)
}

func TestBuildExtractsEdgesFromLocalDefinitions(t *testing.T) {
	bundle := bundleOf(map[string]string{
		"entities/moment.json": `{
			"$id": "entities/moment.json",
			"title": "Moment",
			"$defs": {
				"LoginStatus": {
					"title": "LoginStatus",
					"properties": {"session": {"$ref": "session.json"}}
				}
			}
		}`,
		"session.json": `{"$id":"session.json","title":"Session"}`,
	})

	engine, diags, err := Build(context.Background(), bundle, "", BuildOptions{})
	require.NoError(t, err)
	assert.Empty(t, diags.ByKind(api.KindBrokenRef))

	defId := api.SchemaId("entities/moment.json#LoginStatus")
	_, ok := engine.Graph.Get(defId)
	require.True(t, ok)

	refsOut := engine.Graph.RefsOut(defId)
	require.Len(t, refsOut, 1)
	assert.Equal(t, api.SchemaId("session.json"), refsOut[0].To)

	closure := engine.Graph.Closure(defId, graph.Outgoing, 0)
	var reachesSession bool
	for _, entry := range closure {
		if entry.Id == api.SchemaId("session.json") {
			reachesSession = true
		}
	}
	assert.True(t, reachesSession, "closure from the local definition must reach session.json")
}

func TestBuildFatalOnDuplicateSchemaId(t *testing.T) {
	bundle := bundleOf(map[string]string{
		"a/order.json": `{"$id":"order.json","title":"Order"}`,
		"b/order.json": `{"$id":"order.json","title":"Order"}`,
	})

	engine, diags, err := Build(context.Background(), bundle, "", BuildOptions{})
	assert.Nil(t, engine)
	require.Error(t, err)
	assert.NotEmpty(t, diags.ByKind(api.KindDuplicateSchemaId))
}

func TestBuildScansArtifactManifests(t *testing.T) {
	bundle := bundleOf(map[string]string{
		"order.json": `{"$id":"order.json","title":"Order"}`,
		"order.artifacts.json": `[
			{"schema_path":"order.json","lang":"rust","file":"src/order.rs","line":1,"type_name":"Order","type_kind":"struct"}
		]`,
	})

	engine, _, err := Build(context.Background(), bundle, "", BuildOptions{ManifestRoot: "."})
	require.NoError(t, err)
	require.NotNil(t, engine.Artifacts)
	assert.Equal(t, []string{"rust:Order"}, engine.Artifacts.GetArtifacts("order.json"))
}

func TestBuildScansArtifactManifestsByTitleFallback(t *testing.T) {
	bundle := bundleOf(map[string]string{
		"order.json": `{"$id":"order.json","title":"Order"}`,
		"order.artifacts.json": `[
			{"schema_path":"Order","lang":"rust","file":"src/order.rs","line":1,"type_name":"Order","type_kind":"struct"}
		]`,
	})

	engine, diags, err := Build(context.Background(), bundle, "", BuildOptions{ManifestRoot: "."})
	require.NoError(t, err)
	assert.Empty(t, diags.ByKind(api.KindArtifactForUnknownSchema))
	assert.Equal(t, []string{"rust:Order"}, engine.Artifacts.GetArtifacts("order.json"))
}

func TestBuildStrictFailsOnErrorDiagnostics(t *testing.T) {
	bundle := bundleOf(map[string]string{
		"a/order.json": `{"$id":"order.json"}`,
		"b/order.json": `{"$id":"order.json"}`,
	})

	engine, _, err := Build(context.Background(), bundle, "", BuildOptions{Strict: true})
	assert.Nil(t, engine)
	assert.Error(t, err)
}

func TestRegisterArtifactAfterBuild(t *testing.T) {
	bundle := bundleOf(map[string]string{"order.json": `{"$id":"order.json"}`})
	engine, _, err := Build(context.Background(), bundle, "", BuildOptions{})
	require.NoError(t, err)

	require.NoError(t, engine.RegisterArtifact("order.json", api.GeneratedArtifact{Lang: "python", TypeName: "Order"}))
	assert.Equal(t, []string{"python:Order"}, engine.Artifacts.GetArtifacts("order.json"))
}
