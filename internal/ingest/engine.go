// Package ingest orchestrates the full pipeline: Schema Source Loader ->
// Schema Parser -> Reference Extractor -> Graph Engine -> Artifact Index
// (spec.md §2). Grounded on the teacher's internal/ingest/engine.go
// Engine/NewEngine shape, rewritten two-pass (nodes, then edges) against
// this repo's own component packages instead of the teacher's tree-sitter
// node model.
package ingest

import (
	"context"
	"fmt"
	"sort"

	"github.com/agentic-research/familiar-registry/api"
	"github.com/agentic-research/familiar-registry/internal/artifacts"
	"github.com/agentic-research/familiar-registry/internal/graph"
	"github.com/agentic-research/familiar-registry/internal/refs"
	"github.com/agentic-research/familiar-registry/internal/schema"
	"github.com/agentic-research/familiar-registry/internal/source"
	"github.com/go-git/go-billy/v5"
)

// BuildOptions configures one Engine.Build call (spec.md §8 "Orchestration").
type BuildOptions struct {
	// Depth bounds the properties-traversal depth in reference extraction
	// (spec.md §4.3). 0 means unlimited.
	Depth int
	// Strict upgrades a lock hash mismatch from Warning to Error (spec.md
	// §7) and fails the build on any Error-severity diagnostic.
	Strict bool
	// ManifestRoot, if non-empty, is scanned for *.artifacts.json files to
	// populate the artifact index as part of Build (spec.md §4.5).
	ManifestRoot string
}

// Engine is a single immutable construction pass. Rebuilding (e.g. on a
// schema reload) produces a new *Engine; callers swap their reference
// atomically rather than mutate one in place (spec.md §9 "Global mutable
// state... The redesign eliminates this").
type Engine struct {
	Graph     *graph.Graph
	Artifacts *artifacts.Index

	bundle *source.Bundle
}

// Build runs the full two-pass pipeline over an already-loaded bundle: every
// file's nodes are parsed first (so the id index is complete), then every
// file's edges are extracted against that complete index, matching the
// original Rust's own two-pass from_directory_with_depth discipline (spec.md
// §8).
func Build(ctx context.Context, bundle *source.Bundle, lockPath string, opts BuildOptions) (*Engine, api.Diagnostics, error) {
	var diags api.Diagnostics

	if lockPath != "" {
		lock, err := source.LoadLock(bundle.FS, lockPath)
		if err != nil {
			diags = append(diags, api.Diagnostic{
				Kind: api.KindBundleUnavailable, Severity: api.SeverityWarning,
				Path: lockPath, Detail: fmt.Sprintf("load lock file: %v", err),
			})
		} else {
			diags = append(diags, source.ValidateLock(lock, bundle.Hash(), opts.Strict)...)
		}
	}

	nodes, byPath, nodeDiags := parseNodes(bundle)
	diags = append(diags, nodeDiags...)
	if dupDiags := nodeDiags.ByKind(api.KindDuplicateSchemaId); len(dupDiags) > 0 {
		return nil, diags, &api.BundleError{Diagnostics: diags}
	}

	allNodes := make(map[api.SchemaId]*api.SchemaNode, len(nodes))
	for _, n := range nodes {
		allNodes[n.Id] = n
	}

	var edges []api.Edge
	for _, n := range nodes {
		// Every node carries its own outgoing refs, root documents and local
		// definitions alike (schemas/graph.rs add_definition_edges treats a
		// $defs/$id#Name entry as its own edge source).
		nodeEdges, edgeDiags := refs.Extract(n, allNodes, opts.Depth)
		edges = append(edges, nodeEdges...)
		diags = append(diags, edgeDiags...)
	}

	g := graph.Build(nodes, edges)

	known := make(map[api.SchemaId]bool, len(nodes))
	for _, n := range nodes {
		known[n.Id] = true
	}
	idx := artifacts.NewIndex(known)

	if opts.ManifestRoot != "" {
		diags = append(diags, scanManifests(bundle, idx, opts.ManifestRoot, byPath, g)...)
	}

	if opts.Strict && diags.HasErrors() {
		return nil, diags, &api.BundleError{Diagnostics: diags}
	}

	return &Engine{Graph: g, Artifacts: idx, bundle: bundle}, diags, nil
}

// RegisterArtifact registers a single artifact against e's graph, callable
// any time after Build returns (spec.md §8 "Engine.RegisterArtifact calls
// after Build returns").
func (e *Engine) RegisterArtifact(schemaID api.SchemaId, artifact api.GeneratedArtifact) error {
	return e.Artifacts.RegisterArtifact(schemaID, artifact)
}

// FS returns the filesystem the bundle was loaded from, for callers that
// need to read generated artifact files back (e.g. freshness verification).
func (e *Engine) FS() billy.Filesystem {
	return e.bundle.FS
}

// parseNodes is pass one: every file's root node and local definitions,
// detecting duplicate $id claims across the whole bundle (spec.md §7
// "DuplicateSchemaId{id, paths} — two documents claim the same $id.
// Fatal.").
func parseNodes(bundle *source.Bundle) ([]*api.SchemaNode, map[string]api.SchemaId, api.Diagnostics) {
	var diags api.Diagnostics
	var nodes []*api.SchemaNode
	byPath := make(map[string]api.SchemaId, len(bundle.Files))
	claimedBy := make(map[api.SchemaId][]string)

	for _, f := range bundle.Files {
		if hasManifestSuffix(f.RelPath) {
			continue // *.artifacts.json records generated-type metadata, not a schema document
		}
		result, err := schema.Parse(f.RelPath, f.Content)
		if err != nil {
			diags = append(diags, api.Diagnostic{
				Kind: api.KindParseError, Severity: api.SeverityWarning,
				Path: f.RelPath, Detail: err.Error(),
			})
			continue
		}
		diags = append(diags, result.Diagnostics...)

		claimedBy[result.Root.Id] = append(claimedBy[result.Root.Id], f.RelPath)
		byPath[f.RelPath] = result.Root.Id
		nodes = append(nodes, result.Root)
		nodes = append(nodes, result.Locals...)
	}

	for id, paths := range claimedBy {
		if len(paths) <= 1 {
			continue
		}
		sort.Strings(paths)
		diags = append(diags, api.Diagnostic{
			Kind: api.KindDuplicateSchemaId, Severity: api.SeverityError,
			Path: string(id), Detail: fmt.Sprintf("claimed by: %v", paths),
		})
	}

	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Id < nodes[j].Id })
	return nodes, byPath, diags
}

// scanManifests walks root for *.artifacts.json files and loads each into
// idx, resolving each record's schema_path against byPath first and falling
// back to g.Resolve (spec.md §6: "schema_path must match either a
// bundle-relative path or resolve via resolve").
func scanManifests(bundle *source.Bundle, idx *artifacts.Index, root string, byPath map[string]api.SchemaId, g *graph.Graph) api.Diagnostics {
	var diags api.Diagnostics
	resolve := func(path string) (api.SchemaId, bool) {
		if id, ok := byPath[path]; ok {
			return id, true
		}
		return g.Resolve(path)
	}

	for _, f := range bundle.Files {
		if !isUnderRoot(f.RelPath, root) || !hasManifestSuffix(f.RelPath) {
			continue
		}
		diags = append(diags, idx.LoadManifest(f.Content, resolve)...)
	}
	return diags
}

func isUnderRoot(path, root string) bool {
	if root == "" || root == "." {
		return true
	}
	return len(path) > len(root) && path[:len(root)] == root
}

func hasManifestSuffix(path string) bool {
	const suffix = ".artifacts.json"
	return len(path) > len(suffix) && path[len(path)-len(suffix):] == suffix
}
