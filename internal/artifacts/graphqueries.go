package artifacts

import (
	"github.com/agentic-research/familiar-registry/api"
	"github.com/agentic-research/familiar-registry/internal/graph"
)

// AffectedArtifacts answers "if schemaID changes, which artifacts must be
// regenerated?" by walking every schema that transitively depends on it
// (spec.md §4.5 "affected_artifacts"): the incoming closure across all edge
// kinds, unioned with whatever is directly registered against schemaID
// itself.
func (x *Index) AffectedArtifacts(g *graph.Graph, schemaID api.SchemaId) []string {
	seen := map[string]bool{}
	var out []string
	add := func(ids []string) {
		for _, id := range ids {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}

	add(x.GetArtifacts(schemaID))
	for _, entry := range g.Closure(schemaID, graph.Incoming, 0) {
		add(x.GetArtifacts(entry.Id))
	}
	return out
}

// ArtifactDependencies answers "which schemas define the type behind
// artifactID?" (spec.md §4.5 "artifact_dependencies"): the schema the
// artifact is registered against, plus everything that schema's outgoing
// closure reaches — "schemas whose union defines the generated type".
func (x *Index) ArtifactDependencies(g *graph.Graph, artifactID string) []api.SchemaId {
	schemaID, ok := x.GetArtifactSchema(artifactID)
	if !ok {
		return nil
	}

	out := []api.SchemaId{schemaID}
	for _, entry := range g.Closure(schemaID, graph.Outgoing, 0) {
		if entry.Id != schemaID {
			out = append(out, entry.Id)
		}
	}
	return out
}
