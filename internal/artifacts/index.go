// Package artifacts implements the Artifact Index (spec.md §4.5): it links
// schemas to the concrete generated types produced for them in each target
// language, maintained as a set of bidirectional bitmap indexes.
package artifacts

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring"
	"github.com/agentic-research/familiar-registry/api"
)

// Index is the C5 artifact table. Registration is serialized by the caller
// (spec.md §5 "Artifact registration is separately serialized"); Index
// itself holds no lock.
type Index struct {
	known map[api.SchemaId]bool

	artifacts      map[string]api.GeneratedArtifact
	artifactSchema map[string]api.SchemaId

	// Roaring-bitmap indexes keyed by artifact's assigned int id, mirroring
	// the teacher's fileToNodes/nodeIntID bitmap-index idiom
	// (internal/graph/graph.go).
	intID    map[string]uint32
	idToStr  []string
	nextInt  uint32
	bySchema map[api.SchemaId]*roaring.Bitmap
	byFile   map[string]*roaring.Bitmap
	byLang   map[string]*roaring.Bitmap
}

// NewIndex constructs an empty Index. known is the full set of schema ids
// the bundle resolved to; registrations against any other id are errors
// (spec.md §4.5 "Failure").
func NewIndex(known map[api.SchemaId]bool) *Index {
	return &Index{
		known:          known,
		artifacts:      make(map[string]api.GeneratedArtifact),
		artifactSchema: make(map[string]api.SchemaId),
		intID:          make(map[string]uint32),
		bySchema:       make(map[api.SchemaId]*roaring.Bitmap),
		byFile:         make(map[string]*roaring.Bitmap),
		byLang:         make(map[string]*roaring.Bitmap),
	}
}

// RegisterArtifact records artifact against schemaID. Re-registering the
// same artifact id replaces the prior entry in every index atomically
// (spec.md §4.5 "Idempotence").
func (x *Index) RegisterArtifact(schemaID api.SchemaId, artifact api.GeneratedArtifact) error {
	if !x.known[schemaID] {
		return fmt.Errorf("artifacts: unknown schema id %q", schemaID)
	}

	id := artifact.ID()
	x.unindex(id)

	intID := x.internID(id)
	x.artifacts[id] = artifact
	x.artifactSchema[id] = schemaID

	x.bitmapFor(x.bySchema, schemaID).Add(intID)
	x.bitmapFor(x.byFile, artifact.File).Add(intID)
	x.bitmapFor(x.byLang, artifact.Lang).Add(intID)
	return nil
}

func (x *Index) unindex(id string) {
	oldIntID, existed := x.intID[id]
	if !existed {
		return
	}
	if old, ok := x.artifacts[id]; ok {
		if schemaID, ok := x.artifactSchema[id]; ok {
			if bm, ok := x.bySchema[schemaID]; ok {
				bm.Remove(oldIntID)
			}
		}
		if bm, ok := x.byFile[old.File]; ok {
			bm.Remove(oldIntID)
		}
		if bm, ok := x.byLang[old.Lang]; ok {
			bm.Remove(oldIntID)
		}
	}
}

func (x *Index) internID(id string) uint32 {
	if v, ok := x.intID[id]; ok {
		return v
	}
	v := x.nextInt
	x.nextInt++
	x.intID[id] = v
	for uint32(len(x.idToStr)) <= v {
		x.idToStr = append(x.idToStr, "")
	}
	x.idToStr[v] = id
	return v
}

func (x *Index) bitmapFor(m map[string]*roaring.Bitmap, key string) *roaring.Bitmap {
	bm, ok := m[key]
	if !ok {
		bm = roaring.New()
		m[key] = bm
	}
	return bm
}

func (x *Index) idsFromBitmap(bm *roaring.Bitmap) []string {
	if bm == nil {
		return nil
	}
	out := make([]string, 0, bm.GetCardinality())
	it := bm.Iterator()
	for it.HasNext() {
		intID := it.Next()
		if int(intID) < len(x.idToStr) {
			out = append(out, x.idToStr[intID])
		}
	}
	sort.Strings(out)
	return out
}

// GetArtifacts returns every artifact id registered against schemaID.
func (x *Index) GetArtifacts(schemaID api.SchemaId) []string {
	return x.idsFromBitmap(x.bySchema[schemaID])
}

// GetArtifact returns the artifact registered for (schemaID, lang), if any.
func (x *Index) GetArtifact(schemaID api.SchemaId, lang string) (api.GeneratedArtifact, bool) {
	for _, id := range x.GetArtifacts(schemaID) {
		if a, ok := x.artifacts[id]; ok && a.Lang == lang {
			return a, true
		}
	}
	return api.GeneratedArtifact{}, false
}

// GetFileArtifacts returns every artifact id colocated in file.
func (x *Index) GetFileArtifacts(file string) []string {
	return x.idsFromBitmap(x.byFile[file])
}

// GetLangArtifacts returns every artifact id generated for lang.
func (x *Index) GetLangArtifacts(lang string) []string {
	return x.idsFromBitmap(x.byLang[lang])
}

// GetArtifactSchema returns the schema id an artifact was registered
// against.
func (x *Index) GetArtifactSchema(artifactID string) (api.SchemaId, bool) {
	id, ok := x.artifactSchema[artifactID]
	return id, ok
}

// Artifact returns the full record for artifactID.
func (x *Index) Artifact(artifactID string) (api.GeneratedArtifact, bool) {
	a, ok := x.artifacts[artifactID]
	return a, ok
}

// ColocatedArtifacts returns every other artifact in the same file as
// artifactID, excluding artifactID itself (spec.md §4.5 "colocated_artifacts
// (same file, different type)").
func (x *Index) ColocatedArtifacts(artifactID string) []string {
	a, ok := x.artifacts[artifactID]
	if !ok {
		return nil
	}
	var out []string
	for _, id := range x.GetFileArtifacts(a.File) {
		if id != artifactID {
			out = append(out, id)
		}
	}
	return out
}

// ArtifactCoverage reports, per language, how many known schemas have a
// registered artifact versus the total known schema count (spec.md §4.5
// "artifact_coverage").
func (x *Index) ArtifactCoverage() map[string]CoverageStat {
	out := map[string]CoverageStat{}
	total := len(x.known)
	for lang, bm := range x.byLang {
		seen := map[api.SchemaId]bool{}
		for _, id := range x.idsFromBitmap(bm) {
			if schemaID, ok := x.artifactSchema[id]; ok {
				seen[schemaID] = true
			}
		}
		out[lang] = CoverageStat{Present: len(seen), Total: total}
	}
	return out
}

// CoverageStat is one language's artifact_coverage entry.
type CoverageStat struct {
	Present int
	Total   int
}

// LoadManifest parses a JSON array of ArtifactManifestRecord (spec.md §6
// "Artifact manifest format") and registers each against its schema_path,
// resolved through resolveSchema. Records naming unknown schemas yield a
// diagnostic but do not abort ingestion (spec.md §4.5 "Failure").
func (x *Index) LoadManifest(content []byte, resolveSchema func(path string) (api.SchemaId, bool)) api.Diagnostics {
	var records []api.ArtifactManifestRecord
	if err := json.Unmarshal(content, &records); err != nil {
		return api.Diagnostics{{
			Kind: api.KindParseError, Severity: api.SeverityError,
			Detail: fmt.Sprintf("parse artifact manifest: %v", err),
		}}
	}

	var diags api.Diagnostics
	for _, rec := range records {
		schemaID, ok := resolveSchema(rec.SchemaPath)
		if !ok {
			diags = append(diags, api.Diagnostic{
				Kind: api.KindArtifactForUnknownSchema, Severity: api.SeverityWarning,
				Path: rec.SchemaPath, Detail: fmt.Sprintf("manifest entry references unknown schema %q", rec.SchemaPath),
			})
			continue
		}
		artifact := api.GeneratedArtifact{
			Lang: rec.Lang, File: rec.File, Line: rec.Line,
			TypeName: rec.TypeName, TypeKind: api.TypeKind(rec.TypeKind),
		}
		if err := x.RegisterArtifact(schemaID, artifact); err != nil {
			diags = append(diags, api.Diagnostic{
				Kind: api.KindArtifactForUnknownSchema, Severity: api.SeverityWarning,
				Path: rec.SchemaPath, Detail: err.Error(),
			})
		}
	}
	return diags
}
