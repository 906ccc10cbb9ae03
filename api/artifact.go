package api

import "fmt"

// TypeKind is the recognized set of generated-type shapes (spec.md §3).
type TypeKind string

const (
	TypeKindStruct     TypeKind = "struct"
	TypeKindEnum       TypeKind = "enum"
	TypeKindNewtype    TypeKind = "newtype"
	TypeKindTypeAlias  TypeKind = "type_alias"
)

// GeneratedArtifact is a concrete generated type emitted by a codegen
// pipeline from a schema, at a definite file+line in a target-language
// source tree (spec.md §3).
type GeneratedArtifact struct {
	Lang     string
	File     string
	Line     int // 1-indexed
	TypeName string
	TypeKind TypeKind
}

// ID is the artifact's identity: "lang:type_name" (spec.md §3).
func (a GeneratedArtifact) ID() string {
	return fmt.Sprintf("%s:%s", a.Lang, a.TypeName)
}

// ArtifactManifestRecord is one entry in a `*.artifacts.json` manifest
// (spec.md §6 "Artifact manifest format").
type ArtifactManifestRecord struct {
	SchemaPath string   `json:"schema_path"`
	Lang       string   `json:"lang"`
	File       string   `json:"file"`
	Line       int      `json:"line"`
	TypeName   string   `json:"type_name"`
	TypeKind   TypeKind `json:"type_kind"`
}
