package api

import "fmt"

// Severity classifies a Diagnostic for the CLI's grouped printing (spec.md
// §7 "User-visible behavior").
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// DiagnosticKind is the closed error taxonomy of spec.md §7.
type DiagnosticKind string

const (
	KindBundleUnavailable      DiagnosticKind = "BundleUnavailable"
	KindParseError             DiagnosticKind = "ParseError"
	KindDuplicateSchemaId      DiagnosticKind = "DuplicateSchemaId"
	KindBrokenRef              DiagnosticKind = "BrokenRef"
	KindUnknownFacet           DiagnosticKind = "UnknownFacet"
	KindFacetConflict          DiagnosticKind = "FacetConflict"
	KindArtifactForUnknownSchema DiagnosticKind = "ArtifactForUnknownSchema"
	KindHashMismatch           DiagnosticKind = "HashMismatch"
	KindAmbiguousUnion         DiagnosticKind = "AmbiguousUnion"
	KindArtifactDrift          DiagnosticKind = "ArtifactDrift"
)

// Diagnostic is one entry in the aggregated diagnostic list a construction
// pass returns alongside its result (spec.md §7 "Propagation").
type Diagnostic struct {
	Kind     DiagnosticKind
	Severity Severity
	Path     string // file or schema path this diagnostic concerns, if any
	Detail   string
}

func (d Diagnostic) String() string {
	if d.Path != "" {
		return fmt.Sprintf("[%s] %s: %s: %s", d.Severity, d.Kind, d.Path, d.Detail)
	}
	return fmt.Sprintf("[%s] %s: %s", d.Severity, d.Kind, d.Detail)
}

// Diagnostics is an ordered collection of Diagnostic, as returned by
// construction and validation passes throughout the pipeline.
type Diagnostics []Diagnostic

// HasErrors reports whether any diagnostic is Error-level.
func (ds Diagnostics) HasErrors() bool {
	for _, d := range ds {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// ByKind returns the subset of ds whose Kind matches k.
func (ds Diagnostics) ByKind(k DiagnosticKind) Diagnostics {
	var out Diagnostics
	for _, d := range ds {
		if d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}

// BundleError is the fatal-construction error carrying the full diagnostic
// list (spec.md §7 "in strict mode, an error carrying the diagnostic list").
type BundleError struct {
	Diagnostics Diagnostics
}

func (e *BundleError) Error() string {
	for _, d := range e.Diagnostics {
		if d.Severity == SeverityError {
			return d.String()
		}
	}
	if len(e.Diagnostics) > 0 {
		return e.Diagnostics[0].String()
	}
	return "bundle construction failed"
}
