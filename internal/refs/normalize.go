// Package refs implements the Reference Extractor (spec.md §4.3): given a
// parsed schema node and the full node table, it emits a typed edge list,
// normalizing and deduplicating targets.
package refs

import "strings"

// normalizeRef resolves a "./" or "../" refPath relative to the directory
// of basePath, collapsing ".." segments, matching original_source's
// normalize_ref. Any other path is returned unchanged (it is taken as
// bundle-root relative). Pure-fragment refs (refPath starting with "#")
// return "" — callers must check for that before emitting an edge.
func normalizeRef(basePath, refPath string) string {
	if strings.HasPrefix(refPath, "#") {
		return ""
	}
	if !strings.HasPrefix(refPath, "../") && !strings.HasPrefix(refPath, "./") {
		return refPath
	}

	dir := dirOf(basePath)
	joined := dir
	if joined != "" {
		joined += "/"
	}
	joined += refPath

	parts := strings.Split(joined, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		switch p {
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		case ".", "":
			// skip
		default:
			out = append(out, p)
		}
	}
	return strings.Join(out, "/")
}

func dirOf(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return ""
	}
	return path[:i]
}

// localDefTarget returns the "file#Name" target for a "#/definitions/Name"
// or "#/$defs/Name" ref, and whether refPath was in fact a local-definition
// ref.
func localDefTarget(basePath, refPath string) (string, bool) {
	const defsPrefix = "#/definitions/"
	const dollarDefsPrefix = "#/$defs/"

	var name string
	switch {
	case strings.HasPrefix(refPath, defsPrefix):
		name = refPath[len(defsPrefix):]
	case strings.HasPrefix(refPath, dollarDefsPrefix):
		name = refPath[len(dollarDefsPrefix):]
	default:
		return "", false
	}
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return basePath + "#" + name, true
}
