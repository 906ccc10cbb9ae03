package graph

import (
	"path"
	"sort"
	"strings"

	"github.com/agentic-research/familiar-registry/api"
)

// ImportsFor produces a sorted, deduplicated list of import statements for
// id and its direct dependencies, for the given target language (spec.md
// §4.4 "imports_for"). The bundle's directory layout determines the import
// path: a dependency under "primitives/UUID.json" becomes a module path
// derived from its directory and stem.
func (g *Graph) ImportsFor(id api.SchemaId, lang string) []string {
	n, ok := g.Get(id)
	if !ok {
		return nil
	}

	seen := map[string]bool{}
	var out []string
	add := func(dep *api.SchemaNode) {
		stmt := importStatement(n, dep, lang)
		if stmt == "" || seen[stmt] {
			return
		}
		seen[stmt] = true
		out = append(out, stmt)
	}

	for _, e := range g.out[id] {
		if dep, ok := g.Get(e.To); ok {
			add(dep)
		}
	}

	sort.Strings(out)
	return out
}

func importStatement(from, to *api.SchemaNode, lang string) string {
	if to.FilePath == from.FilePath {
		return ""
	}
	modPath := modulePath(to.FilePath, lang)
	typeName := to.Title
	if typeName == "" {
		typeName = stem(to.FilePath)
	}

	switch lang {
	case "rust":
		return "use " + modPath + "::" + typeName + ";"
	case "typescript":
		return "import { " + typeName + " } from \"" + modPath + "\";"
	case "python":
		return "from " + modPath + " import " + typeName
	default:
		return modPath + "." + typeName
	}
}

// modulePath turns a bundle-relative file path into a target-language
// module path: directories become path separators appropriate to lang,
// the file stem becomes the final segment.
func modulePath(filePath, lang string) string {
	dir := path.Dir(filePath)
	name := stem(filePath)
	if dir == "." || dir == "" {
		return name
	}
	switch lang {
	case "python":
		return dotJoin(dir) + "." + name
	case "rust":
		return strings.ReplaceAll(dir, "/", "::") + "::" + name
	default:
		return dir + "/" + name
	}
}

func dotJoin(dir string) string {
	out := dir
	for i := 0; i < len(out); i++ {
		if out[i] == '/' {
			out = out[:i] + "." + out[i+1:]
		}
	}
	return out
}
