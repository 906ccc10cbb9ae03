// Package source implements the Schema Source Loader (spec.md §4.1): it
// enumerates a schema bundle — filesystem or embedded — into
// (relative_path, content) records and computes a deterministic bundle
// fingerprint. Both source kinds are read through the same
// billy.Filesystem abstraction so the rest of the pipeline never branches
// on where the bundle came from.
package source

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"sort"

	"github.com/agentic-research/familiar-registry/api"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// SourceFile is one (path, content) record from a bundle.
type SourceFile struct {
	RelPath string // relative to the bundle root, forward-slash separated
	Content []byte
}

// Bundle is a loaded schema bundle: a sorted, deduplicated set of JSON
// files plus the billy.Filesystem they were read through (kept around so
// C5's manifest loader and the lock-file loader can read sibling files).
type Bundle struct {
	FS    billy.Filesystem
	Files []SourceFile // sorted by RelPath
}

// FromDirectory opens a filesystem bundle rooted at dir.
func FromDirectory(dir string) (*Bundle, api.Diagnostics, error) {
	return load(osfs.New(dir))
}

// FromEmbedded opens an embedded bundle from a compiled-in directory tree,
// copying it into an in-memory billy filesystem so it is indistinguishable
// from the filesystem case to the rest of the pipeline.
func FromEmbedded(fsys embed.FS, root string) (*Bundle, api.Diagnostics, error) {
	mem := memfs.New()
	var diags api.Diagnostics

	err := fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			diags = append(diags, api.Diagnostic{
				Kind: api.KindBundleUnavailable, Severity: api.SeverityWarning,
				Path: path, Detail: err.Error(),
			})
			return nil
		}
		if d.IsDir() {
			return nil
		}
		content, err := fsys.ReadFile(path)
		if err != nil {
			diags = append(diags, api.Diagnostic{
				Kind: api.KindParseError, Severity: api.SeverityWarning,
				Path: path, Detail: fmt.Sprintf("read embedded file: %v", err),
			})
			return nil
		}
		rel, err := relTo(root, path)
		if err != nil {
			return nil
		}
		if werr := util.WriteFile(mem, rel, content, 0o644); werr != nil {
			diags = append(diags, api.Diagnostic{
				Kind: api.KindBundleUnavailable, Severity: api.SeverityWarning,
				Path: rel, Detail: fmt.Sprintf("stage embedded file: %v", werr),
			})
		}
		return nil
	})
	if err != nil {
		return nil, diags, &api.BundleError{Diagnostics: append(diags, api.Diagnostic{
			Kind: api.KindBundleUnavailable, Severity: api.SeverityError,
			Path: root, Detail: err.Error(),
		})}
	}

	b, more, lerr := load(mem)
	return b, append(diags, more...), lerr
}

func load(fsys billy.Filesystem) (*Bundle, api.Diagnostics, error) {
	var diags api.Diagnostics
	var files []SourceFile

	if err := walk(fsys, "", &files, &diags); err != nil {
		return nil, diags, &api.BundleError{Diagnostics: append(diags, api.Diagnostic{
			Kind: api.KindBundleUnavailable, Severity: api.SeverityError,
			Detail: err.Error(),
		})}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })

	return &Bundle{FS: fsys, Files: files}, diags, nil
}

// walk recursively enumerates every *.json file under dir (relative to the
// filesystem root), appending (path, content) records to *out. Unreadable
// files are skipped with a diagnostic rather than aborting the walk
// (spec.md §4.1 "Failure").
func walk(fsys billy.Filesystem, dir string, out *[]SourceFile, diags *api.Diagnostics) error {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		if dir == "" {
			return fmt.Errorf("read bundle root: %w", err)
		}
		*diags = append(*diags, api.Diagnostic{
			Kind: api.KindBundleUnavailable, Severity: api.SeverityWarning,
			Path: dir, Detail: err.Error(),
		})
		return nil
	}

	for _, entry := range entries {
		childPath := entry.Name()
		if dir != "" {
			childPath = fsys.Join(dir, entry.Name())
		}

		if entry.IsDir() {
			if werr := walk(fsys, childPath, out, diags); werr != nil {
				return werr
			}
			continue
		}

		if !hasJSONSuffix(entry.Name()) {
			continue
		}

		f, ferr := fsys.Open(childPath)
		if ferr != nil {
			*diags = append(*diags, api.Diagnostic{
				Kind: api.KindParseError, Severity: api.SeverityWarning,
				Path: childPath, Detail: fmt.Sprintf("open: %v", ferr),
			})
			continue
		}
		content, rerr := io.ReadAll(f)
		_ = f.Close()
		if rerr != nil {
			*diags = append(*diags, api.Diagnostic{
				Kind: api.KindParseError, Severity: api.SeverityWarning,
				Path: childPath, Detail: fmt.Sprintf("read: %v", rerr),
			})
			continue
		}

		*out = append(*out, SourceFile{RelPath: childPath, Content: content})
	}
	return nil
}

func hasJSONSuffix(name string) bool {
	return len(name) > 5 && name[len(name)-5:] == ".json"
}

func relTo(root, path string) (string, error) {
	if len(path) < len(root) {
		return path, nil
	}
	rel := path[len(root):]
	for len(rel) > 0 && rel[0] == '/' {
		rel = rel[1:]
	}
	return rel, nil
}
