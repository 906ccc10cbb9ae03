package api

// LockFile is the parsed form of the sidecar lock document (spec.md §6
// "Lock document"), a TOML document carrying a bundle-hash pin and named
// feature roots.
type LockFile struct {
	Version string            `toml:"version"`
	Hash    string            `toml:"hash"`
	Source  LockSource        `toml:"source"`
	Features map[string][]string `toml:"features"`
}

// LockSource names where the bundle was pulled from — a local path or a
// GitHub repo URL, mutually exclusive in practice.
type LockSource struct {
	Path   string `toml:"path"`
	GitHub string `toml:"github"`
}
