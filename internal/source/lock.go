package source

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/agentic-research/familiar-registry/api"
	"github.com/go-git/go-billy/v5"
)

// LoadLock parses the TOML lock document at path on fsys.
func LoadLock(fsys billy.Filesystem, path string) (*api.LockFile, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open lock file %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read lock file %s: %w", path, err)
	}
	return DecodeLock(content)
}

// DecodeLock parses raw TOML lock-document bytes (spec.md §6 "Lock
// document").
func DecodeLock(content []byte) (*api.LockFile, error) {
	var lock api.LockFile
	if _, err := toml.Decode(string(content), &lock); err != nil {
		return nil, fmt.Errorf("decode lock file: %w", err)
	}
	return &lock, nil
}

// ValidateLock compares lock.Hash against the computed bundle hash
// (spec.md §7 "Hash mismatch on the lock is always a warning... unless the
// caller selects strict mode").
func ValidateLock(lock *api.LockFile, computed [32]byte, strict bool) api.Diagnostics {
	if lock == nil || lock.Hash == "" {
		return nil
	}

	want := strings.TrimPrefix(lock.Hash, "sha256:")
	got := hex.EncodeToString(computed[:])
	if want == got {
		return nil
	}

	sev := api.SeverityWarning
	if strict {
		sev = api.SeverityError
	}
	return api.Diagnostics{{
		Kind:     api.KindHashMismatch,
		Severity: sev,
		Detail:   fmt.Sprintf("lock hash %s does not match computed bundle hash %s", lock.Hash, "sha256:"+got),
	}}
}
