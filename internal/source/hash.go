package source

import "crypto/sha256"

// Hash computes the bundle fingerprint: SHA-256 fed first the relative-path
// bytes then the file content of every file, concatenated in sorted-path
// order (spec.md §4.1 "Determinism"). b.Files must already be sorted by
// RelPath, which load() guarantees.
func (b *Bundle) Hash() [32]byte {
	h := sha256.New()
	for _, f := range b.Files {
		h.Write([]byte(f.RelPath))
		h.Write(f.Content)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}
