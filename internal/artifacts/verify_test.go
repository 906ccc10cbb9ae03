package artifacts

import (
	"testing"

	"github.com/agentic-research/familiar-registry/api"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyArtifactFindsDeclaration(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "src/order.rs", []byte("pub struct Order {\n    pub id: String,\n}\n"), 0o644))

	diag := VerifyArtifact(fsys, api.GeneratedArtifact{Lang: "rust", File: "src/order.rs", TypeName: "Order"})
	assert.Nil(t, diag)
}

func TestVerifyArtifactMissingDeclaration(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "src/order.rs", []byte("pub struct Customer {}\n"), 0o644))

	diag := VerifyArtifact(fsys, api.GeneratedArtifact{Lang: "rust", File: "src/order.rs", TypeName: "Order"})
	require.NotNil(t, diag)
	assert.Equal(t, api.KindArtifactDrift, diag.Kind)
}

func TestVerifyArtifactUnsupportedLanguage(t *testing.T) {
	fsys := memfs.New()
	diag := VerifyArtifact(fsys, api.GeneratedArtifact{Lang: "cobol", File: "src/order.cbl", TypeName: "Order"})
	require.NotNil(t, diag)
	assert.Equal(t, api.SeverityWarning, diag.Severity)
}

func TestVerifyArtifactMissingFile(t *testing.T) {
	fsys := memfs.New()
	diag := VerifyArtifact(fsys, api.GeneratedArtifact{Lang: "rust", File: "src/missing.rs", TypeName: "Order"})
	require.NotNil(t, diag)
	assert.Equal(t, api.SeverityError, diag.Severity)
}

func TestVerifyAllPrefixesArtifactID(t *testing.T) {
	fsys := memfs.New()
	require.NoError(t, util.WriteFile(fsys, "src/order.rs", []byte("pub struct Wrong {}\n"), 0o644))

	x := NewIndex(known("order.json"))
	artifact := api.GeneratedArtifact{Lang: "rust", File: "src/order.rs", TypeName: "Order"}
	require.NoError(t, x.RegisterArtifact("order.json", artifact))

	diags := x.VerifyAll(fsys)
	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Detail, artifact.ID())
}
