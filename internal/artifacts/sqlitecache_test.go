package artifacts

import (
	"database/sql"
	"path/filepath"
	"sort"
	"testing"

	"github.com/agentic-research/familiar-registry/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportAndLoadSQLiteRoundTrip(t *testing.T) {
	x := NewIndex(known("order.json", "customer.json"))
	order := api.GeneratedArtifact{Lang: "rust", File: "src/order.rs", Line: 3, TypeName: "Order", TypeKind: api.TypeKindStruct}
	customer := api.GeneratedArtifact{Lang: "rust", File: "src/customer.rs", Line: 1, TypeName: "Customer", TypeKind: api.TypeKindStruct}
	require.NoError(t, x.RegisterArtifact("order.json", order))
	require.NoError(t, x.RegisterArtifact("customer.json", customer))

	dbPath := filepath.Join(t.TempDir(), "artifacts.db")
	require.NoError(t, x.ExportSQLite(dbPath))

	loaded, err := LoadSQLite(dbPath, known("order.json", "customer.json"))
	require.NoError(t, err)

	assert.ElementsMatch(t, x.GetArtifacts("order.json"), loaded.GetArtifacts("order.json"))
	assert.ElementsMatch(t, x.GetArtifacts("customer.json"), loaded.GetArtifacts("customer.json"))

	got, ok := loaded.GetArtifact("order.json", "rust")
	require.True(t, ok)
	assert.Equal(t, order, got)
}

func TestArtifactRefsVirtualTableQueriesExportedCache(t *testing.T) {
	x := NewIndex(known("order.json", "customer.json"))
	require.NoError(t, x.RegisterArtifact("order.json", api.GeneratedArtifact{Lang: "rust", File: "src/order.rs", Line: 3, TypeName: "Order", TypeKind: api.TypeKindStruct}))
	require.NoError(t, x.RegisterArtifact("order.json", api.GeneratedArtifact{Lang: "python", File: "src/order.py", Line: 1, TypeName: "Order", TypeKind: api.TypeKindStruct}))
	require.NoError(t, x.RegisterArtifact("customer.json", api.GeneratedArtifact{Lang: "rust", File: "src/customer.rs", Line: 1, TypeName: "Customer", TypeKind: api.TypeKindStruct}))

	dbPath := filepath.Join(t.TempDir(), "artifacts.db")
	require.NoError(t, x.ExportSQLite(dbPath))

	module, err := RegisterArtifactRefsModule()
	require.NoError(t, err)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	const dbID = "testcache"
	module.RegisterDB(dbID, db)
	defer module.UnregisterDB(dbID)

	_, err = db.Exec("CREATE VIRTUAL TABLE IF NOT EXISTS artifact_refs USING artifact_refs(" + dbID + ")")
	require.NoError(t, err)

	rows, err := db.Query("SELECT artifact_id FROM artifact_refs WHERE schema_id = ?", "order.json")
	require.NoError(t, err)
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		require.NoError(t, rows.Scan(&id))
		ids = append(ids, id)
	}
	require.NoError(t, rows.Err())
	sort.Strings(ids)
	assert.Equal(t, []string{"python:Order", "rust:Order"}, ids)
}
