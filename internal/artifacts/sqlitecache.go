package artifacts

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"

	"github.com/RoaringBitmap/roaring"
	_ "modernc.org/sqlite"
	"modernc.org/sqlite/vtab"

	"github.com/agentic-research/familiar-registry/api"
)

// ExportSQLite persists x's artifact table to a fresh SQLite file at path,
// storing the schema_id -> artifact_id relation as a roaring bitmap per
// schema (same serialization the teacher uses for its node-ref index) so
// large bundles stay compact on disk. Grounded on teacher's
// internal/graph/sqlite_graph.go export path.
func (x *Index) ExportSQLite(path string) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("artifacts: open %s: %w", path, err)
	}
	defer db.Close()

	schema := []string{
		`CREATE TABLE IF NOT EXISTS artifacts (
			artifact_id TEXT PRIMARY KEY,
			schema_id   TEXT NOT NULL,
			lang        TEXT NOT NULL,
			file        TEXT NOT NULL,
			line        INTEGER NOT NULL,
			type_name   TEXT NOT NULL,
			type_kind   TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS schema_artifact_bitmap (
			schema_id TEXT PRIMARY KEY,
			bitmap    BLOB NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS artifact_ids (
			id          INTEGER PRIMARY KEY,
			artifact_id TEXT NOT NULL
		)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("artifacts: create schema: %w", err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("artifacts: begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"artifacts", "schema_artifact_bitmap", "artifact_ids"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("artifacts: clear %s: %w", table, err)
		}
	}

	for id, a := range x.artifacts {
		schemaID := x.artifactSchema[id]
		if _, err := tx.Exec(
			`INSERT OR REPLACE INTO artifacts (artifact_id, schema_id, lang, file, line, type_name, type_kind)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, string(schemaID), a.Lang, a.File, a.Line, a.TypeName, string(a.TypeKind),
		); err != nil {
			return fmt.Errorf("artifacts: insert artifact %q: %w", id, err)
		}
		if intID, ok := x.intID[id]; ok {
			if _, err := tx.Exec(`INSERT OR REPLACE INTO artifact_ids (id, artifact_id) VALUES (?, ?)`, intID, id); err != nil {
				return fmt.Errorf("artifacts: insert artifact id %q: %w", id, err)
			}
		}
	}

	for schemaID, bm := range x.bySchema {
		blob, err := bm.MarshalBinary()
		if err != nil {
			return fmt.Errorf("artifacts: marshal bitmap for %q: %w", schemaID, err)
		}
		if _, err := tx.Exec(`INSERT OR REPLACE INTO schema_artifact_bitmap (schema_id, bitmap) VALUES (?, ?)`, string(schemaID), blob); err != nil {
			return fmt.Errorf("artifacts: insert bitmap for %q: %w", schemaID, err)
		}
	}

	return tx.Commit()
}

// LoadSQLite rebuilds an Index from a file written by ExportSQLite. known is
// the current bundle's schema id set, used the same way NewIndex uses it.
func LoadSQLite(path string, known map[api.SchemaId]bool) (*Index, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("artifacts: open %s: %w", path, err)
	}
	defer db.Close()

	x := NewIndex(known)

	rows, err := db.Query(`SELECT artifact_id, schema_id, lang, file, line, type_name, type_kind FROM artifacts`)
	if err != nil {
		return nil, fmt.Errorf("artifacts: query artifacts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, schemaID, lang, file, typeName, typeKind string
		var line int
		if err := rows.Scan(&id, &schemaID, &lang, &file, &line, &typeName, &typeKind); err != nil {
			return nil, fmt.Errorf("artifacts: scan artifact row: %w", err)
		}
		artifact := api.GeneratedArtifact{Lang: lang, File: file, Line: line, TypeName: typeName, TypeKind: api.TypeKind(typeKind)}
		if err := x.RegisterArtifact(api.SchemaId(schemaID), artifact); err != nil {
			return nil, fmt.Errorf("artifacts: replay artifact %q: %w", id, err)
		}
	}
	return x, rows.Err()
}

// ---------------------------------------------------------------------------
// artifact_refs virtual table — adapted from the teacher's refsvtab module.
// ---------------------------------------------------------------------------

var (
	refsModOnce sync.Once
	refsModule  *ArtifactRefsModule
	refsModErr  error
)

// ArtifactRefsModule implements vtab.Module, exposing the schema_id ->
// artifact_id relation of one or more exported sidecar databases as a
// queryable virtual table. Like the teacher's RefsModule it is a
// process-wide singleton because modernc.org/sqlite registers modules at
// the driver level, not per connection.
type ArtifactRefsModule struct {
	mu  sync.RWMutex
	dbs map[string]*sql.DB
}

// RegisterArtifactRefsModule registers the artifact_refs module with the
// global SQLite driver. Safe to call multiple times.
func RegisterArtifactRefsModule() (*ArtifactRefsModule, error) {
	refsModOnce.Do(func() {
		refsModule = &ArtifactRefsModule{dbs: make(map[string]*sql.DB)}
		if err := vtab.RegisterModule(nil, "artifact_refs", refsModule); err != nil {
			refsModErr = fmt.Errorf("artifacts: register artifact_refs module: %w", err)
			refsModule = nil
		}
	})
	return refsModule, refsModErr
}

// RegisterDB makes db queryable as CREATE VIRTUAL TABLE ... USING artifact_refs(id).
func (m *ArtifactRefsModule) RegisterDB(id string, db *sql.DB) {
	m.mu.Lock()
	m.dbs[id] = db
	m.mu.Unlock()
}

// UnregisterDB removes a database connection from the registry.
func (m *ArtifactRefsModule) UnregisterDB(id string) {
	m.mu.Lock()
	delete(m.dbs, id)
	m.mu.Unlock()
}

func (m *ArtifactRefsModule) Create(ctx vtab.Context, args []string) (vtab.Table, error) {
	if len(args) < 4 {
		return nil, fmt.Errorf("artifact_refs: missing DB ID argument (expected USING artifact_refs(id))")
	}
	id := args[3]

	m.mu.RLock()
	db, ok := m.dbs[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("artifact_refs: unknown DB ID %q", id)
	}

	if err := ctx.Declare("CREATE TABLE x(schema_id TEXT, artifact_id TEXT)"); err != nil {
		return nil, err
	}
	return &artifactRefsTable{db: db}, nil
}

func (m *ArtifactRefsModule) Connect(ctx vtab.Context, args []string) (vtab.Table, error) {
	return m.Create(ctx, args)
}

type artifactRefsTable struct {
	db *sql.DB
}

func (t *artifactRefsTable) BestIndex(info *vtab.IndexInfo) error {
	for i := range info.Constraints {
		c := &info.Constraints[i]
		if !c.Usable || c.Column != 0 {
			continue
		}
		switch c.Op {
		case vtab.OpEQ:
			c.ArgIndex = 0
			c.Omit = true
			info.IdxNum = 1
			info.EstimatedCost = 1
			info.EstimatedRows = 10
			return nil
		case vtab.OpLIKE:
			c.ArgIndex = 0
			c.Omit = true
			info.IdxNum = 2
			info.EstimatedCost = 100
			info.EstimatedRows = 100
			return nil
		}
	}
	info.IdxNum = 0
	info.EstimatedCost = 1e6
	info.EstimatedRows = 1e6
	return nil
}

func (t *artifactRefsTable) Open() (vtab.Cursor, error) { return &artifactRefsCursor{table: t}, nil }
func (t *artifactRefsTable) Disconnect() error           { return nil }
func (t *artifactRefsTable) Destroy() error              { return nil }

type artifactRefRow struct {
	schemaID   string
	artifactID string
}

type artifactRefsCursor struct {
	table *artifactRefsTable
	rows  []artifactRefRow
	pos   int
}

func (c *artifactRefsCursor) Filter(idxNum int, idxStr string, vals []vtab.Value) error {
	c.rows = c.rows[:0]
	c.pos = 0

	db := c.table.db
	if db == nil {
		return nil
	}

	switch idxNum {
	case 1:
		schemaID, ok := vals[0].(string)
		if !ok {
			return nil
		}
		return c.loadSchema(db, schemaID)
	case 2:
		pattern, ok := vals[0].(string)
		if !ok {
			return nil
		}
		return c.loadFiltered(db, pattern)
	default:
		return c.loadAll(db)
	}
}

func (c *artifactRefsCursor) loadSchema(db *sql.DB, schemaID string) error {
	var blob []byte
	err := db.QueryRow(`SELECT bitmap FROM schema_artifact_bitmap WHERE schema_id = ?`, schemaID).Scan(&blob)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("artifact_refs: query schema %q: %w", schemaID, err)
	}
	return c.expandBitmap(db, schemaID, blob)
}

func (c *artifactRefsCursor) loadFiltered(db *sql.DB, pattern string) error {
	type entry struct {
		schemaID string
		blob     []byte
	}

	rows, err := db.Query(`SELECT schema_id, bitmap FROM schema_artifact_bitmap WHERE schema_id LIKE ?`, pattern)
	if err != nil {
		return fmt.Errorf("artifact_refs: filtered scan %q: %w", pattern, err)
	}

	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.schemaID, &e.blob); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("artifact_refs: filtered scan rows: %w", err)
	}
	_ = rows.Close()

	for _, e := range entries {
		if err := c.expandBitmap(db, e.schemaID, e.blob); err != nil {
			return err
		}
	}
	return nil
}

func (c *artifactRefsCursor) loadAll(db *sql.DB) error {
	type entry struct {
		schemaID string
		blob     []byte
	}

	rows, err := db.Query(`SELECT schema_id, bitmap FROM schema_artifact_bitmap`)
	if err != nil {
		return fmt.Errorf("artifact_refs: scan schema_artifact_bitmap: %w", err)
	}

	var entries []entry
	for rows.Next() {
		var e entry
		if err := rows.Scan(&e.schemaID, &e.blob); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return fmt.Errorf("artifact_refs: scan rows: %w", err)
	}
	_ = rows.Close()

	for _, e := range entries {
		if err := c.expandBitmap(db, e.schemaID, e.blob); err != nil {
			return err
		}
	}
	return nil
}

func (c *artifactRefsCursor) expandBitmap(db *sql.DB, schemaID string, blob []byte) error {
	rb := roaring.New()
	if err := rb.UnmarshalBinary(blob); err != nil {
		return fmt.Errorf("artifact_refs: unmarshal bitmap for %q: %w", schemaID, err)
	}

	var artifactIntIDs []uint32
	it := rb.Iterator()
	for it.HasNext() {
		artifactIntIDs = append(artifactIntIDs, it.Next())
	}
	if len(artifactIntIDs) == 0 {
		return nil
	}

	args := make([]any, len(artifactIntIDs))
	placeholders := make([]string, len(artifactIntIDs))
	for i, id := range artifactIntIDs {
		args[i] = id
		placeholders[i] = "?"
	}

	query := fmt.Sprintf("SELECT artifact_id FROM artifact_ids WHERE id IN (%s)", strings.Join(placeholders, ","))
	rows, err := db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("artifact_refs: resolve artifact_ids: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var artifactID string
		if err := rows.Scan(&artifactID); err != nil {
			continue
		}
		c.rows = append(c.rows, artifactRefRow{schemaID: schemaID, artifactID: artifactID})
	}
	return rows.Err()
}

func (c *artifactRefsCursor) Next() error { c.pos++; return nil }
func (c *artifactRefsCursor) Eof() bool   { return c.pos >= len(c.rows) }

func (c *artifactRefsCursor) Column(col int) (vtab.Value, error) {
	if c.pos >= len(c.rows) {
		return nil, nil
	}
	switch col {
	case 0:
		return c.rows[c.pos].schemaID, nil
	case 1:
		return c.rows[c.pos].artifactID, nil
	default:
		return nil, nil
	}
}

func (c *artifactRefsCursor) Rowid() (int64, error) { return int64(c.pos), nil }
func (c *artifactRefsCursor) Close() error           { c.rows = nil; return nil }
