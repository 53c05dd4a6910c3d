//go:build cgo

package graph

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore implements the Store interface using KuzuDB as the graph backend.
// It requires CGO because the go-kuzu driver wraps KuzuDB's C library.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// Compile-time check that KuzuStore satisfies Store.
var _ Store = (*KuzuStore)(nil)

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(":memory:", cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path. KuzuDB creates the leaf directory itself for new
// databases. This is what makes the index survive across invocations.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(dbPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open file database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema setup ----------

// ddlStatements defines the Cypher DDL executed by InitSchema.
// Order matters: node tables must precede relationship tables.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS Doc(
		anchor STRING,
		path STRING,
		level STRING,
		title STRING,
		sections INT64,
		orphans INT64,
		PRIMARY KEY(anchor)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS File(
		path STRING,
		language STRING,
		loc INT64,
		PRIMARY KEY(path)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Symbol(
		id STRING,
		name STRING,
		kind STRING,
		exported BOOLEAN,
		file_path STRING,
		line INT64,
		PRIMARY KEY(id)
	)`,
	`CREATE REL TABLE IF NOT EXISTS LINKS(FROM Doc TO Doc)`,
	`CREATE REL TABLE IF NOT EXISTS REFERENCES(FROM Doc TO Symbol)`,
	`CREATE REL TABLE IF NOT EXISTS DOCUMENTS(FROM Doc TO File)`,
	`CREATE REL TABLE IF NOT EXISTS IMPORTS(FROM File TO File)`,
}

// nodeTables lists node table names in Reset/Stats order.
var nodeTables = []string{"Doc", "File", "Symbol"}

// relTables lists relationship table names for edge enumeration and counting.
var relTables = []string{"LINKS", "REFERENCES", "DOCUMENTS", "IMPORTS"}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema(_ context.Context) error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// Reset deletes all rows from every node table. DETACH DELETE removes the
// attached relationships with them.
func (s *KuzuStore) Reset(_ context.Context) error {
	for _, table := range nodeTables {
		cypher := fmt.Sprintf("MATCH (n:%s) DETACH DELETE n", table)
		res, err := s.conn.Query(cypher)
		if err != nil {
			return fmt.Errorf("kuzu: reset %s: %w", table, err)
		}
		res.Close()
	}
	return nil
}

// ---------- Write operations ----------

// AddDoc inserts a Doc node.
func (s *KuzuStore) AddDoc(_ context.Context, node DocNode) error {
	return s.exec(
		`CREATE (d:Doc {
			anchor: $anchor,
			path: $path,
			level: $level,
			title: $title,
			sections: $sections,
			orphans: $orphans
		})`,
		map[string]any{
			"anchor":   node.Anchor,
			"path":     node.Path,
			"level":    node.Level,
			"title":    node.Title,
			"sections": int64(node.Sections),
			"orphans":  int64(node.Orphans),
		},
	)
}

// AddFile inserts a File node.
func (s *KuzuStore) AddFile(_ context.Context, node FileNode) error {
	return s.exec(
		"CREATE (f:File {path: $path, language: $lang, loc: $loc})",
		map[string]any{
			"path": node.Path,
			"lang": node.Language,
			"loc":  int64(node.LOC),
		},
	)
}

// AddSymbol inserts a Symbol node.
func (s *KuzuStore) AddSymbol(_ context.Context, node SymbolNode) error {
	return s.exec(
		`CREATE (s:Symbol {
			id: $id,
			name: $name,
			kind: $kind,
			exported: $exported,
			file_path: $fp,
			line: $line
		})`,
		map[string]any{
			"id":       node.ID,
			"name":     node.Name,
			"kind":     node.Kind,
			"exported": node.Exported,
			"fp":       node.FilePath,
			"line":     int64(node.Line),
		},
	)
}

// AddEdge inserts a relationship edge between two nodes.
// The Cypher statement is chosen based on the EdgeKind.
func (s *KuzuStore) AddEdge(_ context.Context, edge Edge) error {
	cypher, err := edgeCypher(edge.Kind)
	if err != nil {
		return err
	}
	return s.exec(cypher, map[string]any{
		"src": edge.SourceID,
		"dst": edge.TargetID,
	})
}

// edgeCypher returns the MATCH-CREATE Cypher for the given edge kind.
func edgeCypher(kind EdgeKind) (string, error) {
	switch kind {
	case EdgeKindLinks:
		return `MATCH (a:Doc {anchor: $src}), (b:Doc {anchor: $dst})
				CREATE (a)-[:LINKS]->(b)`, nil
	case EdgeKindReferences:
		return `MATCH (a:Doc {anchor: $src}), (b:Symbol {id: $dst})
				CREATE (a)-[:REFERENCES]->(b)`, nil
	case EdgeKindDocuments:
		return `MATCH (a:Doc {anchor: $src}), (b:File {path: $dst})
				CREATE (a)-[:DOCUMENTS]->(b)`, nil
	case EdgeKindImports:
		return `MATCH (a:File {path: $src}), (b:File {path: $dst})
				CREATE (a)-[:IMPORTS]->(b)`, nil
	default:
		return "", fmt.Errorf("kuzu: unsupported edge kind: %s", kind)
	}
}

// ---------- Read operations ----------

// GetDoc retrieves a single Doc node by anchor, or returns nil if not found.
func (s *KuzuStore) GetDoc(_ context.Context, anchor string) (*DocNode, error) {
	rows, err := s.query(
		`MATCH (d:Doc {anchor: $anchor})
		 RETURN d.anchor, d.path, d.level, d.title, d.sections, d.orphans`,
		map[string]any{"anchor": anchor},
	)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rowToDoc(rows[0]), nil
}

// ListDocs returns Doc nodes at the given level ordered by path.
// An empty level returns every document.
func (s *KuzuStore) ListDocs(_ context.Context, level string) ([]DocNode, error) {
	cypher := `MATCH (d:Doc)
		 RETURN d.anchor, d.path, d.level, d.title, d.sections, d.orphans
		 ORDER BY d.path`
	var params map[string]any
	if level != "" {
		cypher = `MATCH (d:Doc) WHERE d.level = $level
		 RETURN d.anchor, d.path, d.level, d.title, d.sections, d.orphans
		 ORDER BY d.path`
		params = map[string]any{"level": level}
	}
	rows, err := s.query(cypher, params)
	if err != nil {
		return nil, err
	}
	out := make([]DocNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToDoc(r))
	}
	return out, nil
}

// ListFiles returns every File node ordered by path.
func (s *KuzuStore) ListFiles(_ context.Context) ([]FileNode, error) {
	rows, err := s.query(
		`MATCH (f:File)
		 RETURN f.path, f.language, f.loc
		 ORDER BY f.path`, nil)
	if err != nil {
		return nil, err
	}
	out := make([]FileNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, FileNode{
			Path:     toString(r[0]),
			Language: toString(r[1]),
			LOC:      toInt(r[2]),
		})
	}
	return out, nil
}

// ListSymbols returns every Symbol node ordered by id.
func (s *KuzuStore) ListSymbols(_ context.Context) ([]SymbolNode, error) {
	rows, err := s.query(
		`MATCH (s:Symbol)
		 RETURN s.id, s.name, s.kind, s.exported, s.file_path, s.line
		 ORDER BY s.id`, nil)
	if err != nil {
		return nil, err
	}
	out := make([]SymbolNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToSymbol(r))
	}
	return out, nil
}

// FindSymbols returns symbols whose name contains the query string.
func (s *KuzuStore) FindSymbols(_ context.Context, queryStr string, limit int) ([]SymbolNode, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.query(
		`MATCH (s:Symbol) WHERE lower(s.name) CONTAINS lower($q)
		 RETURN s.id, s.name, s.kind, s.exported, s.file_path, s.line
		 ORDER BY s.id
		 LIMIT $lim`,
		map[string]any{
			"q":   queryStr,
			"lim": int64(limit),
		},
	)
	if err != nil {
		return nil, err
	}
	out := make([]SymbolNode, 0, len(rows))
	for _, r := range rows {
		out = append(out, *rowToSymbol(r))
	}
	return out, nil
}

// ---------- Edge enumeration ----------

// GetAllEdges returns all edges across all relationship tables.
func (s *KuzuStore) GetAllEdges(_ context.Context) ([]Edge, error) {
	type relQuery struct {
		cypher string
		kind   EdgeKind
	}

	queries := []relQuery{
		{"MATCH (a:Doc)-[:LINKS]->(b:Doc) RETURN a.anchor, b.anchor", EdgeKindLinks},
		{"MATCH (a:Doc)-[:REFERENCES]->(b:Symbol) RETURN a.anchor, b.id", EdgeKindReferences},
		{"MATCH (a:Doc)-[:DOCUMENTS]->(b:File) RETURN a.anchor, b.path", EdgeKindDocuments},
		{"MATCH (a:File)-[:IMPORTS]->(b:File) RETURN a.path, b.path", EdgeKindImports},
	}

	var edges []Edge
	for _, q := range queries {
		rows, err := s.query(q.cypher, nil)
		if err != nil {
			// Table may not exist yet; skip.
			continue
		}
		for _, r := range rows {
			edges = append(edges, Edge{
				SourceID: toString(r[0]),
				TargetID: toString(r[1]),
				Kind:     q.kind,
			})
		}
	}
	return edges, nil
}

// ---------- Stats ----------

// Stats returns counts of all node and edge tables.
func (s *KuzuStore) Stats(_ context.Context) (*GraphStats, error) {
	docs, err := s.countTable("Doc")
	if err != nil {
		return nil, err
	}
	files, err := s.countTable("File")
	if err != nil {
		return nil, err
	}
	symbols, err := s.countTable("Symbol")
	if err != nil {
		return nil, err
	}
	edges, err := s.countEdges()
	if err != nil {
		return nil, err
	}
	return &GraphStats{
		DocCount:    docs,
		FileCount:   files,
		SymbolCount: symbols,
		EdgeCount:   edges,
	}, nil
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// countTable returns the number of rows in a node table.
func (s *KuzuStore) countTable(table string) (int, error) {
	// Table name is a fixed internal constant, not user input.
	cypher := fmt.Sprintf("MATCH (n:%s) RETURN count(n)", table)
	rows, err := s.query(cypher, nil)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 || len(rows[0]) == 0 {
		return 0, nil
	}
	return toInt(rows[0][0]), nil
}

// countEdges returns the total number of edges across all relationship tables.
func (s *KuzuStore) countEdges() (int, error) {
	total := 0
	for _, t := range relTables {
		cypher := fmt.Sprintf("MATCH ()-[r:%s]->() RETURN count(r)", t)
		rows, err := s.query(cypher, nil)
		if err != nil {
			// Table may not exist yet; treat as zero.
			continue
		}
		if len(rows) > 0 && len(rows[0]) > 0 {
			total += toInt(rows[0][0])
		}
	}
	return total, nil
}

// rowToDoc converts a 6-column result row into a DocNode.
// Column order: anchor, path, level, title, sections, orphans.
func rowToDoc(r []any) *DocNode {
	return &DocNode{
		Anchor:   toString(r[0]),
		Path:     toString(r[1]),
		Level:    toString(r[2]),
		Title:    toString(r[3]),
		Sections: toInt(r[4]),
		Orphans:  toInt(r[5]),
	}
}

// rowToSymbol converts a 6-column result row into a SymbolNode.
// Column order: id, name, kind, exported, file_path, line.
func rowToSymbol(r []any) *SymbolNode {
	return &SymbolNode{
		ID:       toString(r[0]),
		Name:     toString(r[1]),
		Kind:     toString(r[2]),
		Exported: toBool(r[3]),
		FilePath: toString(r[4]),
		Line:     toInt(r[5]),
	}
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, bool, string).
// These helpers safely coerce any -> concrete type.

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

func toBool(v any) bool {
	if b, ok := v.(bool); ok {
		return b
	}
	return false
}
