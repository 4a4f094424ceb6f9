package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/wikid/internal/model"
)

// FileName is the name of the database file inside the database directory.
const FileName = "wikid.db"

// timestampLayout stores times with a fixed fraction width so that
// lexical order of the column matches chronological order.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrSearchNotFound is returned when no stored search matches an ID.
var ErrSearchNotFound = errors.New("search not found")

// HistoryDB provides SQLite-based storage for finished searches.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// Path returns the database file path.
func (hdb *HistoryDB) Path() string {
	return hdb.dbPath
}

// createTables creates the database schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per finished search
	CREATE TABLE IF NOT EXISTS searches (
		id TEXT PRIMARY KEY,
		start TEXT NOT NULL,
		destination TEXT NOT NULL,
		outcome TEXT NOT NULL,
		path_json TEXT NOT NULL,
		path_cost REAL DEFAULT 0,
		steps INTEGER NOT NULL,
		elapsed_ms INTEGER NOT NULL,
		error TEXT,
		result_json TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_searches_start ON searches(start);
	CREATE INDEX IF NOT EXISTS idx_searches_destination ON searches(destination);
	CREATE INDEX IF NOT EXISTS idx_searches_timestamp ON searches(timestamp);

	-- Scored edges of each search's graph, in insertion order
	CREATE TABLE IF NOT EXISTS search_edges (
		search_id TEXT NOT NULL REFERENCES searches(id) ON DELETE CASCADE,
		seq INTEGER NOT NULL,
		from_doc TEXT NOT NULL,
		to_doc TEXT NOT NULL,
		weight REAL NOT NULL,
		on_path INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (search_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_edges_to ON search_edges(to_doc);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveSearch stores a finished search and its edges in one transaction.
// A new UUID is assigned to result.ID when it is empty.
func (hdb *HistoryDB) SaveSearch(ctx context.Context, result *model.SearchResult) (string, error) {
	if result == nil {
		return "", errors.New("cannot save nil search result")
	}
	if result.ID == "" {
		result.ID = uuid.NewString()
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to serialize search result: %w", err)
	}
	path := result.Path
	if path == nil {
		path = []model.DocumentID{}
	}
	pathJSON, err := json.Marshal(path)
	if err != nil {
		return "", fmt.Errorf("failed to serialize path: %w", err)
	}

	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
	INSERT INTO searches (id, start, destination, outcome, path_json, path_cost, steps, elapsed_ms, error, result_json, timestamp)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		result.ID,
		string(result.Start),
		string(result.Destination),
		result.Outcome.String(),
		string(pathJSON),
		result.PathCost,
		result.Steps(),
		result.Elapsed.Milliseconds(),
		result.Error,
		string(resultJSON),
		result.StartedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save search: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
	INSERT INTO search_edges (search_id, seq, from_doc, to_doc, weight, on_path)
	VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("failed to prepare edge insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range result.Edges {
		onPath := 0
		if result.OnPath(e.From, e.To) {
			onPath = 1
		}
		if _, err := stmt.ExecContext(ctx, result.ID, i, string(e.From), string(e.To), e.Weight, onPath); err != nil {
			return "", fmt.Errorf("failed to save edge %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit search: %w", err)
	}
	return result.ID, nil
}

// GetSearch retrieves a stored search by ID. An unambiguous ID prefix
// is accepted as well, so short IDs from `wikid history` can be pasted.
func (hdb *HistoryDB) GetSearch(ctx context.Context, id string) (*model.SearchResult, error) {
	if id == "" {
		return nil, ErrSearchNotFound
	}

	rows, err := hdb.db.QueryContext(ctx, `
	SELECT result_json FROM searches
	WHERE id = ? OR id LIKE ? || '%'
	ORDER BY (id = ?) DESC
	LIMIT 2
	`, id, id, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get search: %w", err)
	}
	defer rows.Close()

	var found []string
	for rows.Next() {
		var resultJSON string
		if err := rows.Scan(&resultJSON); err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}
		found = append(found, resultJSON)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to get search: %w", err)
	}

	if len(found) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSearchNotFound, id)
	}
	if len(found) > 1 {
		// An exact match sorts first; otherwise the prefix is ambiguous.
		var first model.SearchResult
		if err := json.Unmarshal([]byte(found[0]), &first); err == nil && first.ID == id {
			return &first, nil
		}
		return nil, fmt.Errorf("search ID prefix %q is ambiguous", id)
	}

	var result model.SearchResult
	if err := json.Unmarshal([]byte(found[0]), &result); err != nil {
		return nil, fmt.Errorf("failed to parse search: %w", err)
	}
	return &result, nil
}

// SearchSummary contains summary information about a stored search.
// This is used for listing history without loading the full graph.
type SearchSummary struct {
	// ID is the search UUID.
	ID string

	// Start is the start document.
	Start model.DocumentID

	// Destination is the destination document.
	Destination model.DocumentID

	// Outcome is the terminal state of the search.
	Outcome model.Outcome

	// Path is the extracted path, empty on failure.
	Path []model.DocumentID

	// Steps is the number of expansions performed.
	Steps int

	// Elapsed is the wall-clock duration of the search.
	Elapsed time.Duration

	// Timestamp is when the search started.
	Timestamp time.Time
}

// ListFilter narrows ListSearches. Zero values match everything.
type ListFilter struct {
	// Start restricts results to searches from this document.
	Start model.DocumentID

	// Destination restricts results to searches to this document.
	Destination model.DocumentID

	// Limit caps the number of rows. Zero means no limit.
	Limit int
}

// ListSearches returns stored searches, most recent first.
func (hdb *HistoryDB) ListSearches(ctx context.Context, filter ListFilter) ([]SearchSummary, error) {
	query := `
	SELECT id, start, destination, outcome, path_json, steps, elapsed_ms, timestamp
	FROM searches
	WHERE 1=1
	`
	args := make([]any, 0)

	if filter.Start != "" {
		query += " AND start = ?"
		args = append(args, string(filter.Start))
	}
	if filter.Destination != "" {
		query += " AND destination = ?"
		args = append(args, string(filter.Destination))
	}

	query += " ORDER BY timestamp DESC, id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := hdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list searches: %w", err)
	}
	defer rows.Close()

	results := make([]SearchSummary, 0)
	for rows.Next() {
		var (
			s         SearchSummary
			start     string
			dest      string
			outcome   string
			pathJSON  string
			elapsedMS int64
			timestamp string
		)
		if err := rows.Scan(&s.ID, &start, &dest, &outcome, &pathJSON, &s.Steps, &elapsedMS, &timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan search: %w", err)
		}

		s.Start = model.DocumentID(start)
		s.Destination = model.DocumentID(dest)
		s.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		s.Timestamp = parseTimestamp(timestamp)
		if s.Outcome, err = model.ParseOutcome(outcome); err != nil {
			s.Outcome = model.OutcomeUnknown
		}
		if err := json.Unmarshal([]byte(pathJSON), &s.Path); err != nil {
			s.Path = nil // Skip malformed paths
		}

		results = append(results, s)
	}

	return results, rows.Err()
}

// StoredEdge is one row of the search_edges table.
type StoredEdge struct {
	model.Edge

	// Seq is the insertion order of the edge within its search.
	Seq int

	// OnPath reports whether the edge lies on the extracted path.
	OnPath bool
}

// GetSearchEdges returns the edges stored for a search in insertion order.
func (hdb *HistoryDB) GetSearchEdges(ctx context.Context, id string) ([]StoredEdge, error) {
	rows, err := hdb.db.QueryContext(ctx, `
	SELECT seq, from_doc, to_doc, weight, on_path
	FROM search_edges
	WHERE search_id = ?
	ORDER BY seq
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get search edges: %w", err)
	}
	defer rows.Close()

	edges := make([]StoredEdge, 0)
	for rows.Next() {
		var (
			e        StoredEdge
			from, to string
			onPath   int
		)
		if err := rows.Scan(&e.Seq, &from, &to, &e.Weight, &onPath); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		e.From = model.DocumentID(from)
		e.To = model.DocumentID(to)
		e.OnPath = onPath != 0
		edges = append(edges, e)
	}

	return edges, rows.Err()
}

// DeleteSearch removes a stored search and its edges.
func (hdb *HistoryDB) DeleteSearch(ctx context.Context, id string) error {
	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM search_edges WHERE search_id = ?", id); err != nil {
		return fmt.Errorf("failed to delete edges: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM searches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete search: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrSearchNotFound, id)
	}
	return tx.Commit()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
