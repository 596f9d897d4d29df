package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mdasilveira/folio/internal/citation"
)

// DB wraps a SQLite database connection.
type DB struct {
	db *sql.DB
}

// YearCount is the number of cached publications for one year label.
type YearCount struct {
	Year  string `json:"year"`
	Count int    `json:"count"`
}

const selectFields = `key, type, year, title, authors, venue, link,
	filter_year, filter_authors, filter_venue, filter_title, degraded`

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS pubs (
			pos INTEGER PRIMARY KEY,
			key TEXT NOT NULL,
			type TEXT NOT NULL,
			year TEXT NOT NULL,
			title TEXT NOT NULL,
			authors TEXT,
			venue TEXT,
			link TEXT,
			filter_year TEXT,
			filter_authors TEXT,
			filter_venue TEXT,
			filter_title TEXT,
			haystack TEXT NOT NULL,
			degraded INTEGER NOT NULL DEFAULT 0
		);

		CREATE INDEX IF NOT EXISTS idx_pubs_year ON pubs(year);

		CREATE VIRTUAL TABLE IF NOT EXISTS pubs_fts USING fts5(
			pos UNINDEXED,
			title,
			authors,
			venue,
			year
		);

		CREATE TABLE IF NOT EXISTS _meta (
			key TEXT PRIMARY KEY,
			value TEXT
		);
	`
	_, err := db.Exec(schema)
	return err
}

// Rebuild clears the database and loads records, keeping their order.
func (d *DB) Rebuild(records []Record) (int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("starting rebuild: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM pubs"); err != nil {
		return 0, fmt.Errorf("clearing pubs table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM pubs_fts"); err != nil {
		return 0, fmt.Errorf("clearing pubs_fts table: %w", err)
	}

	pubsStmt, err := tx.Prepare(`
		INSERT INTO pubs (
			pos, key, type, year, title, authors, venue, link,
			filter_year, filter_authors, filter_venue, filter_title, haystack, degraded
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing pubs insert: %w", err)
	}
	defer pubsStmt.Close()

	ftsStmt, err := tx.Prepare(`INSERT INTO pubs_fts (pos, title, authors, venue, year) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for i, r := range records {
		_, err := pubsStmt.Exec(
			i, r.Key, r.Type, r.Year, r.Title, r.Authors, r.Venue, r.Link,
			r.Filter.Year, r.Filter.Authors, r.Filter.Venue, r.Filter.Title,
			r.Filter.Haystack(), r.Degraded,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting %s: %w", r.Key, err)
		}
		if _, err := ftsStmt.Exec(i, r.Title, r.Authors, r.Venue, r.Year); err != nil {
			return 0, fmt.Errorf("inserting fts for %s: %w", r.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing rebuild: %w", err)
	}
	return len(records), nil
}

// Sync rebuilds the database from the JSONL snapshot when the snapshot has
// changed since the last sync. It reports whether a rebuild happened.
func (d *DB) Sync(jsonlPath string) (bool, error) {
	hash, err := ComputeJSONLHash(jsonlPath)
	if err != nil {
		return false, fmt.Errorf("computing hash: %w", err)
	}
	stored, err := d.meta("jsonl_hash")
	if err != nil {
		return false, err
	}
	if stored == hash {
		return false, nil
	}

	records, err := ReadAll(jsonlPath)
	if err != nil {
		return false, fmt.Errorf("reading records: %w", err)
	}
	if _, err := d.Rebuild(records); err != nil {
		return false, err
	}
	if err := d.setMeta("jsonl_hash", hash); err != nil {
		return false, fmt.Errorf("updating hash: %w", err)
	}
	if err := d.setMeta("last_sync", time.Now().UTC().Format(time.RFC3339)); err != nil {
		return false, fmt.Errorf("updating sync time: %w", err)
	}
	return true, nil
}

// LastSync returns the time of the last Sync rebuild, zero if none.
func (d *DB) LastSync() (time.Time, error) {
	s, err := d.meta("last_sync")
	if err != nil || s == "" {
		return time.Time{}, err
	}
	return time.Parse(time.RFC3339, s)
}

func (d *DB) meta(key string) (string, error) {
	var v sql.NullString
	err := d.db.QueryRow("SELECT value FROM _meta WHERE key = ?", key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", key, err)
	}
	return v.String, nil
}

func (d *DB) setMeta(key, value string) error {
	_, err := d.db.Exec(`INSERT OR REPLACE INTO _meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

// Search returns records whose title, authors, venue or year contain query,
// case-insensitively, in list order. An empty query returns everything.
// limit <= 0 means no limit.
func (d *DB) Search(query string, limit int) ([]Record, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.Query(`
		SELECT `+selectFields+`
		FROM pubs
		WHERE ? = '' OR instr(haystack, ?) > 0
		ORDER BY pos
		LIMIT ?`, q, q, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// SearchFTS performs a full-text token search, best matches first.
func (d *DB) SearchFTS(query string, limit int) ([]Record, error) {
	ftsQuery := PrepareFTSQuery(query)
	if ftsQuery == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.db.Query(`
		SELECT `+prefixed("p.", selectFields)+`
		FROM pubs_fts f
		JOIN pubs p ON p.pos = f.pos
		WHERE pubs_fts MATCH ?
		ORDER BY f.rank, p.pos
		LIMIT ?`, ftsQuery, limit)
	if err != nil {
		return nil, fmt.Errorf("searching: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// YearCounts returns publication counts per year, newest first with
// non-numeric labels last.
func (d *DB) YearCounts() ([]YearCount, error) {
	rows, err := d.db.Query(`
		SELECT year, COUNT(*)
		FROM pubs
		GROUP BY year
		ORDER BY
			CASE WHEN year GLOB '[0-9]*' AND year NOT GLOB '*[^0-9]*' THEN 0
			     WHEN year = ? THEN 2
			     ELSE 1 END,
			CAST(year AS INTEGER) DESC,
			year`, citation.NoDate)
	if err != nil {
		return nil, fmt.Errorf("counting years: %w", err)
	}
	defer rows.Close()

	var counts []YearCount
	for rows.Next() {
		var yc YearCount
		if err := rows.Scan(&yc.Year, &yc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, yc)
	}
	return counts, rows.Err()
}

// Count returns the number of cached publications.
func (d *DB) Count() (int, error) {
	var n int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM pubs").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting: %w", err)
	}
	return n, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var r Record
		var authors, venue, link sql.NullString
		err := rows.Scan(&r.Key, &r.Type, &r.Year, &r.Title, &authors, &venue, &link,
			&r.Filter.Year, &r.Filter.Authors, &r.Filter.Venue, &r.Filter.Title, &r.Degraded)
		if err != nil {
			return nil, fmt.Errorf("scanning: %w", err)
		}
		r.Authors, r.Venue, r.Link = authors.String, venue.String, link.String
		records = append(records, r)
	}
	return records, rows.Err()
}

func prefixed(prefix, fields string) string {
	parts := strings.Split(fields, ",")
	for i, p := range parts {
		parts[i] = prefix + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

// PrepareFTSQuery escapes special characters for FTS5 queries.
func PrepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// If query contains special chars, quote it
	if strings.ContainsAny(query, "\"*+-:(){}[]^~.,'") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}
	return query
}
