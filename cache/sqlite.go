package cache

import (
	"database/sql"
	"encoding/json"
	"time"

	_ "modernc.org/sqlite"
)

const createEntriesTable = `
CREATE TABLE IF NOT EXISTS cache_entries (
	key TEXT NOT NULL PRIMARY KEY,
	value TEXT NOT NULL,
	created_at INTEGER NOT NULL,
	kind TEXT NOT NULL,
	attributes TEXT NOT NULL DEFAULT '{}'
);
`

// SQLiteStore is a single-file SQLite-backed persistent store, for
// platforms where thousands of small cache files are more expensive
// than one database file.
type SQLiteStore struct {
	db        *sql.DB
	retention time.Duration
}

// NewSQLiteStore opens (and migrates) the database at dbPath.
func NewSQLiteStore(dbPath string, retention time.Duration) (*SQLiteStore, error) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, &StorageError{Op: "open", Key: dbPath, Kind: FailureIO, Cause: err}
	}
	if _, err := db.Exec(createEntriesTable); err != nil {
		db.Close()
		return nil, &StorageError{Op: "migrate", Key: dbPath, Kind: FailureIO, Cause: err}
	}
	return &SQLiteStore{db: db, retention: retention}, nil
}

// SaveEntry upserts the entry row.
func (s *SQLiteStore) SaveEntry(entry Entry) error {
	attrs, err := json.Marshal(entry.Attributes)
	if err != nil {
		return &StorageError{Op: "save", Key: entry.Key, Kind: FailureCorrupt, Cause: err}
	}
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO cache_entries (key, value, created_at, kind, attributes)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.Key, entry.Value, entry.CreatedAt.UnixNano(), string(entry.Kind), string(attrs),
	)
	if err != nil {
		return &StorageError{Op: "save", Key: entry.Key, Kind: FailureIO, Cause: err}
	}
	return nil
}

// LoadEntry reads a single entry row.
func (s *SQLiteStore) LoadEntry(key string) (Entry, error) {
	row := s.db.QueryRow(
		`SELECT value, created_at, kind, attributes FROM cache_entries WHERE key = ?`, key)

	var (
		value     string
		createdAt int64
		kind      string
		attrsJSON string
	)
	if err := row.Scan(&value, &createdAt, &kind, &attrsJSON); err != nil {
		if err == sql.ErrNoRows {
			return Entry{}, &StorageError{Op: "load", Key: key, Kind: FailureNotFound, Cause: err}
		}
		return Entry{}, &StorageError{Op: "load", Key: key, Kind: FailureIO, Cause: err}
	}
	var attrs map[string]string
	if err := json.Unmarshal([]byte(attrsJSON), &attrs); err != nil {
		return Entry{}, &StorageError{Op: "load", Key: key, Kind: FailureCorrupt, Cause: err}
	}
	return Entry{
		Key:        key,
		Value:      value,
		CreatedAt:  time.Unix(0, createdAt),
		Kind:       Kind(kind),
		Attributes: attrs,
	}, nil
}

// LoadAllValid returns every row that decodes and has not expired.
func (s *SQLiteStore) LoadAllValid() ([]Entry, error) {
	cutoff := time.Now().Add(-s.retention).UnixNano()
	rows, err := s.db.Query(
		`SELECT key, value, created_at, kind, attributes FROM cache_entries WHERE created_at > ?`, cutoff)
	if err != nil {
		return nil, &StorageError{Op: "load_all", Kind: FailureIO, Cause: err}
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			key       string
			value     string
			createdAt int64
			kind      string
			attrsJSON string
		)
		if err := rows.Scan(&key, &value, &createdAt, &kind, &attrsJSON); err != nil {
			continue
		}
		var attrs map[string]string
		if err := json.Unmarshal([]byte(attrsJSON), &attrs); err != nil {
			continue
		}
		entries = append(entries, Entry{
			Key:        key,
			Value:      value,
			CreatedAt:  time.Unix(0, createdAt),
			Kind:       Kind(kind),
			Attributes: attrs,
		})
	}
	if err := rows.Err(); err != nil {
		return entries, &StorageError{Op: "load_all", Kind: FailureIO, Cause: err}
	}
	return entries, nil
}

// DeleteAll removes every row.
func (s *SQLiteStore) DeleteAll() error {
	if _, err := s.db.Exec(`DELETE FROM cache_entries`); err != nil {
		return &StorageError{Op: "delete_all", Kind: FailureIO, Cause: err}
	}
	return nil
}

// DeleteWherePrefix removes rows whose key begins with prefix.
func (s *SQLiteStore) DeleteWherePrefix(prefix string) error {
	if _, err := s.db.Exec(
		`DELETE FROM cache_entries WHERE key LIKE ? || '%'`, prefix); err != nil {
		return &StorageError{Op: "delete_prefix", Key: prefix, Kind: FailureIO, Cause: err}
	}
	return nil
}

// DiskUsage reports the database size from the SQLite pragmas.
func (s *SQLiteStore) DiskUsage() int64 {
	var pageCount, pageSize int64
	if err := s.db.QueryRow(`PRAGMA page_count`).Scan(&pageCount); err != nil {
		return 0
	}
	if err := s.db.QueryRow(`PRAGMA page_size`).Scan(&pageSize); err != nil {
		return 0
	}
	return pageCount * pageSize
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ PersistentStore = (*SQLiteStore)(nil)
