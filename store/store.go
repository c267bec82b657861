// Package store handles SQLite storage for function digests.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/chazu/beatrice/runtime"
)

// ErrNotFound indicates the requested digest doesn't exist.
var ErrNotFound = errors.New("digest not found")

// Store persists function digests keyed by content hash.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) a digest store at the given path.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Set busy timeout for concurrent access
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	// Create table if needed
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS functions (
		hash TEXT PRIMARY KEY,
		digest BLOB NOT NULL,
		source TEXT NOT NULL DEFAULT ''
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating table: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Put persists one digest. Re-putting the same hash is a no-op overwrite,
// since equal hashes mean equal content.
func (s *Store) Put(d *runtime.FunctionDigest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := runtime.MarshalDigest(d)
	if err != nil {
		return fmt.Errorf("encoding digest: %w", err)
	}

	_, err = s.db.Exec(
		"INSERT OR REPLACE INTO functions (hash, digest, source) VALUES (?, ?, ?)",
		d.HexHash(), data, d.Source,
	)
	if err != nil {
		return fmt.Errorf("saving digest: %w", err)
	}
	return nil
}

// Get retrieves a digest by its hex content hash.
func (s *Store) Get(hexHash string) (*runtime.FunctionDigest, error) {
	var data []byte
	err := s.db.QueryRow("SELECT digest FROM functions WHERE hash = ?", hexHash).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying digest: %w", err)
	}
	return runtime.UnmarshalDigest(data)
}

// Has reports whether a digest with the given hash is stored.
func (s *Store) Has(hexHash string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM functions WHERE hash = ?", hexHash).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("querying digest: %w", err)
	}
	return true, nil
}

// Delete removes a digest from the store.
func (s *Store) Delete(hexHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec("DELETE FROM functions WHERE hash = ?", hexHash); err != nil {
		return fmt.Errorf("deleting digest: %w", err)
	}
	return nil
}

// PutSnapshot persists every digest in a snapshot.
func (s *Store) PutSnapshot(snap *runtime.Snapshot) error {
	for i := range snap.Functions {
		if err := s.Put(&snap.Functions[i]); err != nil {
			return err
		}
	}
	return nil
}

// Hashes returns all stored hex hashes.
func (s *Store) Hashes() ([]string, error) {
	rows, err := s.db.Query("SELECT hash FROM functions ORDER BY hash")
	if err != nil {
		return nil, fmt.Errorf("querying hashes: %w", err)
	}
	defer rows.Close()

	var hashes []string
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scanning hash: %w", err)
		}
		hashes = append(hashes, h)
	}
	return hashes, rows.Err()
}

// Count returns the number of stored digests.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM functions").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting digests: %w", err)
	}
	return n, nil
}
