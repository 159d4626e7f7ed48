package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"go.mongodb.org/mongo-driver/bson"
)

// SQLiteStore keeps BSON documents in a single local SQLite table. It suits
// the CLI and single-node deployments without a MongoDB server.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (and creates if needed) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One writer keeps the read-merge-write in Merge serialized.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db, path: path}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	documentsTable := `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		key TEXT NOT NULL,
		seq INTEGER NOT NULL,
		body BLOB NOT NULL,
		PRIMARY KEY (collection, key)
	);`

	if _, err := s.db.Exec(documentsTable); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

// Merge implements Store.
func (s *SQLiteStore) Merge(ctx context.Context, collection, key string, doc any) error {
	m, err := toDocument(doc)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var existing bson.M
	var body []byte
	err = tx.QueryRowContext(ctx, `SELECT body FROM documents WHERE collection = ? AND key = ?`, collection, key).Scan(&body)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("failed to read document: %w", err)
	default:
		if err := bson.Unmarshal(body, &existing); err != nil {
			return fmt.Errorf("failed to decode stored document: %w", err)
		}
	}

	merged, err := bson.Marshal(mergeInto(existing, m))
	if err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO documents (collection, key, seq, body)
	VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM documents), ?)`
	if _, err := tx.ExecContext(ctx, query, collection, key, merged); err != nil {
		return fmt.Errorf("failed to write document: %w", err)
	}
	return tx.Commit()
}

// Latest implements Store. Filtering and ordering happen in Go over the
// collection's rows.
func (s *SQLiteStore) Latest(ctx context.Context, collection, orderField string, filter Filter, out any) error {
	rows, err := s.db.QueryContext(ctx, `SELECT seq, body FROM documents WHERE collection = ?`, collection)
	if err != nil {
		return fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	var cands []candidate
	for rows.Next() {
		var (
			seq  int64
			body []byte
		)
		if err := rows.Scan(&seq, &body); err != nil {
			return fmt.Errorf("failed to scan document: %w", err)
		}
		var m bson.M
		if err := bson.Unmarshal(body, &m); err != nil {
			return fmt.Errorf("failed to decode stored document: %w", err)
		}
		cands = append(cands, candidate{doc: m, seq: seq})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read documents: %w", err)
	}

	best, ok := pickLatest(cands, orderField, filter)
	if !ok {
		return ErrNotFound
	}
	return decodeDocument(best, out)
}

// Close implements Store.
func (s *SQLiteStore) Close(ctx context.Context) error {
	return s.db.Close()
}
