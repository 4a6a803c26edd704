package docstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Resource on a local SQLite database. It backs the
// serve command's standalone mode and the test suite.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore creates a new SQLite store instance.
func NewSQLiteStore() *SQLiteStore {
	return &SQLiteStore{}
}

// Open opens a connection to the SQLite database.
// Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := path
	if path != ":memory:" {
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Load implements Resource.
func (s *SQLiteStore) Load(ctx context.Context, doctype, name string) (json.RawMessage, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE doctype = ? AND name = ?`,
		doctype, name,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s %s: %w", doctype, name, err)
	}
	return data, nil
}

// Save implements Resource. It upserts the document.
func (s *SQLiteStore) Save(ctx context.Context, doctype, name string, doc any) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %s %s: %w", doctype, name, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (doctype, name, data, modified_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT (doctype, name) DO UPDATE SET data = excluded.data, modified_at = excluded.modified_at`,
		doctype, name, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save %s %s: %w", doctype, name, err)
	}
	return nil
}

// Delete implements Resource. Shares go with the document.
func (s *SQLiteStore) Delete(ctx context.Context, doctype, name string) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE doctype = ? AND name = ?`, doctype, name)
	if err != nil {
		return fmt.Errorf("failed to delete %s %s: %w", doctype, name, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}

	_, err = s.db.ExecContext(ctx,
		`DELETE FROM document_shares WHERE doctype = ? AND name = ?`, doctype, name)
	if err != nil {
		return fmt.Errorf("failed to delete shares for %s %s: %w", doctype, name, err)
	}
	return nil
}

// Call implements Resource. The local store supports the sharing methods;
// anything else is an error.
func (s *SQLiteStore) Call(ctx context.Context, doctype, name, method string, args map[string]any) (json.RawMessage, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	switch method {
	case MethodGetShares:
		return s.getShares(ctx, doctype, name)
	case MethodUpdateShares:
		return nil, s.updateShares(ctx, doctype, name, args)
	default:
		return nil, fmt.Errorf("unsupported method %q", method)
	}
}

func (s *SQLiteStore) getShares(ctx context.Context, doctype, name string) (json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT user, read, write FROM document_shares WHERE doctype = ? AND name = ? ORDER BY user`,
		doctype, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query shares: %w", err)
	}
	defer func() { _ = rows.Close() }()

	shares := []SharePermission{}
	for rows.Next() {
		var p SharePermission
		if err := rows.Scan(&p.User, &p.Read, &p.Write); err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		shares = append(shares, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}
	return json.Marshal(shares)
}

func (s *SQLiteStore) updateShares(ctx context.Context, doctype, name string, args map[string]any) error {
	raw, err := json.Marshal(args["permissions"])
	if err != nil {
		return fmt.Errorf("failed to encode permissions: %w", err)
	}
	var perms []SharePermission
	if err := json.Unmarshal(raw, &perms); err != nil {
		return fmt.Errorf("invalid permissions payload: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM document_shares WHERE doctype = ? AND name = ?`, doctype, name); err != nil {
		return fmt.Errorf("failed to clear shares: %w", err)
	}
	for _, p := range perms {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO document_shares (doctype, name, user, read, write) VALUES (?, ?, ?, ?, ?)`,
			doctype, name, p.User, p.Read, p.Write); err != nil {
			return fmt.Errorf("failed to insert share for %s: %w", p.User, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit shares: %w", err)
	}
	return nil
}
