package peers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS proxies (
	id  INTEGER PRIMARY KEY AUTOINCREMENT,
	url TEXT NOT NULL UNIQUE
)`

type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal=WAL&_timeout=5000")
	if err != nil {
		return nil, storeErr("open", err)
	}
	// one writer keeps WAL happy and makes :memory: databases usable
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		db.Close()
		return nil, storeErr("migrate", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Exists(ctx context.Context, url string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM proxies WHERE url = ?`, url).Scan(&n)
	if err != nil {
		return false, storeErr("count", err)
	}
	return n > 0, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, p Peer) error {
	_, err := s.db.ExecContext(ctx, `INSERT INTO proxies (url) VALUES (?)`, p.URL)
	var se sqlite3.Error
	if errors.As(err, &se) && se.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%s: %w", p.URL, ErrDuplicatePeer)
	}
	return storeErr("insert", err)
}

func (s *SQLiteStore) Get(ctx context.Context, url string) (Peer, error) {
	var p Peer
	err := s.db.QueryRowContext(ctx, `SELECT url FROM proxies WHERE url = ?`, url).Scan(&p.URL)
	if errors.Is(err, sql.ErrNoRows) {
		return Peer{}, ErrPeerNotFound
	}
	if err != nil {
		return Peer{}, storeErr("select", err)
	}
	return p, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, url string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM proxies WHERE url = ?`, url)
	return storeErr("delete", err)
}

func (s *SQLiteStore) List(ctx context.Context) ([]Peer, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT url FROM proxies ORDER BY id`)
	if err != nil {
		return nil, storeErr("select", err)
	}
	defer rows.Close()

	out := []Peer{}
	for rows.Next() {
		var p Peer
		if err := rows.Scan(&p.URL); err != nil {
			return nil, storeErr("scan", err)
		}
		out = append(out, p)
	}
	return out, storeErr("rows", rows.Err())
}

func (s *SQLiteStore) Close(context.Context) error {
	return s.db.Close()
}
