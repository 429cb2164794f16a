package devapi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound indicates no row matched the identifier for the user.
var ErrNotFound = errors.New("not found")

// List is a row of the lists table. Booleans are stored and served as 0/1.
type List struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	IsVisible int    `json:"is_visible"`
}

// Item is a row of the tasks table, a sub-task of a list.
type Item struct {
	ID      int64  `json:"id"`
	ListID  int64  `json:"list_id"`
	Content string `json:"content"`
	Done    int    `json:"done"`
}

// Store keeps lists and their tasks in sqlite, scoped per user.
type Store struct {
	db *sql.DB
}

const schema = `
	CREATE TABLE IF NOT EXISTS lists (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		is_visible INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		list_id INTEGER NOT NULL,
		content TEXT NOT NULL,
		done INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_lists_user ON lists(user_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_list ON tasks(list_id);
`

// Open opens (creating if needed) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers anyway.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Lists returns the user's lists in insertion order.
func (s *Store) Lists(ctx context.Context, user string) ([]List, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, title, is_visible FROM lists WHERE user_id = ? ORDER BY id", user)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lists := make([]List, 0)
	for rows.Next() {
		var l List
		if err := rows.Scan(&l.ID, &l.Title, &l.IsVisible); err != nil {
			return nil, err
		}
		lists = append(lists, l)
	}
	return lists, rows.Err()
}

// CreateList inserts a list and returns its identifier.
func (s *Store) CreateList(ctx context.Context, user, title string) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO lists(user_id, title) VALUES(?, ?)", user, title)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// UpdateList sets title and visibility of one of the user's lists.
func (s *Store) UpdateList(ctx context.Context, user string, id int64, title string, visible bool) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE lists SET title = ?, is_visible = ? WHERE id = ? AND user_id = ?",
		title, boolInt(visible), id, user)
	if err != nil {
		return err
	}
	return expectRow(res)
}

// DeleteList removes one of the user's lists together with its tasks.
func (s *Store) DeleteList(ctx context.Context, user string, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, "DELETE FROM lists WHERE id = ? AND user_id = ?", id, user)
	if err != nil {
		return err
	}
	if err := expectRow(res); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM tasks WHERE list_id = ?", id); err != nil {
		return err
	}
	return tx.Commit()
}

// Items returns the tasks of one of the user's lists.
func (s *Store) Items(ctx context.Context, user string, listID int64) ([]Item, error) {
	if err := s.ownList(ctx, user, listID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, list_id, content, done FROM tasks WHERE list_id = ? ORDER BY id", listID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.ID, &it.ListID, &it.Content, &it.Done); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// AddItem inserts a task into one of the user's lists.
func (s *Store) AddItem(ctx context.Context, user string, listID int64, content string, done bool) (int64, error) {
	if err := s.ownList(ctx, user, listID); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO tasks(list_id, content, done) VALUES(?, ?, ?)", listID, content, boolInt(done))
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (s *Store) ownList(ctx context.Context, user string, listID int64) error {
	var id int64
	err := s.db.QueryRowContext(ctx,
		"SELECT id FROM lists WHERE id = ? AND user_id = ?", listID, user).Scan(&id)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	return err
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
