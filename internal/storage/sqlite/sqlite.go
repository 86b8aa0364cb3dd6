// Package sqlite is the indexed storage backend, backed by a local SQLite
// database. Type, owner, favorite flag, and timestamp are indexed columns;
// the full record rides along as a JSON payload.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/medlocum/locumpay/engine/internal/domain"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Store is a SQLite-backed Store implementation. Every mutating call runs in
// its own transaction.
type Store struct {
	db       *sql.DB
	maxItems int
}

// Open opens (creating if needed) the database at path and runs pending
// migrations. maxItems <= 0 means unlimited.
func Open(path string, maxItems int) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if _, err := db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA foreign_keys = ON;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set sqlite pragmas: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, maxItems: maxItems}, nil
}

func migrate(db *sql.DB) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// Put inserts or replaces an item in one transaction. Inserting a new id
// into a full store returns domain.ErrStorageCapacity.
func (s *Store) Put(ctx context.Context, item *domain.HistoryItem) error {
	if err := item.Validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("marshal history item: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM history WHERE id = ?)`, item.ID).Scan(&exists); err != nil {
		return fmt.Errorf("check existing id: %w", err)
	}
	if !exists && s.maxItems > 0 {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&count); err != nil {
			return fmt.Errorf("count items: %w", err)
		}
		if count >= s.maxItems {
			return fmt.Errorf("%w: store holds %d items", domain.ErrStorageCapacity, count)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO history (id, type, user_id, name, is_favorite, timestamp, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.ID, string(item.Type), nullable(item.UserID), item.Name,
		boolToInt(item.IsFavorite), item.Timestamp.UTC().Format(timeLayout), string(payload))
	if err != nil {
		return fmt.Errorf("upsert history item: %w", err)
	}
	return tx.Commit()
}

// Get returns the item with the given id.
func (s *Store) Get(ctx context.Context, id string) (*domain.HistoryItem, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM history WHERE id = ?`, id).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query history item: %w", err)
	}
	return unmarshalItem(payload)
}

// Delete removes the item with the given id in one transaction.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete history item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", domain.ErrNotFound, id)
	}
	return tx.Commit()
}

// List pushes the indexed predicates into SQL and applies the remaining
// filter (tags, free text) in process before paginating.
func (s *Store) List(ctx context.Context, filter domain.HistoryFilter, sortBy domain.HistorySort, page domain.PageRequest) ([]*domain.HistoryItem, int, error) {
	if err := page.Validate(); err != nil {
		return nil, 0, err
	}

	matched, err := s.queryMatching(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return sortBy.Less(matched[i], matched[j])
	})

	total := len(matched)
	start := page.Offset()
	if start >= total {
		return []*domain.HistoryItem{}, total, nil
	}
	end := start + page.PageSize
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

// Count returns how many items the store holds.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM history`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return count, nil
}

// Clear deletes all items matching the filter in one transaction.
func (s *Store) Clear(ctx context.Context, filter domain.HistoryFilter) (int, error) {
	matched, err := s.queryMatching(ctx, filter)
	if err != nil {
		return 0, err
	}
	if len(matched) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	removed := 0
	for _, item := range matched {
		res, err := tx.ExecContext(ctx, `DELETE FROM history WHERE id = ?`, item.ID)
		if err != nil {
			return 0, fmt.Errorf("delete history item: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("rows affected: %w", err)
		}
		removed += int(affected)
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return removed, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// timeLayout is RFC3339 with fixed-width nanoseconds so UTC timestamps sort
// lexicographically in SQL.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func (s *Store) queryMatching(ctx context.Context, filter domain.HistoryFilter) ([]*domain.HistoryItem, error) {
	var conds []string
	var args []any
	if filter.Type != nil {
		conds = append(conds, "type = ?")
		args = append(args, string(*filter.Type))
	}
	if filter.UserID != nil {
		conds = append(conds, "user_id = ?")
		args = append(args, *filter.UserID)
	}
	if filter.Favorite != nil {
		conds = append(conds, "is_favorite = ?")
		args = append(args, boolToInt(*filter.Favorite))
	}
	if filter.From != nil {
		conds = append(conds, "timestamp >= ?")
		args = append(args, filter.From.UTC().Format(timeLayout))
	}
	if filter.To != nil {
		conds = append(conds, "timestamp <= ?")
		args = append(args, filter.To.UTC().Format(timeLayout))
	}

	query := `SELECT payload FROM history`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var matched []*domain.HistoryItem
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		item, err := unmarshalItem(payload)
		if err != nil {
			return nil, err
		}
		// Tags and free-text search are not indexed; finish in process.
		if filter.Matches(item) {
			matched = append(matched, item)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return matched, nil
}

func unmarshalItem(payload string) (*domain.HistoryItem, error) {
	var item domain.HistoryItem
	if err := json.Unmarshal([]byte(payload), &item); err != nil {
		return nil, fmt.Errorf("unmarshal history item: %w", err)
	}
	return &item, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
