package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/okian/laurel/internal/adapters/sqlitedb"
	"github.com/okian/laurel/internal/domain/model"
)

const selectItem = `SELECT kind, id, title, description, tags, status, created_at FROM content_items`

// SQLiteSource reads content from the content_items table.
type SQLiteSource struct {
	db *sql.DB
}

// NewSQLiteSource wraps an opened and migrated database.
func NewSQLiteSource(db *sql.DB) *SQLiteSource {
	return &SQLiteSource{db: db}
}

func scanItem(row interface{ Scan(...any) error }) (model.ContentItem, error) {
	var (
		it                model.ContentItem
		kind, status      string
		description, tags string
		createdAt         int64
	)
	if err := row.Scan(&kind, &it.ID, &it.Title, &description, &tags, &status, &createdAt); err != nil {
		return model.ContentItem{}, err
	}
	it.Kind = model.ContentKind(kind)
	it.Status = model.ContentStatus(status)
	it.Text = model.ComposeText(it.Title, description, tags)
	it.CreatedAt = sqlitedb.FromMillis(createdAt)
	return it, nil
}

// ListActive implements Source.
func (s *SQLiteSource) ListActive(ctx context.Context, kinds ...model.ContentKind) ([]model.ContentItem, error) {
	query := selectItem + ` WHERE status = ?`
	args := []any{string(model.StatusActive)}
	if len(kinds) > 0 {
		marks := make([]string, len(kinds))
		for i, k := range kinds {
			marks[i] = "?"
			args = append(args, string(k))
		}
		query += ` AND kind IN (` + strings.Join(marks, ",") + `)`
	}
	query += ` ORDER BY kind, length(id), id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list content: %w", err)
	}
	defer rows.Close()

	var out []model.ContentItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan content: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate content: %w", err)
	}
	return out, nil
}

// Get implements Source.
func (s *SQLiteSource) Get(ctx context.Context, kind model.ContentKind, id string) (model.ContentItem, error) {
	it, err := scanItem(s.db.QueryRowContext(ctx, selectItem+` WHERE kind = ? AND id = ?`, string(kind), id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.ContentItem{}, fmt.Errorf("%w: %s:%s", ErrNotFound, kind, id)
	}
	if err != nil {
		return model.ContentItem{}, fmt.Errorf("get content %s:%s: %w", kind, id, err)
	}
	return it, nil
}

// Put implements Writer, inserting or replacing the item.
func (s *SQLiteSource) Put(ctx context.Context, d Draft) error {
	if err := d.Validate(); err != nil {
		return err
	}
	item := d.Item()
	_, err := s.db.ExecContext(ctx, `INSERT INTO content_items (kind, id, title, description, tags, status, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (kind, id) DO UPDATE SET
    title = excluded.title, description = excluded.description, tags = excluded.tags, status = excluded.status`,
		string(item.Kind), item.ID, d.Title, d.Description, strings.Join(d.Tags, " "), string(item.Status), sqlitedb.ToMillis(item.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("put content %s: %w", item.Ref(), err)
	}
	return nil
}

// SetStatus implements Writer.
func (s *SQLiteSource) SetStatus(ctx context.Context, ref model.ContentRef, status model.ContentStatus) error {
	res, err := s.db.ExecContext(ctx, `UPDATE content_items SET status = ? WHERE kind = ? AND id = ?`, string(status), string(ref.Kind), ref.ID)
	if err != nil {
		return fmt.Errorf("set status %s: %w", ref, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	return nil
}
