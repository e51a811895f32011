package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pkg/errors"

	"github.com/polychat/polychat/store"
)

func (d *DB) CreateThread(ctx context.Context, create *store.Thread) (*store.Thread, error) {
	stmt := `
		INSERT INTO thread (id, title, created_ts, updated_ts)
		VALUES (?, ?, ?, ?)
	`
	if _, err := d.db.ExecContext(ctx, stmt,
		create.ID,
		create.Title,
		create.CreatedTs,
		create.UpdatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create thread")
	}
	return create, nil
}

// ListThreads returns threads ordered by updated_ts descending; ties are
// broken by insertion order (rowid), so two threads touched in the same
// millisecond keep a stable listing. The message count rides along via JOIN
// to avoid an N+1 query from the sidebar.
func (d *DB) ListThreads(ctx context.Context, find *store.FindThread) ([]*store.Thread, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ID != nil {
		where, args = append(where, "t.id = ?"), append(args, *find.ID)
	}

	query := `
		SELECT
			t.id, t.title, t.created_ts, t.updated_ts,
			COALESCE(COUNT(m.id), 0) AS message_count
		FROM thread t
		LEFT JOIN message m ON m.thread_id = t.id
		WHERE ` + strings.Join(where, " AND ") + `
		GROUP BY t.id, t.title, t.created_ts, t.updated_ts
		ORDER BY t.updated_ts DESC, t.rowid ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list threads")
	}
	defer rows.Close()

	list := make([]*store.Thread, 0)
	for rows.Next() {
		thread := &store.Thread{}
		if err := rows.Scan(&thread.ID, &thread.Title, &thread.CreatedTs, &thread.UpdatedTs, &thread.MessageCount); err != nil {
			return nil, errors.Wrap(err, "failed to scan thread")
		}
		list = append(list, thread)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate threads")
	}

	return list, nil
}

func (d *DB) UpdateThread(ctx context.Context, update *store.UpdateThread) (*store.Thread, error) {
	set, args := []string{}, []any{}

	if update.Title != nil {
		set, args = append(set, "title = ?"), append(args, *update.Title)
	}
	if update.UpdatedTs != nil {
		set, args = append(set, "updated_ts = ?"), append(args, *update.UpdatedTs)
	}
	if len(set) == 0 {
		return nil, errors.New("no fields to update")
	}

	args = append(args, update.ID)
	stmt := `
		UPDATE thread SET ` + strings.Join(set, ", ") + `
		WHERE id = ?
		RETURNING id, title, created_ts, updated_ts`

	thread := &store.Thread{}
	err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&thread.ID, &thread.Title, &thread.CreatedTs, &thread.UpdatedTs)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrThreadNotFound
		}
		return nil, errors.Wrap(err, "failed to update thread")
	}
	return thread, nil
}

// DeleteThread removes the thread and every message referencing it in one
// transaction. Either both disappear or neither does.
func (d *DB) DeleteThread(ctx context.Context, delete *store.DeleteThread) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM message WHERE thread_id = ?`, delete.ID); err != nil {
		return errors.Wrap(err, "failed to delete messages")
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM thread WHERE id = ?`, delete.ID)
	if err != nil {
		return errors.Wrap(err, "failed to delete thread")
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to get rows affected")
	}
	if rows == 0 {
		// Rollback also undoes the message delete above.
		return store.ErrThreadNotFound
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}
