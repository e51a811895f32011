package sqlite

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/polychat/polychat/store"
)

// CreateMessage inserts the message and bumps the parent thread's updated_ts
// inside one transaction. A reader never observes a message without the bump
// or a bump without the message.
func (d *DB) CreateMessage(ctx context.Context, create *store.Message) (*store.Message, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM thread WHERE id = ?)`, create.ThreadID).Scan(&exists); err != nil {
		return nil, errors.Wrap(err, "failed to check thread")
	}
	if !exists {
		return nil, store.ErrThreadNotFound
	}

	stmt := `
		INSERT INTO message (id, thread_id, role, content, created_ts)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := tx.ExecContext(ctx, stmt,
		create.ID,
		create.ThreadID,
		create.Role,
		create.Content,
		create.CreatedTs,
	); err != nil {
		return nil, errors.Wrap(err, "failed to create message")
	}

	if _, err := tx.ExecContext(ctx, `UPDATE thread SET updated_ts = ? WHERE id = ?`, create.CreatedTs, create.ThreadID); err != nil {
		return nil, errors.Wrap(err, "failed to bump thread updated_ts")
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, "failed to commit transaction")
	}
	return create, nil
}

func (d *DB) ListMessages(ctx context.Context, find *store.FindMessage) ([]*store.Message, error) {
	where, args := []string{"1 = 1"}, []any{}

	if find.ThreadID != nil {
		where, args = append(where, "thread_id = ?"), append(args, *find.ThreadID)
	}

	query := `
		SELECT id, thread_id, role, content, created_ts
		FROM message
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY created_ts ASC, rowid ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list messages")
	}
	defer rows.Close()

	list := make([]*store.Message, 0)
	for rows.Next() {
		message := &store.Message{}
		if err := rows.Scan(&message.ID, &message.ThreadID, &message.Role, &message.Content, &message.CreatedTs); err != nil {
			return nil, errors.Wrap(err, "failed to scan message")
		}
		list = append(list, message)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "failed to iterate messages")
	}

	return list, nil
}

// CountMessages is a plain read: 0 for an empty or unknown thread, never an
// error for a missing thread.
func (d *DB) CountMessages(ctx context.Context, threadID string) (int64, error) {
	var count int64
	if err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM message WHERE thread_id = ?`, threadID).Scan(&count); err != nil {
		return 0, errors.Wrap(err, "failed to count messages")
	}
	return count, nil
}
