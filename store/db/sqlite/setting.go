package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/polychat/polychat/store"
)

func (d *DB) UpsertSetting(ctx context.Context, upsert *store.Setting) (*store.Setting, error) {
	stmt := `
		INSERT INTO setting (key, value)
		VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value
	`
	if _, err := d.db.ExecContext(ctx, stmt, upsert.Key, upsert.Value); err != nil {
		return nil, errors.Wrap(err, "failed to upsert setting")
	}
	return upsert, nil
}

func (d *DB) GetSetting(ctx context.Context, find *store.FindSetting) (*store.Setting, error) {
	setting := &store.Setting{}
	err := d.db.QueryRowContext(ctx, `SELECT key, value FROM setting WHERE key = ?`, find.Key).Scan(&setting.Key, &setting.Value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrSettingNotFound
		}
		return nil, errors.Wrap(err, "failed to get setting")
	}
	return setting, nil
}
