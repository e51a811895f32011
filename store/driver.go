package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that interact with the underlying database.
type Driver interface {
	GetDB() *sql.DB
	Close() error
	Migrate(ctx context.Context) error

	// Threads
	CreateThread(ctx context.Context, create *Thread) (*Thread, error)
	ListThreads(ctx context.Context, find *FindThread) ([]*Thread, error)
	UpdateThread(ctx context.Context, update *UpdateThread) (*Thread, error)
	DeleteThread(ctx context.Context, delete *DeleteThread) error

	// Messages. CreateMessage persists the message and bumps the parent
	// thread's updated_ts in one transaction.
	CreateMessage(ctx context.Context, create *Message) (*Message, error)
	ListMessages(ctx context.Context, find *FindMessage) ([]*Message, error)
	CountMessages(ctx context.Context, threadID string) (int64, error)

	// Settings
	UpsertSetting(ctx context.Context, upsert *Setting) (*Setting, error)
	GetSetting(ctx context.Context, find *FindSetting) (*Setting, error)
}
