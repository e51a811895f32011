package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"

	"github.com/polychat/polychat/internal/profile"
)

// Store provides database access to all raw objects. The underlying handle is
// acquired once per process and shared by reference.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Migrate(ctx context.Context) error {
	return s.driver.Migrate(ctx)
}

func (s *Store) Close() error {
	return s.driver.Close()
}

func nowTs() int64 {
	return time.Now().UnixMilli()
}

// CreateThread persists a new thread. A missing ID gets a fresh short uuid,
// missing timestamps get now, a missing title gets the placeholder.
func (s *Store) CreateThread(ctx context.Context, create *Thread) (*Thread, error) {
	if create.ID == "" {
		create.ID = shortuuid.New()
	}
	if create.Title == "" {
		create.Title = DefaultThreadTitle
	}
	if create.CreatedTs == 0 {
		create.CreatedTs = nowTs()
	}
	if create.UpdatedTs == 0 {
		create.UpdatedTs = create.CreatedTs
	}
	return s.driver.CreateThread(ctx, create)
}

func (s *Store) ListThreads(ctx context.Context, find *FindThread) ([]*Thread, error) {
	return s.driver.ListThreads(ctx, find)
}

func (s *Store) GetThread(ctx context.Context, id string) (*Thread, error) {
	threads, err := s.driver.ListThreads(ctx, &FindThread{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(threads) == 0 {
		return nil, ErrThreadNotFound
	}
	return threads[0], nil
}

func (s *Store) UpdateThread(ctx context.Context, update *UpdateThread) (*Thread, error) {
	return s.driver.UpdateThread(ctx, update)
}

func (s *Store) DeleteThread(ctx context.Context, delete *DeleteThread) error {
	return s.driver.DeleteThread(ctx, delete)
}

// AppendMessage persists a message and bumps the parent thread's updated_ts
// atomically. Fails with ErrThreadNotFound when the thread does not exist.
func (s *Store) AppendMessage(ctx context.Context, create *Message) (*Message, error) {
	if create.ID == "" {
		create.ID = uuid.NewString()
	}
	if create.CreatedTs == 0 {
		create.CreatedTs = nowTs()
	}
	return s.driver.CreateMessage(ctx, create)
}

func (s *Store) ListMessages(ctx context.Context, find *FindMessage) ([]*Message, error) {
	return s.driver.ListMessages(ctx, find)
}

// CountMessages returns the number of messages in a thread; 0 for an unknown
// thread. It is a read and never errors on a missing thread.
func (s *Store) CountMessages(ctx context.Context, threadID string) (int64, error) {
	return s.driver.CountMessages(ctx, threadID)
}

func (s *Store) UpsertSetting(ctx context.Context, upsert *Setting) (*Setting, error) {
	return s.driver.UpsertSetting(ctx, upsert)
}

func (s *Store) GetSetting(ctx context.Context, find *FindSetting) (*Setting, error) {
	return s.driver.GetSetting(ctx, find)
}
