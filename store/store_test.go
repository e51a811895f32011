package store_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/polychat/polychat/internal/profile"
	"github.com/polychat/polychat/store"
	"github.com/polychat/polychat/store/db"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	p := &profile.Profile{
		Mode:   "dev",
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "polychat_test.db"),
	}
	driver, err := db.NewDBDriver(p)
	require.NoError(t, err)

	s := store.New(driver, p)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestCreateThreadDefaults(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	thread, err := s.CreateThread(ctx, &store.Thread{})
	require.NoError(t, err)

	assert.NotEmpty(t, thread.ID)
	assert.Equal(t, store.DefaultThreadTitle, thread.Title)
	assert.NotZero(t, thread.CreatedTs)
	assert.Equal(t, thread.CreatedTs, thread.UpdatedTs)

	got, err := s.GetThread(ctx, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, thread.ID, got.ID)
	assert.Zero(t, got.MessageCount)
}

func TestGetThreadNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetThread(context.Background(), "ghost")
	assert.ErrorIs(t, err, store.ErrThreadNotFound)
}

func TestAppendMessageGeneratesIDs(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	thread, err := s.CreateThread(ctx, &store.Thread{})
	require.NoError(t, err)

	message, err := s.AppendMessage(ctx, &store.Message{
		ThreadID: thread.ID,
		Role:     store.RoleUser,
		Content:  "hello",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, message.ID)
	assert.NotZero(t, message.CreatedTs)

	got, err := s.GetThread(ctx, thread.ID)
	require.NoError(t, err)
	assert.Equal(t, message.CreatedTs, got.UpdatedTs, "append bumps the thread")
	assert.EqualValues(t, 1, got.MessageCount)
}

func TestAppendMessageUnknownThread(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AppendMessage(context.Background(), &store.Message{
		ThreadID: "ghost",
		Role:     store.RoleUser,
		Content:  "hello",
	})
	assert.ErrorIs(t, err, store.ErrThreadNotFound)
}

func TestCountMessagesUnknownThread(t *testing.T) {
	s := newTestStore(t)
	count, err := s.CountMessages(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestSettingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.GetSetting(ctx, &store.FindSetting{Key: "model-preferences"})
	assert.ErrorIs(t, err, store.ErrSettingNotFound)

	_, err = s.UpsertSetting(ctx, &store.Setting{Key: "model-preferences", Value: `{"defaultModel":"groq"}`})
	require.NoError(t, err)

	setting, err := s.GetSetting(ctx, &store.FindSetting{Key: "model-preferences"})
	require.NoError(t, err)
	assert.Equal(t, `{"defaultModel":"groq"}`, setting.Value)
}
