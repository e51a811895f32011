package v1

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/polychat/polychat/ai/llm"
	"github.com/polychat/polychat/internal/profile"
	"github.com/polychat/polychat/store"
	"github.com/polychat/polychat/store/db"
)

// fakeChunkStream replays canned chunks and then finishes with finalErr
// (io.EOF for a clean stream).
type fakeChunkStream struct {
	chunks   []string
	finalErr error
	pos      int
}

func (f *fakeChunkStream) Recv() (string, error) {
	if f.pos >= len(f.chunks) {
		return "", f.finalErr
	}
	chunk := f.chunks[f.pos]
	f.pos++
	return chunk, nil
}

func (f *fakeChunkStream) Close() error { return nil }

type fakeAdapter struct {
	chunks   []string
	finalErr error
	openErr  error
}

func (f *fakeAdapter) Open(_ context.Context, _ *llm.Descriptor, _ []llm.Message, _ llm.Options) (llm.ChunkStream, error) {
	if f.openErr != nil {
		return nil, f.openErr
	}
	return &fakeChunkStream{chunks: f.chunks, finalErr: f.finalErr}, nil
}

type testEnv struct {
	echo    *echo.Echo
	service *APIV1Service
	store   *store.Store
	profile *profile.Profile
}

func newTestEnv(t *testing.T, adapter llm.Adapter) *testEnv {
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

	service := NewAPIV1Service(p, s)
	if adapter != nil {
		service.ChatService.Streamer = llm.NewStreamer(llm.StreamerConfig{Adapter: adapter})
	}

	e := echo.New()
	service.RegisterRoutes(e)

	return &testEnv{echo: e, service: service, store: s, profile: p}
}

func (env *testEnv) request(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	env.echo.ServeHTTP(rec, req)
	return rec
}

func mustCreateThread(t *testing.T, env *testEnv, title string) *store.Thread {
	t.Helper()
	thread, err := env.store.CreateThread(context.Background(), &store.Thread{Title: title})
	require.NoError(t, err)
	return thread
}

func openAIKeyHeader() map[string]string {
	return map[string]string{"x-openai-key": "sk-handler-test"}
}
