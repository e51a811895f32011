package llm

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseChunk(content string) string {
	return fmt.Sprintf(`data: {"id":"cmpl-1","object":"chat.completion.chunk","choices":[{"index":0,"delta":{"content":%q}}]}`+"\n\n", content)
}

func newSSEServer(t *testing.T, contents []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-unit-test", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "text/event-stream")
		for _, c := range contents {
			_, _ = io.WriteString(w, sseChunk(c))
		}
		_, _ = io.WriteString(w, "data: [DONE]\n\n")
	}))
}

func localDescriptor(baseURL string) *Descriptor {
	return &Descriptor{
		Provider: ProviderOpenAI,
		Model:    "gpt-4o",
		BaseURL:  baseURL,
		apiKey:   "sk-unit-test",
	}
}

func TestOpenAIAdapterStreamsChunks(t *testing.T) {
	srv := newSSEServer(t, []string{"Hel", "lo", " world"})
	defer srv.Close()

	adapter := newOpenAIAdapter()
	stream, err := adapter.Open(context.Background(), localDescriptor(srv.URL+"/v1"), []Message{{Role: "user", Content: "hi"}}, DefaultOptions())
	require.NoError(t, err)
	defer stream.Close()

	var got []string
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		if chunk != "" {
			got = append(got, chunk)
		}
	}
	assert.Equal(t, []string{"Hel", "lo", " world"}, got)
}

func TestOpenAIAdapterSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"error":{"message":"Incorrect API key provided","type":"invalid_request_error"}}`)
	}))
	defer srv.Close()

	adapter := newOpenAIAdapter()
	_, err := adapter.Open(context.Background(), localDescriptor(srv.URL+"/v1"), nil, DefaultOptions())
	require.Error(t, err)

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, http.StatusUnauthorized, pe.Status)
}

func TestStreamerAgainstSSEFixture(t *testing.T) {
	srv := newSSEServer(t, []string{"a", "b", "c"})
	defer srv.Close()

	streamer := NewStreamer(StreamerConfig{})
	chunks, errc := streamer.Stream(context.Background(), localDescriptor(srv.URL+"/v1"), []Message{{Role: "user", Content: "hi"}}, DefaultOptions())

	got, err := collect(chunks, errc)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, got)
}
