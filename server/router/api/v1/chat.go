package v1

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/sync/semaphore"

	"github.com/polychat/polychat/ai/llm"
	"github.com/polychat/polychat/internal/metrics"
	"github.com/polychat/polychat/internal/profile"
	"github.com/polychat/polychat/store"
)

type ChatService struct {
	Store    *store.Store
	Profile  *profile.Profile
	Streamer *llm.Streamer

	streamSemaphore *semaphore.Weighted
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages"`
	Provider string        `json:"provider,omitempty"`
	ThreadID string        `json:"thread_id,omitempty"`
}

type chatChunk struct {
	Text string `json:"text"`
}

type chatStreamError struct {
	Error string `json:"error"`
}

// Chat runs one conversation turn against the routed provider and relays the
// reply as Server-Sent Events. Routing and credential failures are rejected
// before the stream starts; anything after the first byte travels as an SSE
// error event on the open 200 response.
func (s *ChatService) Chat(c echo.Context) error {
	ctx := c.Request().Context()

	request := &chatRequest{}
	if err := c.Bind(request); err != nil {
		return c.JSON(http.StatusBadRequest, &errorResponse{Error: msgInvalidRequest})
	}
	if len(request.Messages) == 0 {
		return c.JSON(http.StatusBadRequest, &errorResponse{Error: msgInvalidRequest})
	}

	credentials := llm.CredentialsFromHeader(c.Request().Header)
	provider := llm.NormalizeProvider(request.Provider)
	descriptor, err := llm.Route(provider, credentials)
	if err != nil {
		metrics.ChatRequests.WithLabelValues(providerLabel(provider), "rejected").Inc()
		return replyError(c, err)
	}

	// A mistyped thread id should fail fast, not after a full upstream turn.
	if request.ThreadID != "" {
		if _, err := s.Store.GetThread(ctx, request.ThreadID); err != nil {
			return replyError(c, err)
		}
	}

	if err := s.streamSemaphore.Acquire(ctx, 1); err != nil {
		return replyError(c, err)
	}
	defer s.streamSemaphore.Release(1)

	messages := make([]llm.Message, len(request.Messages))
	for i, m := range request.Messages {
		messages[i] = llm.Message{Role: m.Role, Content: m.Content}
	}

	slog.Info("chat turn started",
		"provider", descriptor.Provider,
		"model", descriptor.Model,
		"messages", len(messages),
		"has_credential", credentials.Has(descriptor.Provider),
	)

	response := c.Response()
	response.Header().Set(echo.HeaderContentType, "text/event-stream")
	response.Header().Set(echo.HeaderCacheControl, "no-cache")
	response.Header().Set("Connection", "keep-alive")
	response.WriteHeader(http.StatusOK)
	response.Flush()

	start := time.Now()
	chunks, errs := s.Streamer.Stream(ctx, descriptor, messages, llm.DefaultOptions())

	var reply strings.Builder
	clientGone := false
	for chunk := range chunks {
		reply.WriteString(chunk)
		if clientGone {
			continue
		}
		if err := writeEvent(response, chatChunk{Text: chunk}); err != nil {
			// Keep draining so the producer can unwind; the request context
			// cancellation follows shortly.
			clientGone = true
			continue
		}
		metrics.StreamChunks.WithLabelValues(string(descriptor.Provider)).Inc()
	}
	streamErr := <-errs
	metrics.StreamDuration.WithLabelValues(string(descriptor.Provider)).Observe(time.Since(start).Seconds())

	switch {
	case streamErr != nil:
		metrics.ChatRequests.WithLabelValues(string(descriptor.Provider), outcomeOf(streamErr)).Inc()
		if !clientGone {
			_ = writeEvent(response, chatStreamError{Error: streamErrorMessage(streamErr)})
		}
		if s.Profile.PersistPartial {
			s.persistReply(request.ThreadID, reply.String())
		}
	case ctx.Err() != nil || clientGone:
		// Consumer cancellation: nothing persisted, the delivered chunks are
		// the client's to keep.
		metrics.ChatRequests.WithLabelValues(string(descriptor.Provider), "cancelled").Inc()
	default:
		metrics.ChatRequests.WithLabelValues(string(descriptor.Provider), "ok").Inc()
		_ = writeDone(response)
		s.persistReply(request.ThreadID, reply.String())
	}
	return nil
}

// persistReply appends the assistant reply to the thread. Detached from the
// request context: the append must not be lost to a disconnect that arrives
// after the stream already completed.
func (s *ChatService) persistReply(threadID, content string) {
	if threadID == "" || content == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := s.Store.AppendMessage(ctx, &store.Message{
		ThreadID: threadID,
		Role:     store.RoleAssistant,
		Content:  content,
	}); err != nil {
		slog.Error("failed to persist assistant reply", "thread", threadID, "error", err)
	}
}

// providerLabel keeps the metric label set bounded: only registry providers
// appear as label values, any other caller-supplied string collapses to
// "unknown".
func providerLabel(p llm.Provider) string {
	if p == "" {
		p = llm.DefaultProvider
	}
	if llm.Supported(p) {
		return string(p)
	}
	return "unknown"
}

func outcomeOf(err error) string {
	if errors.Is(err, llm.ErrTimeout) {
		return "timeout"
	}
	return "provider_error"
}

func writeEvent(response *echo.Response, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(response, "data: %s\n\n", body); err != nil {
		return err
	}
	response.Flush()
	return nil
}

func writeDone(response *echo.Response) error {
	if _, err := fmt.Fprint(response, "data: [DONE]\n\n"); err != nil {
		return err
	}
	response.Flush()
	return nil
}
