package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// Message represents a chat message.
type Message struct {
	Role    string // system, user, assistant
	Content string
}

// Options are the sampling parameters for one completion. The HTTP surface
// pins these to fixed values; they are parameters here so tests and future
// internal callers can vary them.
type Options struct {
	Temperature float32
	MaxTokens   int
}

// DefaultOptions returns the fixed sampling parameters used for every
// user-facing turn.
func DefaultOptions() Options {
	return Options{Temperature: 0.7, MaxTokens: 2048}
}

// DefaultStreamTimeout is the overall wall-clock budget for a single turn.
// Exceeding it cancels the upstream connection and reports ErrTimeout.
const DefaultStreamTimeout = 30 * time.Second

// ErrTimeout is returned when a stream exceeds its wall-clock budget.
var ErrTimeout = errors.New("stream timed out")

// ProviderError is a failure reported by (or on the way to) the upstream
// provider. Message is redacted of credential material before it is built.
type ProviderError struct {
	Status  int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error (status %d): %s", e.Status, e.Message)
}

// ChunkStream is a single-pass, non-restartable sequence of text chunks.
// Recv returns io.EOF after the final chunk. Close releases the upstream
// connection and is safe to call at any point.
type ChunkStream interface {
	Recv() (string, error)
	Close() error
}

// Adapter opens a native provider stream for a routed descriptor. Implementing
// this interface is all it takes to support a provider that does not speak the
// OpenAI protocol; routing, timeout and error handling stay untouched.
type Adapter interface {
	Open(ctx context.Context, desc *Descriptor, messages []Message, opts Options) (ChunkStream, error)
}

// Streamer converts a provider's native token stream into the uniform chunk
// contract: an in-order chunk channel plus an error channel. Both channels are
// closed when the stream ends; a closed error channel with no value means the
// provider finished cleanly.
type Streamer struct {
	adapter Adapter
	timeout time.Duration
}

// StreamerConfig configures a Streamer. Zero values select the production
// defaults (the OpenAI-protocol adapter, DefaultStreamTimeout).
type StreamerConfig struct {
	Adapter Adapter
	Timeout time.Duration
}

// NewStreamer creates a Streamer.
func NewStreamer(cfg StreamerConfig) *Streamer {
	if cfg.Adapter == nil {
		cfg.Adapter = newOpenAIAdapter()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultStreamTimeout
	}
	return &Streamer{adapter: cfg.Adapter, timeout: cfg.Timeout}
}

// Stream performs a streaming completion against the routed provider.
//
// Chunks are delivered in provider order with no buffering beyond a small
// channel window; the consumer drives pacing. On any failure the error channel
// receives exactly one value after the chunks delivered so far: ErrTimeout
// when the wall-clock budget expires, a *ProviderError otherwise. Consumer
// cancellation (via ctx) releases the upstream connection and produces no
// error. Already delivered chunks are never replayed.
func (s *Streamer) Stream(ctx context.Context, desc *Descriptor, messages []Message, opts Options) (<-chan string, <-chan error) {
	chunks := make(chan string, 8)
	errc := make(chan error, 1)

	go func() {
		defer close(chunks)
		defer close(errc)

		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		start := time.Now()
		stream, err := s.adapter.Open(ctx, desc, messages, opts)
		if err != nil {
			errc <- s.normalizeErr(ctx, desc, err)
			return
		}
		// Close on every exit path so abandoning the consumer side releases
		// the provider connection promptly.
		defer func() { _ = stream.Close() }()

		chunkCount := 0
		for {
			text, err := stream.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) {
					slog.Debug("llm: stream completed",
						"provider", desc.Provider,
						"model", desc.Model,
						"chunks", chunkCount,
						"duration_ms", time.Since(start).Milliseconds(),
					)
					return
				}
				if e := s.normalizeErr(ctx, desc, err); e != nil {
					errc <- e
				}
				return
			}
			if text == "" {
				continue
			}
			select {
			case chunks <- text:
				chunkCount++
			case <-ctx.Done():
				if e := s.normalizeErr(ctx, desc, ctx.Err()); e != nil {
					errc <- e
				}
				return
			}
		}
	}()

	return chunks, errc
}

// normalizeErr folds adapter and context failures into the public taxonomy.
// Consumer cancellation maps to nil: stopping reading is not an error.
func (s *Streamer) normalizeErr(ctx context.Context, desc *Descriptor, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		slog.Warn("llm: stream timed out",
			"provider", desc.Provider,
			"model", desc.Model,
			"budget", s.timeout,
		)
		return ErrTimeout
	}
	if errors.Is(err, context.Canceled) {
		slog.Debug("llm: stream cancelled by consumer", "provider", desc.Provider)
		return nil
	}

	var pe *ProviderError
	if !errors.As(err, &pe) {
		pe = &ProviderError{Status: 502, Message: err.Error()}
	}
	pe.Message = redactSecret(pe.Message, desc.apiKey)

	slog.Error("llm: provider failure",
		"provider", desc.Provider,
		"model", desc.Model,
		"status", pe.Status,
	)
	return pe
}
