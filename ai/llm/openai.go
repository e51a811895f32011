package llm

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// openAIAdapter drives every registry provider through the OpenAI
// chat-completion streaming protocol. The client is rebuilt per request
// because the API key arrives with the request; the HTTP transport is shared.
type openAIAdapter struct {
	httpClient *http.Client
}

func newOpenAIAdapter() *openAIAdapter {
	return &openAIAdapter{httpClient: newHTTPClient()}
}

func (a *openAIAdapter) Open(ctx context.Context, desc *Descriptor, messages []Message, opts Options) (ChunkStream, error) {
	clientConfig := openai.DefaultConfig(desc.apiKey)
	clientConfig.BaseURL = desc.BaseURL
	clientConfig.HTTPClient = a.httpClient
	client := openai.NewClientWithConfig(clientConfig)

	req := openai.ChatCompletionRequest{
		Model:       desc.Model,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
		Messages:    convertMessages(messages),
	}

	stream, err := client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, providerErrorFrom(err)
	}
	return &openAIChunkStream{stream: stream}, nil
}

type openAIChunkStream struct {
	stream *openai.ChatCompletionStream
}

func (s *openAIChunkStream) Recv() (string, error) {
	response, err := s.stream.Recv()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return "", io.EOF
		}
		return "", providerErrorFrom(err)
	}
	if len(response.Choices) == 0 {
		return "", nil
	}
	return response.Choices[0].Delta.Content, nil
}

func (s *openAIChunkStream) Close() error {
	return s.stream.Close()
}

// providerErrorFrom maps go-openai error types to ProviderError, preserving
// the upstream HTTP status. Context errors pass through untouched so the
// pipeline can classify timeouts.
func providerErrorFrom(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &ProviderError{Status: apiErr.HTTPStatusCode, Message: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &ProviderError{Status: reqErr.HTTPStatusCode, Message: reqErr.Error()}
	}
	return &ProviderError{Status: 502, Message: err.Error()}
}

func convertMessages(messages []Message) []openai.ChatCompletionMessage {
	llmMessages := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		switch m.Role {
		case "system":
			llmMessages[i] = openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleSystem,
				Content: m.Content,
			}
		case "assistant":
			llmMessages[i] = openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: m.Content,
			}
		default:
			llmMessages[i] = openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleUser,
				Content: m.Content,
			}
		}
	}
	return llmMessages
}

func newHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   10 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:          100,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
	}
}
