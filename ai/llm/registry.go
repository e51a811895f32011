package llm

import (
	"errors"
	"sort"
	"strings"
)

// Provider identifies a text-generation backend by its fixed short name.
type Provider string

const (
	ProviderOpenAI   Provider = "openai"
	ProviderGemini   Provider = "gemini"
	ProviderGroq     Provider = "groq"
	ProviderCohere   Provider = "cohere"
	ProviderCerebras Provider = "cerebras"
)

// DefaultProvider is used when a request omits the provider field.
var DefaultProvider = ProviderOpenAI

// ErrUnsupportedProvider is returned for provider identifiers outside the
// registry.
var ErrUnsupportedProvider = errors.New("unsupported provider")

// registryEntry is the static configuration for one provider. Every supported
// backend speaks the OpenAI chat-completion protocol (natively or through a
// compatibility endpoint), so an entry is just a base URL and a default model.
type registryEntry struct {
	BaseURL      string
	DefaultModel string
}

// providerRegistry is immutable after init. Adding a provider that speaks the
// OpenAI protocol is one row here; anything else implements Adapter.
var providerRegistry = map[Provider]registryEntry{
	ProviderOpenAI: {
		BaseURL:      "https://api.openai.com/v1",
		DefaultModel: "gpt-4o",
	},
	ProviderGemini: {
		BaseURL:      "https://generativelanguage.googleapis.com/v1beta/openai",
		DefaultModel: "gemini-pro",
	},
	ProviderGroq: {
		BaseURL:      "https://api.groq.com/openai/v1",
		DefaultModel: "mixtral-8x7b-32768",
	},
	ProviderCohere: {
		BaseURL:      "https://api.cohere.ai/compatibility/v1",
		DefaultModel: "command-r-plus",
	},
	ProviderCerebras: {
		BaseURL:      "https://api.cerebras.ai/v1",
		DefaultModel: "llama3.1-8b",
	},
}

// Descriptor is the per-request invocation target produced by Route. It is
// constructed per request and discarded afterwards; the embedded key never
// leaves this package.
type Descriptor struct {
	Provider Provider
	Model    string
	BaseURL  string

	apiKey string
}

// NormalizeProvider lower-cases and trims a caller-supplied provider id.
func NormalizeProvider(name string) Provider {
	return Provider(strings.ToLower(strings.TrimSpace(name)))
}

// Providers returns the supported provider identifiers in stable order.
func Providers() []Provider {
	out := make([]Provider, 0, len(providerRegistry))
	for p := range providerRegistry {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Supported reports whether p is a known provider identifier.
func Supported(p Provider) bool {
	_, ok := providerRegistry[p]
	return ok
}

// Route maps a provider identifier and the caller's credentials to a concrete
// invocation descriptor. It is synchronous and never touches the network.
// An empty provider falls back to DefaultProvider.
func Route(p Provider, creds CredentialSet) (*Descriptor, error) {
	if p == "" {
		p = DefaultProvider
	}

	entry, ok := providerRegistry[p]
	if !ok {
		return nil, ErrUnsupportedProvider
	}

	key, err := creds.Resolve(p)
	if err != nil {
		return nil, err
	}

	return &Descriptor{
		Provider: p,
		Model:    entry.DefaultModel,
		BaseURL:  entry.BaseURL,
		apiKey:   key,
	}, nil
}
