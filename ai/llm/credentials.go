package llm

import (
	"errors"
	"net/http"
	"strings"
)

// ErrMissingCredential is returned when no API key was supplied for the
// requested provider.
var ErrMissingCredential = errors.New("credential not provided")

// CredentialSet maps a provider to the API key the caller supplied for it.
// Keys live only in the request and in client-local settings storage; they are
// never persisted server-side and never logged.
type CredentialSet map[Provider]string

// CredentialsFromHeader extracts per-provider API keys from request headers.
// The header names match what the web client sends: x-openai-key, x-gemini-key,
// x-groq-key, x-cohere-key, x-cerebras-key.
func CredentialsFromHeader(h http.Header) CredentialSet {
	creds := make(CredentialSet, len(providerRegistry))
	for p := range providerRegistry {
		if key := strings.TrimSpace(h.Get("x-" + string(p) + "-key")); key != "" {
			creds[p] = key
		}
	}
	return creds
}

// Resolve returns the credential for the given provider, or
// ErrMissingCredential when it is absent or empty.
func (c CredentialSet) Resolve(p Provider) (string, error) {
	key, ok := c[p]
	if !ok || strings.TrimSpace(key) == "" {
		return "", ErrMissingCredential
	}
	return key, nil
}

// Has reports credential presence without exposing the secret. This is the
// only credential signal that may appear in logs.
func (c CredentialSet) Has(p Provider) bool {
	_, err := c.Resolve(p)
	return err == nil
}

// redactSecret replaces every occurrence of secret in s. Provider error
// bodies occasionally echo the Authorization header back; nothing that leaves
// this package may contain key material.
func redactSecret(s, secret string) string {
	if secret == "" {
		return s
	}
	return strings.ReplaceAll(s, secret, "[redacted]")
}
