package domain

import (
	"context"
	"fmt"
)

// Message is a single chat turn sent to a language model provider.
type Message struct {
	Role    string // "system" or "user"
	Content string
}

// ProviderID identifies a language model provider from the fixed supported set.
type ProviderID string

const (
	ProviderClaude ProviderID = "claude-3-5-sonnet"
	ProviderGPT4   ProviderID = "gpt-4-turbo"
	ProviderGemini ProviderID = "gemini-pro"
)

// SupportedProviders is the fixed fallback order appended after the caller's
// preferred provider.
var SupportedProviders = []ProviderID{ProviderClaude, ProviderGPT4, ProviderGemini}

// IsSupportedProvider reports whether id names a known provider.
func IsSupportedProvider(id ProviderID) bool {
	for _, p := range SupportedProviders {
		if p == id {
			return true
		}
	}
	return false
}

// ProviderOrder places preferred first and appends the remaining known
// providers in their fixed order.
func ProviderOrder(preferred ProviderID) []ProviderID {
	order := []ProviderID{preferred}
	for _, p := range SupportedProviders {
		if p != preferred {
			order = append(order, p)
		}
	}
	return order
}

// LanguageModelProvider produces a completion for a chat prompt.
type LanguageModelProvider interface {
	Complete(ctx context.Context, messages []Message, maxTokens int) (string, error)
	ID() ProviderID
}

// ProviderRegistry resolves provider ids to configured clients. Clients for
// providers without credentials are absent, which lets the fallback chain
// skip them without spending a network call.
type ProviderRegistry struct {
	clients map[ProviderID]LanguageModelProvider
}

// NewProviderRegistry builds a registry from the configured clients.
func NewProviderRegistry(clients ...LanguageModelProvider) *ProviderRegistry {
	m := make(map[ProviderID]LanguageModelProvider, len(clients))
	for _, c := range clients {
		m[c.ID()] = c
	}
	return &ProviderRegistry{clients: m}
}

// Client returns the configured client for id, or an error if the provider
// has no credentials.
func (r *ProviderRegistry) Client(id ProviderID) (LanguageModelProvider, error) {
	c, ok := r.clients[id]
	if !ok {
		return nil, fmt.Errorf("provider %s is not configured", id)
	}
	return c, nil
}

// Available reports whether any provider is configured.
func (r *ProviderRegistry) Available() bool {
	return len(r.clients) > 0
}
