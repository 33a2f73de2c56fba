package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// ContentHashPolicy computes the stable article identity hash used both for
// in-batch dedup and cross-request cache dedup. The hash function and input
// concatenation are a compatibility contract: changing either silently
// breaks cache deduplication against previously stored rows.
type ContentHashPolicy interface {
	Compute(title, url string) string
}

type contentHashPolicy struct{}

// NewContentHashPolicy creates the default content hash policy.
func NewContentHashPolicy() ContentHashPolicy {
	return &contentHashPolicy{}
}

// Compute returns the SHA-256 hash of title and URL, trimmed and joined
// with a null byte separator.
func (p *contentHashPolicy) Compute(title, url string) string {
	normalizedTitle := strings.TrimSpace(title)
	normalizedURL := strings.TrimSpace(url)

	content := normalizedTitle + "\x00" + normalizedURL

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
