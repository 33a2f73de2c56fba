package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// FingerprintPolicy computes the deterministic request fingerprint used for
// duplicate detection. Same (session, topic, date) -> same fingerprint,
// regardless of topic case or surrounding whitespace.
type FingerprintPolicy interface {
	Compute(sessionID, topic, date string) string
}

type fingerprintPolicy struct{}

// NewFingerprintPolicy creates the default fingerprint policy.
func NewFingerprintPolicy() FingerprintPolicy {
	return &fingerprintPolicy{}
}

// Compute returns the SHA-256 hash of the normalized request identity.
// Components are joined with a null byte so boundaries stay unambiguous.
func (p *fingerprintPolicy) Compute(sessionID, topic, date string) string {
	normalizedTopic := strings.ToLower(strings.TrimSpace(topic))

	content := sessionID + "\x00" + normalizedTopic + "\x00" + date

	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
