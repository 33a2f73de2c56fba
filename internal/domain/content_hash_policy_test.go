package domain_test

import (
	"testing"

	"post-orchestrator/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestContentHashPolicy_Compute(t *testing.T) {
	policy := domain.NewContentHashPolicy()

	t.Run("Stable across runs for identical title and url", func(t *testing.T) {
		h1 := policy.Compute("OpenAI ships new model", "https://example.com/a")
		h2 := policy.Compute("OpenAI ships new model", "https://example.com/a")
		assert.Equal(t, h1, h2)
	})

	t.Run("Different url produces different hash", func(t *testing.T) {
		h1 := policy.Compute("Same title", "https://example.com/a")
		h2 := policy.Compute("Same title", "https://example.com/b")
		assert.NotEqual(t, h1, h2)
	})

	t.Run("Surrounding whitespace is trimmed", func(t *testing.T) {
		h1 := policy.Compute("Title", "https://example.com/a")
		h2 := policy.Compute(" Title ", " https://example.com/a ")
		assert.Equal(t, h1, h2)
	})
}
