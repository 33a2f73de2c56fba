package usecase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"post-orchestrator/internal/domain"
	"post-orchestrator/internal/usecase"
)

const testSessionID = "0b0f3a1e-7c4d-4f2a-9c6e-3d8b1a2c4e5f"

func yesterday() string {
	return time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
}

func TestInputValidator_Validate_Success(t *testing.T) {
	v := usecase.NewInputValidator(10)

	err := v.Validate("artificial intelligence", yesterday(), 5, domain.ProviderClaude, testSessionID)
	assert.NoError(t, err)
}

func TestInputValidator_Validate_CollectsAllViolations(t *testing.T) {
	v := usecase.NewInputValidator(10)

	err := v.Validate("a", "not-a-date", 0, "unknown-model", "not-a-uuid")
	require.Error(t, err)

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Violations, 5)
}

func TestInputValidator_Validate_Topic(t *testing.T) {
	v := usecase.NewInputValidator(10)

	tests := []struct {
		name    string
		topic   string
		wantErr string
	}{
		{"empty", "", "Topic is required"},
		{"too short", "x", "Topic must be at least 2 characters long"},
		{"too long", string(make([]byte, 101)), "Topic must be less than 100 characters"},
		{"forbidden characters", "ai <script>", "Topic contains forbidden characters"},
		{"semicolon", "ai; drop table", "Topic contains forbidden characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.topic, yesterday(), 5, domain.ProviderClaude, testSessionID)
			require.Error(t, err)

			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, validationErr.Violations, tt.wantErr)
		})
	}
}

func TestInputValidator_Validate_Date(t *testing.T) {
	v := usecase.NewInputValidator(10)

	tests := []struct {
		name    string
		date    string
		wantErr string
	}{
		{"empty", "", "Date is required"},
		{"wrong format", "15-01-2025", "Date must be in YYYY-MM-DD format"},
		{"future", time.Now().UTC().AddDate(0, 0, 2).Format("2006-01-02"), "Date cannot be in the future"},
		{"too old", time.Now().UTC().AddDate(-2, 0, 0).Format("2006-01-02"), "Date cannot be more than 1 year ago"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate("artificial intelligence", tt.date, 5, domain.ProviderClaude, testSessionID)
			require.Error(t, err)

			var validationErr *domain.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Contains(t, validationErr.Violations, tt.wantErr)
		})
	}
}

func TestInputValidator_Validate_CountBounds(t *testing.T) {
	v := usecase.NewInputValidator(10)

	err := v.Validate("artificial intelligence", yesterday(), 0, domain.ProviderClaude, testSessionID)
	require.Error(t, err)
	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Violations, "Article count must be at least 1")

	err = v.Validate("artificial intelligence", yesterday(), 11, domain.ProviderClaude, testSessionID)
	require.Error(t, err)
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Violations, "Article count cannot exceed 10")
}

func TestInputValidator_Validate_Model(t *testing.T) {
	v := usecase.NewInputValidator(10)

	err := v.Validate("artificial intelligence", yesterday(), 5, "gpt-5", testSessionID)
	require.Error(t, err)

	var validationErr *domain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Violations, 1)
	assert.Contains(t, validationErr.Violations[0], "Model must be one of")
}

func TestInputValidator_ValidatePostRequest(t *testing.T) {
	v := usecase.NewInputValidator(10)

	t.Run("valid with empty article slice", func(t *testing.T) {
		err := v.ValidatePostRequest("artificial intelligence", domain.ProviderGPT4, testSessionID, []domain.SummarizedArticle{})
		assert.NoError(t, err)
	})

	t.Run("nil article set rejected", func(t *testing.T) {
		err := v.ValidatePostRequest("artificial intelligence", domain.ProviderGPT4, testSessionID, nil)
		require.Error(t, err)

		var validationErr *domain.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Contains(t, validationErr.Violations, "Article set is required")
	})
}
