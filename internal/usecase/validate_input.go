package usecase

import (
	"fmt"
	"strings"
	"time"

	"post-orchestrator/internal/domain"

	"github.com/google/uuid"
)

const (
	topicMinLength = 2
	topicMaxLength = 100
	maxArticleAge  = 365 * 24 * time.Hour
)

var forbiddenTopicChars = []string{"<", ">", `"`, "'", "&", ";"}

// InputValidator checks request parameters before any external call is made.
// Every rule runs; violations are collected so the caller sees all of them
// at once instead of fixing them one by one.
type InputValidator struct {
	maxArticles int
	now         func() time.Time
}

// NewInputValidator creates a validator with the configured article ceiling.
func NewInputValidator(maxArticles int) *InputValidator {
	return &InputValidator{maxArticles: maxArticles, now: time.Now}
}

// Validate returns nil when the news request is well-formed, otherwise a
// ValidationError listing every violation.
func (v *InputValidator) Validate(topic, date string, count int, model domain.ProviderID, sessionID string) error {
	var violations []string
	violations = append(violations, v.validateTopic(topic)...)
	violations = append(violations, v.validateDate(date)...)
	violations = append(violations, v.validateCount(count)...)
	violations = append(violations, v.validateModel(model)...)
	violations = append(violations, v.validateSessionID(sessionID)...)

	if len(violations) > 0 {
		return &domain.ValidationError{Violations: violations}
	}
	return nil
}

// ValidatePostRequest covers the post pipeline's lighter requirements: it
// consumes a previously produced article set, so date and count do not apply.
func (v *InputValidator) ValidatePostRequest(topic string, model domain.ProviderID, sessionID string, articles []domain.SummarizedArticle) error {
	var violations []string
	violations = append(violations, v.validateTopic(topic)...)
	violations = append(violations, v.validateModel(model)...)
	violations = append(violations, v.validateSessionID(sessionID)...)
	if articles == nil {
		violations = append(violations, "Article set is required")
	}

	if len(violations) > 0 {
		return &domain.ValidationError{Violations: violations}
	}
	return nil
}

func (v *InputValidator) validateTopic(topic string) []string {
	if topic == "" {
		return []string{"Topic is required"}
	}

	var errs []string
	trimmed := strings.TrimSpace(topic)

	if len(trimmed) < topicMinLength {
		errs = append(errs, fmt.Sprintf("Topic must be at least %d characters long", topicMinLength))
	}
	if len(trimmed) > topicMaxLength {
		errs = append(errs, fmt.Sprintf("Topic must be less than %d characters", topicMaxLength))
	}
	for _, ch := range forbiddenTopicChars {
		if strings.Contains(trimmed, ch) {
			errs = append(errs, "Topic contains forbidden characters")
			break
		}
	}
	return errs
}

func (v *InputValidator) validateDate(date string) []string {
	if date == "" {
		return []string{"Date is required"}
	}

	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return []string{"Date must be in YYYY-MM-DD format"}
	}

	var errs []string
	today := v.now().UTC().Truncate(24 * time.Hour)
	if parsed.After(today) {
		errs = append(errs, "Date cannot be in the future")
	}
	if today.Sub(parsed) > maxArticleAge {
		errs = append(errs, "Date cannot be more than 1 year ago")
	}
	return errs
}

func (v *InputValidator) validateCount(count int) []string {
	var errs []string
	if count < 1 {
		errs = append(errs, "Article count must be at least 1")
	}
	if count > v.maxArticles {
		errs = append(errs, fmt.Sprintf("Article count cannot exceed %d", v.maxArticles))
	}
	return errs
}

func (v *InputValidator) validateModel(model domain.ProviderID) []string {
	if model == "" {
		return []string{"Model is required"}
	}
	if !domain.IsSupportedProvider(model) {
		supported := make([]string, len(domain.SupportedProviders))
		for i, p := range domain.SupportedProviders {
			supported[i] = string(p)
		}
		return []string{fmt.Sprintf("Model must be one of: %s", strings.Join(supported, ", "))}
	}
	return nil
}

func (v *InputValidator) validateSessionID(sessionID string) []string {
	if sessionID == "" {
		return []string{"Session ID is required"}
	}
	if _, err := uuid.Parse(sessionID); err != nil {
		return []string{"Session ID must be a valid UUID"}
	}
	return nil
}
