package usecase

import (
	"fmt"
	"strings"

	"post-orchestrator/internal/domain"
)

// PromptBuilder constructs the chat messages sent to language model
// providers for summarization and post composition.
type PromptBuilder interface {
	BuildSummaryPrompt(article domain.ScoredArticle, maxLength int) []domain.Message
	BuildLongFormPrompt(topic string, articles []domain.SummarizedArticle, budget ContentBudget) []domain.Message
	BuildShortFormPrompt(topic string, articles []domain.SummarizedArticle, charLimit int) []domain.Message
}

type promptBuilder struct{}

// NewPromptBuilder creates the default prompt builder.
func NewPromptBuilder() PromptBuilder {
	return &promptBuilder{}
}

// BuildSummaryPrompt asks for a short professional summary of one article.
func (b *promptBuilder) BuildSummaryPrompt(article domain.ScoredArticle, maxLength int) []domain.Message {
	var sb strings.Builder
	sb.WriteString("Please create a concise, professional summary of this news article for business sharing.\n\n")
	sb.WriteString(fmt.Sprintf("Title: %s\n", article.Title))
	sb.WriteString(fmt.Sprintf("Source: %s\n", article.Source))
	sb.WriteString(fmt.Sprintf("Original Content: %s\n\n", article.Snippet))
	sb.WriteString("Requirements:\n")
	sb.WriteString(fmt.Sprintf("- Maximum %d characters\n", maxLength))
	sb.WriteString("- Professional tone suitable for a business audience\n")
	sb.WriteString("- Focus on key insights and implications\n")
	sb.WriteString("- Avoid promotional language\n\n")
	sb.WriteString("Summary:")

	return []domain.Message{{Role: "user", Content: sb.String()}}
}

// BuildLongFormPrompt embeds the advisory per-article character budget in
// the prompt. The budget guides generation; the hard cap is enforced on the
// output afterwards.
func (b *promptBuilder) BuildLongFormPrompt(topic string, articles []domain.SummarizedArticle, budget ContentBudget) []domain.Message {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(
		"You are writing a professional LinkedIn post summarizing %d key news items about %s for an audience of tech leaders, startup founders, and innovation-driven professionals.\n\n",
		len(articles), topic))

	sb.WriteString("CONTENT DISTRIBUTION:\n")
	sb.WriteString(fmt.Sprintf("- Total character limit: %d characters\n", longFormCharLimit))
	sb.WriteString(fmt.Sprintf("- Per article allocation: ~%d characters\n", budget.PerArticle))
	sb.WriteString(fmt.Sprintf("- Headline per article: ~%d characters\n", budget.Headline))
	sb.WriteString(fmt.Sprintf("- Summary per article: ~%d characters\n\n", budget.Summary))

	sb.WriteString("ARTICLES TO SUMMARIZE:\n")
	writeArticles(&sb, articles)

	sb.WriteString("\nFORMATTING REQUIREMENTS:\n")
	sb.WriteString("1. Start with an engaging opening line that captures attention\n")
	sb.WriteString("2. For each news item: a strong headline, a summary prioritizing the most important points, the source in parentheses, and the original link\n")
	sb.WriteString("3. Use clear formatting with line breaks between items\n")
	sb.WriteString("4. End with a thought-provoking question or call-to-action\n")
	sb.WriteString(fmt.Sprintf("5. Keep the total post under %d characters\n\n", longFormCharLimit))

	sb.WriteString("TONE AND STYLE: professional yet conversational, focused on insights and implications.\n\n")
	sb.WriteString("Generate the LinkedIn post now:")

	return []domain.Message{
		{Role: "system", Content: "You are a professional social media content creator specializing in LinkedIn posts for the tech industry."},
		{Role: "user", Content: sb.String()},
	}
}

// BuildShortFormPrompt asks for one compact post covering every article's
// key insight.
func (b *promptBuilder) BuildShortFormPrompt(topic string, articles []domain.SummarizedArticle, charLimit int) []domain.Message {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Create a compelling Twitter/X post summarizing today's top %s news.\n\n", topic))

	sb.WriteString("ARTICLES TO SUMMARIZE:\n")
	writeArticles(&sb, articles)

	sb.WriteString("\nREQUIREMENTS:\n")
	sb.WriteString(fmt.Sprintf("1. Maximum %d characters INCLUDING spaces and punctuation\n", charLimit))
	sb.WriteString("2. Reference the key insight of every article above, not just one\n")
	sb.WriteString("3. Create a hook that makes people want to learn more\n")
	sb.WriteString("4. Include 1-2 relevant hashtags at the end\n")
	sb.WriteString("5. Optionally include ONE link to the most important article\n")
	sb.WriteString("6. Use clear, punchy language\n\n")
	sb.WriteString(fmt.Sprintf("Generate the X post now (remember: %d characters MAX):", charLimit))

	return []domain.Message{
		{Role: "system", Content: "You are a social media expert specializing in creating engaging Twitter/X posts about technology and business news."},
		{Role: "user", Content: sb.String()},
	}
}

func writeArticles(sb *strings.Builder, articles []domain.SummarizedArticle) {
	for i, a := range articles {
		sb.WriteString(fmt.Sprintf("\nArticle %d:\n", i+1))
		sb.WriteString(fmt.Sprintf("Title: %s\n", a.Title))
		sb.WriteString(fmt.Sprintf("Source: %s\n", a.Source))
		sb.WriteString(fmt.Sprintf("Summary: %s\n", a.Summary))
		sb.WriteString(fmt.Sprintf("URL: %s\n", a.URL))
	}
}
