package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"post-orchestrator/internal/domain"
)

const (
	longFormCharLimit  = 3000
	shortFormCharLimit = 250

	// Fixed allowance for the opening hook, line breaks and the closing
	// call-to-action in a long-form post.
	structureOverhead = 200

	longFormMaxTokens  = 1200
	shortFormMaxTokens = 150

	minSummaryBudget = 50
)

// ContentBudget is the advisory per-article character allocation embedded in
// the long-form prompt.
type ContentBudget struct {
	PerArticle int
	Headline   int
	Summary    int
}

var hashtagPattern = regexp.MustCompile(`#\w+`)

// spliceKeywords is the priority order for attaching a link to an existing
// word in a short post.
var spliceKeywords = []string{"Details", "Source", "Report", "Link", "More"}

// topicHashtags maps canonical topic substrings to their hashtag pairs.
var topicHashtags = map[string]string{
	"ai":         "#AI #TechNews",
	"finance":    "#Finance #Markets",
	"healthcare": "#Healthcare #HealthTech",
	"technology": "#Technology #Innovation",
	"business":   "#Business #Industry",
	"crypto":     "#Crypto #Blockchain",
	"climate":    "#Climate #Sustainability",
	"education":  "#Education #EdTech",
	"security":   "#Security #CyberSecurity",
	"data":       "#Data #Analytics",
}

const defaultHashtags = "#Tech #News"

// ComposeInput carries the summarized articles and the caller's preferred
// provider.
type ComposeInput struct {
	Topic     string
	Articles  []domain.SummarizedArticle
	Preferred domain.ProviderID
}

// ComposeOutput pairs the finished post with the provider that produced it.
// Provider is empty when the post was assembled without a model call.
type ComposeOutput struct {
	Post     domain.ComposedPost
	Provider domain.ProviderID
}

// ComposePostUsecase turns summarized articles into platform-shaped posts.
// Long-form targets a professional feed with a 3000 character cap;
// short-form targets a 250 character microblog post with link shortening.
type ComposePostUsecase interface {
	ComposeLongForm(ctx context.Context, input ComposeInput) (*ComposeOutput, error)
	ComposeShortForm(ctx context.Context, input ComposeInput) (*ComposeOutput, error)
}

type composePostUsecase struct {
	registry  *domain.ProviderRegistry
	prompts   PromptBuilder
	shortener domain.URLShortener
	logger    *slog.Logger
}

// NewComposePostUsecase creates the composition stage.
func NewComposePostUsecase(
	registry *domain.ProviderRegistry,
	prompts PromptBuilder,
	shortener domain.URLShortener,
	logger *slog.Logger,
) ComposePostUsecase {
	return &composePostUsecase{
		registry:  registry,
		prompts:   prompts,
		shortener: shortener,
		logger:    logger,
	}
}

// ComposeLongForm generates the professional-feed post. With no articles it
// assembles a generic placeholder without calling any provider.
func (u *composePostUsecase) ComposeLongForm(ctx context.Context, input ComposeInput) (*ComposeOutput, error) {
	if len(input.Articles) == 0 {
		content := genericLongFormPost(input.Topic)
		return &ComposeOutput{Post: finishPost(domain.PostKindLongForm, content, nil)}, nil
	}

	budget := budgetFor(len(input.Articles))
	messages := u.prompts.BuildLongFormPrompt(input.Topic, input.Articles, budget)

	content, provider, err := u.generate(ctx, input.Preferred, messages, longFormMaxTokens)
	if err != nil {
		return nil, err
	}

	content = truncatePost(content, longFormCharLimit)

	u.logger.Info("long_form_composed",
		slog.String("topic", input.Topic),
		slog.String("provider", string(provider)),
		slog.Int("chars", len(content)),
		slog.Int("articles", len(input.Articles)))

	return &ComposeOutput{
		Post:     finishPost(domain.PostKindLongForm, content, nil),
		Provider: provider,
	}, nil
}

// ComposeShortForm generates the microblog post, attaches the top article's
// link and guarantees a hashtag presence within the character cap.
func (u *composePostUsecase) ComposeShortForm(ctx context.Context, input ComposeInput) (*ComposeOutput, error) {
	if len(input.Articles) == 0 {
		content := genericShortFormPost(input.Topic)
		content = ensureHashtags(content, input.Topic)
		content = truncatePost(content, shortFormCharLimit)
		return &ComposeOutput{Post: finishPost(domain.PostKindShortForm, content, nil)}, nil
	}

	messages := u.prompts.BuildShortFormPrompt(input.Topic, input.Articles, shortFormCharLimit)

	content, provider, err := u.generate(ctx, input.Preferred, messages, shortFormMaxTokens)
	if err != nil {
		return nil, err
	}

	topURL := input.Articles[0].URL
	content, shortened := u.attachLink(ctx, content, topURL)
	content = ensureHashtags(content, input.Topic)
	content = truncatePost(content, shortFormCharLimit)

	u.logger.Info("short_form_composed",
		slog.String("topic", input.Topic),
		slog.String("provider", string(provider)),
		slog.Int("chars", len(content)),
		slog.Bool("link_attached", len(shortened) > 0 || strings.Contains(content, topURL)))

	return &ComposeOutput{
		Post:     finishPost(domain.PostKindShortForm, content, shortened),
		Provider: provider,
	}, nil
}

// generate walks the provider chain with a single attempt per provider.
// Retry pressure lives in the per-article summarization stage; composition
// failures move straight to the next provider.
func (u *composePostUsecase) generate(ctx context.Context, preferred domain.ProviderID, messages []domain.Message, maxTokens int) (string, domain.ProviderID, error) {
	var tried []string
	var lastErr error

	for _, providerID := range domain.ProviderOrder(preferred) {
		tried = append(tried, string(providerID))

		client, err := u.registry.Client(providerID)
		if err != nil {
			lastErr = err
			continue
		}

		text, err := client.Complete(ctx, messages, maxTokens)
		if err != nil {
			lastErr = err
			u.logger.Warn("compose_provider_failed",
				slog.String("provider", string(providerID)),
				slog.String("error", err.Error()))
			if ctx.Err() != nil {
				return "", "", ctx.Err()
			}
			continue
		}

		text = strings.TrimSpace(text)
		if text == "" {
			lastErr = fmt.Errorf("provider %s returned empty content", providerID)
			continue
		}
		return text, providerID, nil
	}

	return "", "", &domain.LanguageProviderError{ProvidersTried: tried, Err: lastErr}
}

// attachLink gets the top article's URL into the post. The shortener is
// best-effort; on failure the original URL is used. Attachment tiers: replace
// an already-present URL, splice onto a known keyword, append a labeled line,
// append the bare URL, or give up when nothing fits the cap.
func (u *composePostUsecase) attachLink(ctx context.Context, content, articleURL string) (string, map[string]string) {
	if articleURL == "" {
		return content, nil
	}

	link := articleURL
	shortened := map[string]string{}
	if short, err := u.shortener.Shorten(ctx, articleURL); err == nil && short != "" {
		link = short
		shortened[articleURL] = short
	} else if err != nil {
		u.logger.Warn("url_shortening_failed",
			slog.String("url", articleURL),
			slog.String("error", err.Error()))
	}

	if strings.Contains(content, articleURL) {
		return strings.Replace(content, articleURL, link, 1), shortened
	}
	if strings.Contains(content, link) {
		return content, shortened
	}

	lowerContent := strings.ToLower(content)
	for _, keyword := range spliceKeywords {
		idx := strings.Index(lowerContent, strings.ToLower(keyword))
		if idx < 0 {
			continue
		}
		spliced := content[:idx+len(keyword)] + ": " + link + content[idx+len(keyword):]
		if len(spliced) <= shortFormCharLimit {
			return spliced, shortened
		}
		break
	}

	if labeled := content + "\nDetails: " + link; len(labeled) <= shortFormCharLimit {
		return labeled, shortened
	}
	if bare := content + "\n" + link; len(bare) <= shortFormCharLimit {
		return bare, shortened
	}

	u.logger.Warn("link_omitted", slog.String("url", articleURL))
	return content, shortened
}

// budgetFor splits the usable space across articles. Fewer articles earn a
// larger headline allowance.
func budgetFor(articleCount int) ContentBudget {
	available := longFormCharLimit - structureOverhead
	perArticle := available / articleCount

	var headline int
	switch {
	case articleCount <= 3:
		headline = 100
	case articleCount <= 6:
		headline = 80
	default:
		headline = 60
	}

	summary := perArticle - headline
	if summary < minSummaryBudget {
		summary = minSummaryBudget
	}

	return ContentBudget{PerArticle: perArticle, Headline: headline, Summary: summary}
}

// ensureHashtags appends topic hashtags when the model produced none.
func ensureHashtags(content, topic string) string {
	if hashtagPattern.MatchString(content) {
		return content
	}

	tags := defaultHashtags
	lower := strings.ToLower(topic)
	for key, mapped := range topicHashtags {
		if strings.Contains(lower, key) {
			tags = mapped
			break
		}
	}
	return content + "\n\n" + tags
}

// truncatePost enforces the hard cap. A trailing hashtag run survives the
// cut so the post never loses its tags to truncation.
func truncatePost(content string, limit int) string {
	if len(content) <= limit {
		return content
	}

	run := trailingHashtagRun(content)
	if run == "" {
		return strings.TrimSpace(truncateRunes(content, limit-3)) + "..."
	}

	budget := limit - len(run) - 4
	if budget <= 0 {
		return truncateHashtagRun(run, limit)
	}
	body := strings.TrimSpace(truncateRunes(content, budget))
	return body + "...\n" + run
}

// truncateHashtagRun keeps whole tags from the front of an oversized run,
// dropping trailing tags until the run fits. A single tag that alone exceeds
// the limit is hard-cut at a rune boundary.
func truncateHashtagRun(run string, limit int) string {
	kept := ""
	for _, tag := range strings.Fields(run) {
		next := tag
		if kept != "" {
			next = kept + " " + tag
		}
		if len(next) > limit {
			break
		}
		kept = next
	}
	if kept == "" {
		return truncateRunes(run, limit)
	}
	return kept
}

// truncateRunes cuts s to at most n bytes without splitting a rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// trailingHashtagRun returns the whitespace-separated hashtags at the very
// end of the content, or "" when the content does not end with hashtags.
func trailingHashtagRun(content string) string {
	trimmed := strings.TrimRight(content, " \n\t")
	runStart := len(trimmed)
	pos := len(trimmed)
	for pos > 0 {
		ws := strings.LastIndexAny(trimmed[:pos], " \n\t")
		word := trimmed[ws+1 : pos]
		if len(word) < 2 || !strings.HasPrefix(word, "#") {
			break
		}
		runStart = ws + 1
		pos = ws
		for pos > 0 && (trimmed[pos-1] == ' ' || trimmed[pos-1] == '\n' || trimmed[pos-1] == '\t') {
			pos--
		}
	}
	if runStart == len(trimmed) {
		return ""
	}
	return trimmed[runStart:]
}

func finishPost(kind domain.PostKind, content string, shortened map[string]string) domain.ComposedPost {
	tags := hashtagPattern.FindAllString(content, -1)
	seen := make(map[string]bool, len(tags))
	unique := make([]string, 0, len(tags))
	for _, tag := range tags {
		if seen[tag] {
			continue
		}
		seen[tag] = true
		unique = append(unique, tag)
	}

	return domain.ComposedPost{
		Kind:          kind,
		Content:       content,
		CharCount:     len(content),
		Hashtags:      unique,
		ShortenedURLs: shortened,
	}
}

func genericLongFormPost(topic string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Staying on top of %s developments.\n\n", topic))
	sb.WriteString("No fresh headlines made the cut today, but the pace of change in this space rarely slows down for long. ")
	sb.WriteString("It's a good moment to revisit the trends shaping the field and the questions worth asking next.\n\n")
	sb.WriteString(fmt.Sprintf("What %s development are you watching most closely right now?", topic))
	return sb.String()
}

func genericShortFormPost(topic string) string {
	return fmt.Sprintf("Quiet day on the %s front. Sometimes no news is the signal: time to dig into the trends that matter.", topic)
}
