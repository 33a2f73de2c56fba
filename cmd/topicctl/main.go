package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"post-orchestrator/internal/adapter/repository"
	"post-orchestrator/internal/domain"
)

var (
	version = "dev"

	// Global flags
	verbose bool

	// Seed command flags
	skipExisting bool
)

// defaultProfiles is the canonical profile set steering the article ranker.
// Keywords drive relevance scoring, trusted sources drive the priority boost.
var defaultProfiles = []domain.TopicProfile{
	{
		TopicName: "ai",
		Keywords: []string{
			"AI", "artificial intelligence", "machine learning", "deep learning",
			"neural networks", "LLM", "GPT", "Claude", "OpenAI", "Anthropic",
			"computer vision", "natural language processing", "NLP", "automation",
		},
		TrustedSources: []string{
			"techcrunch.com", "venturebeat.com", "mit.edu", "nvidia.com",
			"openai.com", "anthropic.com", "deepmind.com", "arxiv.org",
			"nature.com", "science.org", "ieee.org", "acm.org",
		},
		PriorityWeight: 1.5,
	},
	{
		TopicName: "finance",
		Keywords: []string{
			"finance", "fintech", "banking", "cryptocurrency", "bitcoin",
			"blockchain", "markets", "trading", "investment", "venture capital",
			"IPO", "stocks", "bonds", "derivatives", "DeFi", "payments",
		},
		TrustedSources: []string{
			"bloomberg.com", "reuters.com", "wsj.com", "ft.com",
			"forbes.com", "economist.com", "cnbc.com", "marketwatch.com",
			"coindesk.com", "cointelegraph.com", "sec.gov", "federalreserve.gov",
		},
		PriorityWeight: 1.4,
	},
	{
		TopicName: "healthcare",
		Keywords: []string{
			"healthcare", "medical", "biotech", "pharmaceuticals", "drugs",
			"clinical trials", "FDA", "medicine", "health tech", "telemedicine",
			"genomics", "precision medicine", "medical devices", "diagnostics",
		},
		TrustedSources: []string{
			"nejm.org", "thelancet.com", "nature.com", "science.org",
			"nih.gov", "fda.gov", "who.int", "cdc.gov", "statnews.com",
			"fiercebiotech.com", "biopharmadive.com", "medpagetoday.com",
		},
		PriorityWeight: 1.3,
	},
	{
		TopicName: "technology",
		Keywords: []string{
			"technology", "tech", "software", "hardware", "startup",
			"innovation", "digital transformation", "cloud computing",
			"cybersecurity", "data", "analytics", "IoT", "5G", "quantum",
		},
		TrustedSources: []string{
			"techcrunch.com", "theverge.com", "wired.com", "arstechnica.com",
			"engadget.com", "zdnet.com", "computerworld.com", "infoworld.com",
			"ieee.org", "acm.org", "mit.edu", "stanford.edu",
		},
		PriorityWeight: 1.2,
	},
	{
		TopicName: "business",
		Keywords: []string{
			"business", "corporate", "enterprise", "economy", "GDP",
			"earnings", "revenue", "profit", "merger", "acquisition",
			"leadership", "strategy", "management", "operations", "supply chain",
		},
		TrustedSources: []string{
			"wsj.com", "ft.com", "bloomberg.com", "reuters.com",
			"economist.com", "forbes.com", "fortune.com", "businessinsider.com",
			"hbr.org", "mckinsey.com", "bcg.com", "pwc.com",
		},
		PriorityWeight: 1.1,
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "topicctl",
	Short:   "Manage topic profiles for article ranking",
	Version: version,
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the canonical topic profiles",
	Long: `Seed the database with the canonical topic profiles used for
domain-aware article ranking and source prioritization.

Examples:
  # Upsert all canonical profiles
  topicctl seed

  # Only insert profiles that do not exist yet
  topicctl seed --skip-existing`,
	RunE: runSeed,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the stored topic profiles",
	RunE:  runList,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	seedCmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "leave already stored profiles untouched")

	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(listCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}

func openProfiles(ctx context.Context) (domain.TopicProfileRepository, *pgxpool.Pool, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to db: %w", err)
	}

	repo, err := repository.NewTopicProfileRepository(pool)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("create repository: %w", err)
	}

	return repo, pool, nil
}

func runSeed(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	repo, pool, err := openProfiles(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	seeded := 0
	skipped := 0
	for _, profile := range defaultProfiles {
		if skipExisting {
			existing, err := repo.FindByName(ctx, profile.TopicName)
			if err != nil {
				return fmt.Errorf("check profile %s: %w", profile.TopicName, err)
			}
			if existing != nil {
				logger.Debug("profile exists, skipping", slog.String("topic", profile.TopicName))
				skipped++
				continue
			}
		}

		p := profile
		if err := repo.Upsert(ctx, &p); err != nil {
			return fmt.Errorf("seed profile %s: %w", profile.TopicName, err)
		}
		logger.Info("profile seeded",
			slog.String("topic", profile.TopicName),
			slog.Int("keywords", len(profile.Keywords)),
			slog.Int("trusted_sources", len(profile.TrustedSources)),
			slog.Float64("priority_weight", profile.PriorityWeight),
		)
		seeded++
	}

	fmt.Printf("Seeding complete. Seeded: %d, Skipped: %d\n", seeded, skipped)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	repo, pool, err := openProfiles(ctx)
	if err != nil {
		return err
	}
	defer pool.Close()

	profiles, err := repo.List(ctx)
	if err != nil {
		return fmt.Errorf("list profiles: %w", err)
	}

	if len(profiles) == 0 {
		fmt.Println("No topic profiles stored. Run 'topicctl seed' first.")
		return nil
	}

	for _, p := range profiles {
		fmt.Printf("%s (weight %.1f)\n", p.TopicName, p.PriorityWeight)
		fmt.Printf("  Keywords:        %s\n", strings.Join(p.Keywords, ", "))
		fmt.Printf("  Trusted sources: %s\n", strings.Join(p.TrustedSources, ", "))
		fmt.Printf("  Updated at:      %s\n", p.UpdatedAt.Format(time.RFC3339))
	}

	return nil
}
