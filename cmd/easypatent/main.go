// Copyright 2025 EasyPatent Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/easypatent/easypatent"
	"github.com/easypatent/easypatent/ai"
	"github.com/easypatent/easypatent/ai/openai"
	"github.com/easypatent/easypatent/collect"
	"github.com/easypatent/easypatent/core"
	"github.com/easypatent/easypatent/embed"
	"github.com/easypatent/easypatent/epo"
	"github.com/easypatent/easypatent/keywords"
	"github.com/easypatent/easypatent/ratelimit"
	"github.com/easypatent/easypatent/retry"
	"github.com/easypatent/easypatent/vectorize"
)

func main() {
	// Credentials may live in a local .env file; a missing file is fine.
	godotenv.Load()

	app := &cli.App{
		Name:   "easypatent",
		Usage:  "Collect patent abstracts from EPO and embed them for semantic search",
		Before: setupLogger,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "collect",
				Usage:  "Search EPO by keywords and persist patent abstracts",
				Action: collectCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "keywords",
						Aliases:  []string{"k"},
						Usage:    "Path to CSV file with keywords in the first column",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "keyword-limit",
						Usage: "Maximum number of keywords to process (0 = all)",
						Value: 0,
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent keyword workers",
						Value: collect.DefaultWorkers,
					},
					&cli.IntFlag{
						Name:  "rate-limit",
						Usage: "Maximum API requests per rate window",
						Value: 10,
					},
					&cli.DurationFlag{
						Name:  "rate-window",
						Usage: "Rate limit window",
						Value: 1 * time.Second,
					},
					&cli.IntFlag{
						Name:  "page-size",
						Usage: "Search results requested per page",
						Value: epo.DefaultPageSize,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "embed",
				Usage:  "Embed pending patent abstracts into the vector index",
				Action: embedCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "embedding-host",
						Usage: "Embedding service host URL",
						Value: "https://api.openai.com/v1",
					},
					&cli.StringFlag{
						Name:  "embedding-model",
						Usage: "Embedding model name",
						Value: "text-embedding-3-large",
					},
					&cli.IntFlag{
						Name:  "dimensions",
						Usage: "Embedding vector dimensions",
						Value: 1536,
					},
					&cli.StringFlag{
						Name:     "vectorize-index",
						Usage:    "Cloudflare Vectorize index name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of records to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
			{
				Name:   "status",
				Usage:  "Show per-status record counts for a patent database",
				Action: statusCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func collectCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumerKey, err := requireEnv("EPO_CONSUMER_KEY")
	if err != nil {
		return err
	}
	consumerSecret, err := requireEnv("EPO_CONSUMER_SECRET")
	if err != nil {
		return err
	}

	keywordList, err := keywords.Load(c.String("keywords"), c.Int("keyword-limit"))
	if err != nil {
		return err
	}
	if len(keywordList) == 0 {
		return fmt.Errorf("no keywords found in %s", c.String("keywords"))
	}

	limiter := ratelimit.New(c.Int("rate-limit"), c.Duration("rate-window"))

	policy := retry.Policy{
		MaxAttempts: c.Int("max-retries"),
		BaseDelay:   c.Duration("retry-delay"),
	}

	client, err := epo.NewClient(consumerKey, consumerSecret, limiter,
		epo.WithPageSize(c.Int("page-size")),
		epo.WithRetryPolicy(policy),
	)
	if err != nil {
		return fmt.Errorf("failed to create EPO client: %w", err)
	}

	store, err := easypatent.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	pipeline, err := store.NewCollectionPipeline(client,
		collect.WithWorkers(c.Int("workers")),
		collect.WithPersistRetry(policy),
	)
	if err != nil {
		return fmt.Errorf("failed to create pipeline: %w", err)
	}
	defer pipeline.Release()

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Keywords: %d\n", len(keywordList))
	fmt.Fprintf(os.Stderr, "Workers: %d\n", c.Int("workers"))
	fmt.Fprintf(os.Stderr, "Rate limit: %d requests per %v\n", c.Int("rate-limit"), c.Duration("rate-window"))
	fmt.Fprintln(os.Stderr)

	report, runErr := pipeline.Run(ctx, keywordList)
	if report != nil {
		printReport(report)
	}
	if runErr != nil {
		return fmt.Errorf("collection failed: %w", runErr)
	}
	return nil
}

func embedCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openaiKey, err := requireEnv("OPENAI_API_KEY")
	if err != nil {
		return err
	}
	cloudflareKey, err := requireEnv("CLOUDFLARE_API_KEY")
	if err != nil {
		return err
	}
	accountID, err := requireEnv("CLOUDFLARE_ACCOUNT_ID")
	if err != nil {
		return err
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("embedding-host")),
		ai.WithModel(c.String("embedding-model")),
		ai.WithAPIKey(openaiKey),
		ai.WithDimensions(c.Int("dimensions")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid embedding configuration: %w", err)
	}

	embedder, err := openai.NewEmbedder(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	vectors, err := vectorize.NewClient(accountID, c.String("vectorize-index"), cloudflareKey)
	if err != nil {
		return fmt.Errorf("failed to create vector store client: %w", err)
	}

	embedConfig := &embed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if embedConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if embedConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if embedConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	store, err := easypatent.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	stage, err := store.NewEmbeddingStage(embedder, vectors, embedConfig, os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to create embedding stage: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding host: %s\n", c.String("embedding-host"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintf(os.Stderr, "Vectorize index: %s\n", c.String("vectorize-index"))
	fmt.Fprintln(os.Stderr)

	if _, err := stage.Run(ctx); err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	store, err := easypatent.Open(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	counts, err := store.Patents().CountByEmbeddingStatus(context.Background())
	if err != nil {
		return fmt.Errorf("failed to count records: %w", err)
	}

	total := 0
	for _, status := range []core.EmbeddingStatus{
		core.EmbeddingStatusPending,
		core.EmbeddingStatusEmbedded,
		core.EmbeddingStatusFailed,
	} {
		fmt.Printf("%-10s %d\n", status, counts[status])
		total += counts[status]
	}
	fmt.Printf("%-10s %d\n", "total", total)
	return nil
}

func printReport(report *collect.Report) {
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, report.Summary())

	for _, failure := range report.FailedRecords() {
		fmt.Fprintf(os.Stderr, "  failed record %s (keyword %q, %s): %v\n",
			failure.Number, failure.Keyword, failure.Category, failure.Err)
	}
	for _, result := range report.Results {
		if result.State == collect.KeywordFailed {
			fmt.Fprintf(os.Stderr, "  failed keyword %q: %v\n", result.Keyword, result.Err)
		}
	}
}

func requireEnv(name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("environment variable %s is required", name)
	}
	return value, nil
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
