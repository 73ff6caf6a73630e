// Copyright 2025 Poiesic Systems
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
	"github.com/poiesic/faqbot"
	"github.com/poiesic/faqbot/ai"
	"github.com/poiesic/faqbot/index"
	"github.com/poiesic/faqbot/matcher"
	"github.com/poiesic/faqbot/server"
	"github.com/poiesic/faqbot/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	// Optional .env file for local development
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "faqbot",
		Usage: "FAQ retrieval chatbot over embedding similarity",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the chat API over HTTP",
				Action: serveCommand,
				Flags: append(botFlags(),
					&cli.StringFlag{
						Name:    "addr",
						Aliases: []string{"a"},
						Usage:   "HTTP listen address",
						Value:   server.DefaultAddr,
						EnvVars: []string{"FAQBOT_ADDR"},
					},
					&cli.StringFlag{
						Name:    "db",
						Aliases: []string{"d"},
						Usage:   "Path to the exchange log database directory",
						EnvVars: []string{"FAQBOT_DB"},
					},
				),
			},
			{
				Name:   "warm",
				Usage:  "Build the embedding cache for the FAQ corpus",
				Action: warmCommand,
				Flags:  botFlags(),
			},
			{
				Name:      "ask",
				Usage:     "Answer a single question from the command line",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags:     botFlags(),
			},
			{
				Name:   "accuracy",
				Usage:  "Self-test: query every stored question verbatim and report accuracy",
				Action: accuracyCommand,
				Flags:  botFlags(),
			},
			{
				Name:   "logs",
				Usage:  "Print recent exchanges from the exchange log",
				Action: logsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to the exchange log database directory",
						Required: true,
						EnvVars:  []string{"FAQBOT_DB"},
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Number of exchanges to print",
						Value:   20,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// botFlags are shared by every command that constructs a Bot.
func botFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "faq",
			Aliases: []string{"f"},
			Usage:   "Path to the FAQ corpus JSON file",
			Value:   "faq_data.json",
			EnvVars: []string{"FAQBOT_FAQ"},
		},
		&cli.StringFlag{
			Name:    "cache",
			Aliases: []string{"c"},
			Usage:   "Path to the embedding cache file (empty disables the cache)",
			Value:   "faq_embeddings.cache",
			EnvVars: []string{"FAQBOT_CACHE"},
		},
		&cli.StringFlag{
			Name:    "embedding-host",
			Usage:   "Embedding service host URL",
			Value:   "http://localhost:11434/v1",
			EnvVars: []string{"FAQBOT_EMBEDDING_HOST"},
		},
		&cli.StringFlag{
			Name:    "embedding-model",
			Usage:   "Embedding model name",
			Value:   "all-minilm",
			EnvVars: []string{"FAQBOT_EMBEDDING_MODEL"},
		},
		&cli.Float64Flag{
			Name:  "threshold",
			Usage: "Minimum similarity for a corpus answer",
			Value: float64(matcher.DefaultThreshold),
		},
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Number of questions to embed in each batch",
			Value: 32,
		},
		&cli.IntFlag{
			Name:  "report-interval",
			Usage: "Report embedding progress every N questions",
			Value: 50,
		},
		&cli.IntFlag{
			Name:  "max-retries",
			Usage: "Maximum retry attempts for embedding calls",
			Value: 3,
		},
		&cli.DurationFlag{
			Name:  "retry-delay",
			Usage: "Base delay for exponential backoff",
			Value: 1 * time.Second,
		},
	}
}

func newBot(ctx context.Context, c *cli.Context, extra ...faqbot.BotOption) (*faqbot.Bot, error) {
	aiConfig := ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}

	buildConfig := index.DefaultBuildConfig()
	buildConfig.BatchSize = c.Int("batch-size")
	buildConfig.MaxRetries = c.Int("max-retries")
	buildConfig.RetryDelay = c.Duration("retry-delay")
	buildConfig.Progress = index.NewProgressTracker(os.Stderr, 0, c.Int("report-interval"))

	opts := []faqbot.BotOption{
		faqbot.WithAIConfig(aiConfig),
		faqbot.WithCachePath(c.String("cache")),
		faqbot.WithThreshold(float32(c.Float64("threshold"))),
		faqbot.WithBuildConfig(buildConfig),
	}
	opts = append(opts, extra...)

	return faqbot.NewBot(ctx, c.String("faq"), opts...)
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var extra []faqbot.BotOption
	if dbPath := c.String("db"); dbPath != "" {
		extra = append(extra, faqbot.WithLogPath(dbPath))
	}

	bot, err := newBot(ctx, c, extra...)
	if err != nil {
		return err
	}
	defer bot.Close()

	srv, err := bot.NewServer(server.WithAddr(c.String("addr")))
	if err != nil {
		return err
	}
	defer srv.Close()

	return srv.ListenAndServe(ctx)
}

func warmCommand(c *cli.Context) error {
	cachePath := c.String("cache")
	if cachePath == "" {
		return fmt.Errorf("cache path is required")
	}

	bot, err := newBot(context.Background(), c)
	if err != nil {
		return err
	}
	defer bot.Close()

	fmt.Fprintf(os.Stderr, "Cache: %s\n", cachePath)
	fmt.Fprintf(os.Stderr, "Questions: %d\n", bot.Corpus().Len())
	fmt.Fprintf(os.Stderr, "Dimension: %d\n", bot.Index().Dimension())
	return nil
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return fmt.Errorf("question is required")
	}

	ctx := context.Background()
	bot, err := newBot(ctx, c)
	if err != nil {
		return err
	}
	defer bot.Close()

	response := bot.Matcher().Respond(ctx, question)
	fmt.Println(response.Answer)
	fmt.Fprintf(os.Stderr, "confidence: %.3f source: %s\n", response.Confidence, response.Source)
	return nil
}

func accuracyCommand(c *cli.Context) error {
	ctx := context.Background()
	bot, err := newBot(ctx, c)
	if err != nil {
		return err
	}
	defer bot.Close()

	corpus := bot.Corpus()
	m := bot.Matcher()

	correct := 0
	for pos := 0; pos < corpus.Len(); pos++ {
		entry := corpus.Entry(pos)
		response := m.Respond(ctx, entry.Question)
		if response.Answer == entry.Answer {
			correct++
			continue
		}
		fmt.Fprintf(os.Stderr, "MISS %q\n  expected: %.60s\n  actual:   %.60s (%.3f)\n",
			entry.Question, entry.Answer, response.Answer, response.Confidence)
	}

	total := corpus.Len()
	fmt.Printf("Accuracy: %.2f%% (%d/%d)\n", float64(correct)/float64(total)*100, correct, total)
	return nil
}

func logsCommand(c *cli.Context) error {
	ctx := context.Background()

	backend, err := badger.OpenBackend(c.String("db"), false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewExchangeRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	exchanges, err := repo.GetRecentExchanges(ctx, c.Int("limit"))
	if err != nil {
		return err
	}

	for _, exchange := range exchanges {
		fmt.Printf("[%s] %s (%.3f)\n  Q: %s\n  A: %.100s\n",
			exchange.CreatedAt.Format(time.RFC3339),
			exchange.Source,
			exchange.Confidence,
			exchange.Query,
			exchange.Answer,
		)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
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

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
