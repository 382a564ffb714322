package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/bytedance/sonic"

	"sales-engine/internal/classifier"
	"sales-engine/internal/config"
	"sales-engine/internal/engine"
	"sales-engine/internal/finance"
	"sales-engine/internal/inventory"
	"sales-engine/internal/llm"
	"sales-engine/internal/logger"
	"sales-engine/internal/storage"
	"sales-engine/pkg"
)

func main() {
	config.LoadEnv()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config.yaml: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	store, err := storage.Open(cfg.Storage.DSN)
	if err != nil {
		logger.Error().Err(err).Msg("opening store failed")
		os.Exit(1)
	}
	if err := store.Seed(ctx); err != nil {
		logger.Error().Err(err).Msg("seeding store failed")
		os.Exit(1)
	}

	history := buildHistory(ctx, cfg)
	local, hosted := buildModels(ctx, cfg)

	eng := engine.New(engine.Options{
		Classifier:      classifier.New(local, hosted, cfg.Classifier.ConfidenceThreshold),
		Resolver:        inventory.NewResolver(store),
		Calculator:      finance.NewCalculator(store),
		Vehicles:        store,
		Dealerships:     store,
		History:         history,
		Hosted:          hosted,
		MaxHistoryTurns: cfg.Engine.MaxHistoryTurns,
	})

	message := strings.Join(os.Args[1:], " ")
	if message == "" {
		fmt.Print("Customer message: ")
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			message = strings.TrimSpace(scanner.Text())
		}
	}
	if message == "" {
		fmt.Fprintln(os.Stderr, "usage: sales-engine <customer message>")
		os.Exit(2)
	}

	req := pkg.SalesRequest{
		DealershipID:    1,
		ConversationID:  "demo",
		CustomerMessage: message,
	}

	resp, err := eng.GenerateSalesResponse(ctx, req)
	if err != nil {
		logger.Error().Err(err).Msg("generating response failed")
		os.Exit(1)
	}

	recordTurns(ctx, history, req, resp)

	out, err := sonic.ConfigDefault.MarshalIndent(resp, "", "  ")
	if err != nil {
		logger.Error().Err(err).Msg("encoding response failed")
		os.Exit(1)
	}
	fmt.Println(string(out))
}

// buildHistory prefers Redis when REDIS_URL is set and falls back to the
// in-process store otherwise.
func buildHistory(ctx context.Context, cfg *config.Config) engine.HistoryProvider {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		logger.Debug().Msg("REDIS_URL not set, using in-memory conversation history")
		return storage.NewMemoryHistory()
	}
	redisHistory, err := storage.NewRedisHistory(ctx, url, cfg.RedisTTL())
	if err != nil {
		logger.Warn().Err(err).Msg("redis unavailable, using in-memory conversation history")
		return storage.NewMemoryHistory()
	}
	return redisHistory
}

// buildModels constructs whichever chat backends are configured. Either may
// be nil; the classifier and engine degrade accordingly.
func buildModels(ctx context.Context, cfg *config.Config) (local, hosted llm.Chat) {
	if cfg.Models.Local.BaseURL != "" {
		l, err := llm.NewLocal(ctx, llm.LocalConfig{
			BaseURL: cfg.Models.Local.BaseURL,
			Model:   cfg.Models.Local.Model,
			Timeout: cfg.LocalTimeout(),
		})
		if err != nil {
			logger.Warn().Err(err).Msg("local model unavailable")
		} else {
			local = l
		}
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		logger.Warn().Msg("OPENAI_API_KEY not set, hosted model disabled")
		return local, nil
	}
	h, err := llm.NewHosted(ctx, llm.HostedConfig{
		APIKey:      apiKey,
		BaseURL:     cfg.Models.Hosted.BaseURL,
		Model:       cfg.Models.Hosted.Model,
		MaxTokens:   cfg.Models.Hosted.MaxTokens,
		Temperature: cfg.Models.Hosted.Temperature,
	})
	if err != nil {
		logger.Warn().Err(err).Msg("hosted model unavailable")
		return local, nil
	}
	return local, h
}

type historyAppender interface {
	AppendMessage(ctx context.Context, dealershipID int64, conversationID string, msg pkg.ConversationMessage) error
}

// recordTurns persists the customer message and the reply so the next demo
// invocation continues the conversation.
func recordTurns(ctx context.Context, history engine.HistoryProvider, req pkg.SalesRequest, resp *pkg.SalesResponse) {
	appender, ok := history.(historyAppender)
	if !ok {
		return
	}
	turns := []pkg.ConversationMessage{
		{Role: pkg.RoleCustomer, Content: req.CustomerMessage},
		{Role: pkg.RoleAgent, Content: resp.Reply},
	}
	for _, turn := range turns {
		if err := appender.AppendMessage(ctx, req.DealershipID, req.ConversationID, turn); err != nil {
			logger.Warn().Err(err).Msg("recording conversation turn failed")
			return
		}
	}
}
