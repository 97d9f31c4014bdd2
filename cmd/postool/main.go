package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ghufronakbar/hasmart-pos/internal/backend"
	"github.com/ghufronakbar/hasmart-pos/internal/catalog"
	"github.com/ghufronakbar/hasmart-pos/internal/config"
	"github.com/ghufronakbar/hasmart-pos/internal/document"
	"github.com/ghufronakbar/hasmart-pos/internal/obs"
	"github.com/ghufronakbar/hasmart-pos/internal/pricing"
	"github.com/ghufronakbar/hasmart-pos/internal/resilience"
)

// postool recomputes the totals of a document fixture and optionally replays
// it against a backend. Support engineers use it to cross-check what a
// terminal calculated for a given payload. It can also resolve an item by
// code through the same client, going through the Redis item cache when one
// is configured.
func main() {
	var (
		file   = flag.String("file", "", "path to a document payload JSON file")
		kind   = flag.String("kind", "sale", "document kind (purchase|purchase-return|sale|sell|sell-return|sales-return)")
		submit = flag.Bool("submit", false, "submit the document to the configured backend")
		lookup = flag.String("lookup", "", "look up an item by code instead of processing a file")
	)
	flag.Parse()

	if *file == "" && *lookup == "" {
		fmt.Fprintln(os.Stderr, "usage: postool -file doc.json [-kind sale] [-submit] | postool -lookup CODE")
		os.Exit(2)
	}
	docKind := document.Kind(*kind)
	if !docKind.Valid() {
		fmt.Fprintf(os.Stderr, "unknown document kind: %s\n", *kind)
		os.Exit(2)
	}

	cfg := config.MustLoad()
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("component", "postool").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.TracingEnabled {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:   "hasmart-postool",
			Endpoint:      cfg.TracingEndpoint,
			SamplingRatio: cfg.TracingSampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("init tracing")
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	if *lookup != "" {
		client := newBackendClient(cfg, logger)
		item, err := newCatalogLookup(cfg, client, logger).ItemByCode(ctx, *lookup)
		if err != nil {
			logger.Fatal().Err(err).Str("code", *lookup).Msg("item lookup")
		}
		printItem(item)
		return
	}

	doc, err := loadDocument(*file, docKind)
	if err != nil {
		logger.Fatal().Err(err).Msg("load document")
	}
	if docKind.Config().Taxable && doc.Header.TaxPct.IsZero() {
		doc.Header.TaxPct = cfg.DefaultTaxPct
	}

	summary := doc.Summary()
	printSummary(docKind, summary)

	if err := doc.Validate(); err != nil {
		logger.Warn().Err(err).Msg("document fails local validation")
		if *submit {
			os.Exit(1)
		}
		return
	}

	if *submit {
		client := newBackendClient(cfg, logger)
		id, err := client.CreateDocument(ctx, docKind, doc.Payload())
		if err != nil {
			logger.Fatal().Err(err).Msg("submit document")
		}
		logger.Info().Int64("document_id", id).Msg("document created")
	}
}

func loadDocument(path string, kind document.Kind) (*document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var payload document.Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	doc := document.New(kind)
	doc.Header = payload.Header
	for _, line := range payload.Lines {
		doc.Lines = append(doc.Lines, document.LineView{Line: line})
	}
	// Fixtures bypass the origin lookup, same as edit mode.
	doc.EditMode = true
	return doc, nil
}

func printSummary(kind document.Kind, s pricing.Summary) {
	fmt.Printf("kind:           %s\n", kind)
	fmt.Printf("subtotal:       %s\n", pricing.RoundMoney(s.SubTotal))
	fmt.Printf("discount total: %s\n", pricing.RoundMoney(s.DiscountTotal))
	fmt.Printf("taxable amount: %s\n", pricing.RoundMoney(s.TaxableAmount))
	fmt.Printf("tax amount:     %s\n", pricing.RoundMoney(s.TaxAmount))
	fmt.Printf("grand total:    %s\n", pricing.RoundMoney(s.GrandTotal))
}

func printItem(item catalog.Item) {
	fmt.Printf("item: %s (%s)\n", item.Name, item.Code)
	for _, v := range item.Variants {
		marker := " "
		if v.IsBaseUnit {
			marker = "*"
		}
		fmt.Printf("  %s %-8s buy %s  sell %s\n", marker, v.Unit, pricing.RoundMoney(v.BuyPrice), pricing.RoundMoney(v.SellPrice))
	}
}

// newCatalogLookup wraps the backend lookup in the Redis cache when a Redis
// URL is configured, and falls back to direct lookups otherwise.
func newCatalogLookup(cfg *config.Config, client *backend.Client, logger zerolog.Logger) catalog.Lookup {
	if cfg.RedisURL == "" {
		return client
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid redis url, item cache disabled")
		return client
	}
	return catalog.CachedLookup{
		Source: client,
		Cache:  catalog.NewCache(redis.NewClient(opts), cfg.CatalogCacheTTL),
	}
}

func newBackendClient(cfg *config.Config, logger zerolog.Logger) *backend.Client {
	breaker := resilience.NewBreaker(cfg.CircuitMinRequests, cfg.CircuitFailureRate, cfg.CircuitOpenFor).
		WithTarget("hasmart-api").
		WithLogger(logger)
	wrapped := &resilience.HTTPClient{
		Client:      backend.DefaultHTTPClient(),
		Breaker:     breaker,
		BaseBackoff: cfg.RetryBase,
		MaxAttempts: cfg.RetryMaxAttempts,
		Jitter:      cfg.RetryJitterPercent,
		Timeout:     cfg.BackendTimeout,
		Target:      "hasmart-api",
		Logger:      &logger,
	}
	return backend.NewClient(cfg.BackendBaseURL, cfg.BackendAPIKey, wrapped, logger)
}
