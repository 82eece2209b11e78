package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"catalogstudio/internal/config"
	"catalogstudio/internal/crawler"
	"catalogstudio/internal/db"
	"catalogstudio/internal/embeddings"
	"catalogstudio/internal/gateway"
	"catalogstudio/internal/history"
	"catalogstudio/internal/logger"
	"catalogstudio/internal/model"
	"catalogstudio/internal/observability"
	"catalogstudio/internal/repository"
)

// go run ./cmd/catalog -mode=sellers -category="Shoes"
// go run ./cmd/catalog -mode=scrape -urls="https://www.amazon.com/dp/B001,https://www.amazon.com/dp/B002" -save
// go run ./cmd/catalog -mode=title -subcategory="Sneakers" -details='{"color":"white"}'
// go run ./cmd/catalog -mode=image -file=shoe.jpg -style=2 -attrs='{"background":"studio"}'
func main() {
	mode := flag.String("mode", "sheet", "sheet, golden, sellers, scrape, title, description, image, history or similar")
	category := flag.String("category", gateway.AllCategories, "category filter for sellers")
	urls := flag.String("urls", "", "comma separated product URLs to scrape")
	save := flag.Bool("save", false, "store scraped products in Postgres")
	subcategory := flag.String("subcategory", "", "subcategory for generation and history")
	details := flag.String("details", "{}", "product details as a JSON object")
	file := flag.String("file", "", "source image for -mode=image")
	style := flag.Int("style", 0, "style index for -mode=image")
	attrs := flag.String("attrs", "{}", "image attributes as a JSON object")
	query := flag.String("q", "", "search text for -mode=similar")
	brand := flag.String("brand", "", "brand filter for -mode=similar")
	metrics := flag.Bool("metrics", false, "expose Prometheus metrics while running")
	flag.Parse()

	cfg := config.Load()

	log, err := logger.New(cfg.LogDev, cfg.LogLevel, cfg.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if *metrics {
		observability.Start(cfg.MetricsPort)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	gw := gateway.New(gateway.Config{
		APIURL:            cfg.APIURL,
		AIAPIURL:          cfg.AIAPIURL,
		Timeout:           cfg.HTTPTimeout,
		RequestsPerSecond: cfg.GatewayRPS,
	}, gateway.WithLogger(log))

	app := &app{cfg: cfg, gw: gw, log: log}

	switch *mode {
	case "sheet":
		err = app.sheet(ctx, false)
	case "golden":
		err = app.sheet(ctx, true)
	case "sellers":
		err = app.sellers(ctx, *category)
	case "scrape":
		err = app.scrape(ctx, splitList(*urls), *save)
	case "title", "description":
		err = app.generateText(ctx, *mode, *subcategory, *details)
	case "image":
		err = app.generateImage(ctx, *file, *style, *attrs, *subcategory)
	case "history":
		err = app.history(ctx, *subcategory)
	case "similar":
		err = app.similar(ctx, *query, *brand)
	default:
		err = fmt.Errorf("unknown mode %q", *mode)
	}
	if err != nil {
		// Backend failures carry a message meant for the user.
		if gateway.IsRemote(err) {
			log.Error("backend call failed", zap.String("mode", *mode), zap.Error(err))
			fmt.Fprintln(os.Stderr, err)
			_ = log.Sync()
			os.Exit(1)
		}
		log.Fatal("catalog command failed", zap.String("mode", *mode), zap.Error(err))
	}
}

type app struct {
	cfg *config.Config
	gw  *gateway.Gateway
	log *zap.Logger
}

func (a *app) sheet(ctx context.Context, golden bool) error {
	fetch := a.gw.FetchSheetData
	if golden {
		fetch = a.gw.FetchGoldenSheetData
	}
	env, err := fetch(ctx)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"totalRows": env.TotalRows(),
		"fromCache": env.FromCache(),
		"headers":   env.Headers(),
		"rows":      env.Rows(),
	})
}

func (a *app) sellers(ctx context.Context, category string) error {
	listings, err := a.gw.FetchSellerData(ctx, category)
	if err != nil {
		return err
	}
	return printJSON(listings)
}

func (a *app) scrape(ctx context.Context, urls []string, save bool) error {
	if len(urls) == 0 {
		return fmt.Errorf("-urls is required")
	}

	var repo *repository.ProductRepository
	if save {
		conn, err := db.New(a.cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect database: %w", err)
		}
		defer conn.Close()
		repo = &repository.ProductRepository{DB: conn}
	}

	var products []model.ScrapedProduct
	failed := crawler.ScrapeBatch(ctx, a.gw, urls, a.cfg.WorkerCount, a.log, func(url string, p model.ScrapedProduct) {
		products = append(products, p)
		if repo == nil {
			return
		}
		if err := repo.Save(ctx, p, crawler.ProductToText(p)); err != nil {
			a.log.Error("saving product failed", zap.String("url", url), zap.Error(err))
		}
	})

	a.log.Info("scrape finished", zap.Int("scraped", len(products)), zap.Int("failed", failed))
	return printJSON(products)
}

func (a *app) generateText(ctx context.Context, kind, subcategory, rawDetails string) error {
	var details map[string]any
	if err := json.Unmarshal([]byte(rawDetails), &details); err != nil {
		return fmt.Errorf("parse -details: %w", err)
	}

	generate := a.gw.GenerateProductTitle
	if kind == gateway.GenerateDescription {
		generate = a.gw.GenerateProductDescription
	}
	text, err := generate(ctx, subcategory, details)
	if err != nil {
		return err
	}

	a.record(ctx, history.Entry{Kind: kind, Subcategory: subcategory, Value: text, Details: details})
	fmt.Println(text)
	return nil
}

func (a *app) generateImage(ctx context.Context, path string, style int, rawAttrs, subcategory string) error {
	if path == "" {
		return fmt.Errorf("-file is required")
	}
	var attributes map[string]any
	if err := json.Unmarshal([]byte(rawAttrs), &attributes); err != nil {
		return fmt.Errorf("parse -attrs: %w", err)
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	u, err := a.gw.GenerateAIImage(ctx, gateway.ImageFile{Name: filepath.Base(path), Data: f}, style, attributes)
	if err != nil {
		return err
	}

	a.record(ctx, history.Entry{
		Kind:        "image",
		Subcategory: subcategory,
		Value:       u,
		Details:     map[string]any{"style_index": style, "attributes": attributes},
	})
	fmt.Println(u)
	return nil
}

func (a *app) history(ctx context.Context, subcategory string) error {
	store, closeFn, err := a.historyStore()
	if err != nil {
		return err
	}
	defer closeFn()

	entries, err := store.List(ctx, subcategory, 0)
	if err != nil {
		return err
	}
	return printJSON(entries)
}

// record appends to the generation history when Redis is configured. A
// failure here never fails the generation itself.
func (a *app) record(ctx context.Context, e history.Entry) {
	if a.cfg.RedisURL == "" {
		return
	}
	store, closeFn, err := a.historyStore()
	if err != nil {
		a.log.Warn("history unavailable", zap.Error(err))
		return
	}
	defer closeFn()
	if err := store.Append(ctx, e); err != nil {
		a.log.Warn("recording history failed", zap.Error(err))
	}
}

func (a *app) historyStore() (*history.Store, func() error, error) {
	if a.cfg.RedisURL == "" {
		return nil, nil, fmt.Errorf("REDIS_URL is not set")
	}
	client := redis.NewClient(&redis.Options{Addr: a.cfg.RedisURL})
	return &history.Store{Client: client}, client.Close, nil
}

func (a *app) similar(ctx context.Context, query, brand string) error {
	if query == "" {
		return fmt.Errorf("-q is required")
	}
	pool, err := db.NewPool(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	embedding, err := embeddings.NewOpenAIEmbedder(a.cfg.OpenAIKey).Embed(ctx, query)
	if err != nil {
		return fmt.Errorf("embed query: %w", err)
	}

	repo := &repository.VectorRepository{DB: pool}
	results, err := repo.SearchSimilar(ctx, embedding, 0.3, 10, brand)
	if err != nil {
		return err
	}
	return printJSON(results)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
