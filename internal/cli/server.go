package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"quiz-session-engine/internal/config"
	"quiz-session-engine/internal/domain"
	"quiz-session-engine/internal/infra/httpapi"
	"quiz-session-engine/internal/infra/memory"
	pgloader "quiz-session-engine/internal/infra/postgres"
	redisinfra "quiz-session-engine/internal/infra/redis"
	"quiz-session-engine/internal/recorder"
	"quiz-session-engine/internal/session"
	"quiz-session-engine/internal/source"
	transport "quiz-session-engine/internal/transport/http"
)

// NewServeCmd builds the CLI subcommand to start the server.
func NewServeCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the quiz session server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if cfg.Postgres.URL != "" {
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return err
		}
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}

	var redisClient *goredis.Client
	if cfg.Redis.Addr != "" {
		redisClient = goredis.NewClient(&goredis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}

	apiTimeout := config.TTLDuration(cfg.API.Timeout, 10*time.Second)

	// Question pages come from the question API, a directly-owned Postgres
	// bank, or the built-in demo bank, in that order of preference.
	var loader source.PageLoader
	switch {
	case cfg.API.QuestionsURL != "":
		loader = httpapi.NewQuestionClient(cfg.API.QuestionsURL, apiTimeout)
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		loader = pgloader.NewPageLoader(pool)
	default:
		loader = memory.NewStaticPageLoader(demoBank())
	}
	if redisClient != nil {
		cacheTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)
		loader = redisinfra.NewPageCache(redisClient, loader, cacheTTL)
	}

	var records recorder.RecordService
	if cfg.API.RecordsURL != "" {
		records = httpapi.NewRecordClient(cfg.API.RecordsURL, apiTimeout)
	} else {
		records = memory.NewRecordStore()
	}

	coinDelta := buildCoinDelta(redisClient)

	sessionCfg := session.Config{
		Length:            cfg.Session.Length,
		PageSize:          cfg.Session.PageSize,
		PrefetchThreshold: cfg.Session.PrefetchThreshold,
		EntryCost:         cfg.Session.EntryCost,
	}
	factory := func(categoryID, userID string, notify func(domain.QuestionContext)) *session.Engine {
		return session.New(sessionCfg, categoryID, session.Deps{
			Loader:  loader,
			Records: records,
			Coins: func(ctx context.Context, amount int) error {
				return coinDelta(ctx, userID, amount)
			},
			Notify: notify,
		})
	}
	wsHandler := transport.NewWSHandler(factory)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/ws", wsHandler.ServeWS)

	server := &http.Server{
		Addr:         ":" + finalPort,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.Printf("starting quiz session engine on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		log.Println("shutting down server...")
	case <-ctx.Done():
		log.Println("context canceled, shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// buildCoinDelta picks the wallet backend. With Redis the balance is shared
// across instances; without it each process keeps demo balances seeded with
// enough coins to start playing.
func buildCoinDelta(redisClient *goredis.Client) func(ctx context.Context, userID string, amount int) error {
	if redisClient != nil {
		wallet := redisinfra.NewWallet(redisClient)
		return wallet.Delta
	}
	wallet := memory.NewWallet()
	return func(ctx context.Context, userID string, amount int) error {
		wallet.SeedIfAbsent(userID, 10)
		return wallet.Delta(ctx, userID, amount)
	}
}

// demoBank provides a small built-in question set; point the config at the
// question API or a Postgres bank for real content.
func demoBank() map[string][]domain.Question {
	return map[string][]domain.Question{
		"demo": {
			{
				ID:      "demo-1",
				Content: "What is 2 + 2?",
				Options: []string{"4", "3", "5", "22"},
				Category: domain.Category{
					ID:              "demo",
					ContentCategory: "math",
				},
				Explanation: "Two plus two equals four.",
			},
			{
				ID:      "demo-2",
				Content: "Which planet is closest to the sun?",
				Options: []string{"Mercury", "Venus", "Mars", "Earth"},
				Category: domain.Category{
					ID:              "demo",
					ContentCategory: "science",
				},
				Explanation: "Mercury orbits closest to the sun.",
			},
		},
	}
}
