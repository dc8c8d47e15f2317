package cli

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"emoji-quiz-service/internal/app"
	"emoji-quiz-service/internal/config"
	"emoji-quiz-service/internal/domain"
	"emoji-quiz-service/internal/infra/docstore"
	"emoji-quiz-service/internal/infra/memory"
	pgstore "emoji-quiz-service/internal/infra/postgres"
	redisinfra "emoji-quiz-service/internal/infra/redis"
	transport "emoji-quiz-service/internal/transport/http"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the game server",
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

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 30*time.Minute)

	var documents docstore.DocumentStore
	if cfg.Postgres.URL != "" {
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return err
		}
		documents = pgstore.NewDocumentStore(pool)
	} else {
		mem := memory.NewDocumentStore()
		if err := docstore.NewQuestionStore(mem).SeedQuestions(ctx, sampleQuestions()); err != nil {
			return err
		}
		documents = mem
	}

	profiles := docstore.NewProfileStore(documents)
	scores := docstore.NewScoreStore(documents)
	games := docstore.NewGameLogStore(documents)
	questionLoader := docstore.NewQuestionStore(documents)

	questionTTL := config.TTLDuration(cfg.Questions.TTL, 10*time.Minute)
	var questions app.QuestionRepository
	if redisClient != nil {
		questions = redisinfra.NewQuestionCache(redisClient, questionLoader, questionTTL)
	} else {
		questions = memory.NewQuestionCache(questionLoader, questionTTL)
	}

	var sessions app.SessionRepository
	if redisClient != nil {
		sessions = redisinfra.NewSessionStore(redisClient, redisTTL)
	} else {
		sessions = memory.NewSessionStore()
	}

	game := app.NewGameService(questions, profiles, scores, games, sessions)
	wheel := app.NewWheelService(profiles, nil,
		app.WithSettleDelay(config.TTLDuration(cfg.Wheel.Settle, 2*time.Second)))

	var ranker transport.Ranker = app.NewLeaderboard(profiles, scores, nil)
	if redisClient != nil {
		ranker = redisinfra.NewLeaderboardCache(redisClient, ranker,
			config.TTLDuration(cfg.Leaderboard.TTL, 30*time.Second))
	}

	wsHandler := transport.NewWSHandler(game, wheel, ranker)

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
		log.Printf("starting emoji quiz service on :%s", finalPort)
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

// sampleQuestions provides a minimal catalog for running without Postgres;
// production deployments load real pools through the document store.
func sampleQuestions() []domain.Question {
	return []domain.Question{
		{ID: "an-1", Category: "animals", Prompt: "🐘", Answer: "Elephant"},
		{ID: "an-2", Category: "animals", Prompt: "🦒", Answer: "Giraffe"},
		{ID: "an-3", Category: "animals", Prompt: "🐧", Answer: "Penguin"},
		{ID: "an-4", Category: "animals", Prompt: "🦈", Answer: "Shark"},
		{ID: "an-5", Category: "animals", Prompt: "🦉", Answer: "Owl"},
		{ID: "an-6", Category: "animals", Prompt: "🐢", Answer: "Turtle"},
		{ID: "mv-1", Category: "movies", Prompt: "🦁👑", Answer: "The Lion King"},
		{ID: "mv-2", Category: "movies", Prompt: "🕷️🧑", Answer: "Spider-Man"},
		{ID: "mv-3", Category: "movies", Prompt: "🚢🧊", Answer: "Titanic"},
		{ID: "mv-4", Category: "movies", Prompt: "🐠🔍", Answer: "Finding Nemo"},
		{ID: "mv-5", Category: "movies", Prompt: "🧙⚡", Answer: "Harry Potter"},
		{ID: "fd-1", Category: "food", Prompt: "🍕", Answer: "Pizza"},
		{ID: "fd-2", Category: "food", Prompt: "🍣", Answer: "Sushi"},
		{ID: "fd-3", Category: "food", Prompt: "🌮", Answer: "Taco"},
		{ID: "fd-4", Category: "food", Prompt: "🥞", Answer: "Pancakes"},
		{ID: "fd-5", Category: "food", Prompt: "🍜", Answer: "Ramen"},
	}
}
