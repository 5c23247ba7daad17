package cli

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"pdd-quiz-service/internal/app"
	"pdd-quiz-service/internal/bank"
	"pdd-quiz-service/internal/config"
	"pdd-quiz-service/internal/domain"
	"pdd-quiz-service/internal/infra/file"
	"pdd-quiz-service/internal/infra/memory"
	pgloader "pdd-quiz-service/internal/infra/postgres"
	redisstore "pdd-quiz-service/internal/infra/redis"
	transport "pdd-quiz-service/internal/transport/http"
	"pdd-quiz-service/internal/transport/telegram"
)

// NewStartCmd builds the CLI subcommand to start the bot and the HTTP server.
func NewStartCmd(configPath, port, token *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the quiz bot and server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configPath, *port, *token)
		},
	}
}

func runServer(ctx context.Context, configPath, portFlag, tokenFlag string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	finalPort := portFlag
	if finalPort == "" {
		finalPort = cfg.Server.Port
	}
	if finalPort == "" {
		finalPort = "8080"
	}
	botToken := tokenFlag
	if botToken == "" {
		botToken = cfg.Telegram.Token
	}

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()
	}

	questions, err := loadBank(ctx, cfg, redisClient)
	if err != nil {
		return err
	}
	log.Printf("loaded %d tickets (%d questions)", len(questions.TicketNumbers()), questions.Size())

	var store app.SessionRepository
	if redisClient != nil {
		store = redisstore.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 30*time.Minute))
	} else {
		store = memory.NewSessionStore()
	}
	modes := domain.DefaultModes().WithTargets(cfg.ModeTargets())
	service := app.NewQuizService(store, questions, app.WithModes(modes))

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if botToken != "" {
		api, err := tgbotapi.NewBotAPI(botToken)
		if err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		api.Debug = cfg.Telegram.Debug

		var images telegram.ImageSource
		if cfg.Bank.ImagesDir != "" {
			images = memory.NewImageCache(file.NewImageLoader(cfg.Bank.ImagesDir), config.TTLDuration(cfg.Media.TTL, time.Hour))
		}
		bot := telegram.NewBot(api, service, images, cfg.Telegram.PollTimeout)
		go func() {
			if err := bot.Run(ctx); err != nil {
				log.Printf("telegram bot stopped: %v", err)
			}
		}()
	} else {
		log.Printf("telegram token not configured, serving websocket clients only")
	}

	wsHandler := transport.NewWSHandler(service)

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
		log.Printf("starting quiz service on :%s", finalPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("failed to start server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// loadBank picks the ticket source: Postgres when configured (optionally behind the Redis
// cache), otherwise the JSON file. A bank that cannot be loaded stops startup.
func loadBank(ctx context.Context, cfg config.Config, redisClient *redis.Client) (*bank.Bank, error) {
	var loader bank.Loader
	switch {
	case cfg.Postgres.URL != "":
		if err := runMigrationsWithConfig(ctx, cfg); err != nil {
			return nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, err
		}
		defer pool.Close()
		loader = pgloader.NewTicketLoader(pool)
		if redisClient != nil {
			loader = redisstore.NewTicketCache(redisClient, loader, config.TTLDuration(cfg.Redis.BankTTL, time.Hour))
		}
	case cfg.Bank.File != "":
		loader = file.NewTicketLoader(cfg.Bank.File)
	default:
		return nil, fmt.Errorf("%w: neither postgres.url nor bank.file configured", domain.ErrDataLoad)
	}
	return bank.Load(ctx, loader)
}
