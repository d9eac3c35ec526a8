package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	tele "gopkg.in/telebot.v3"

	"github.com/pascalporedda/telegram-typefully-bot/internal/config"
	"github.com/pascalporedda/telegram-typefully-bot/internal/database"
	"github.com/pascalporedda/telegram-typefully-bot/internal/delivery/tgbot"
	"github.com/pascalporedda/telegram-typefully-bot/internal/middleware"
	"github.com/pascalporedda/telegram-typefully-bot/internal/repositories"
	"github.com/pascalporedda/telegram-typefully-bot/internal/services"
	"github.com/pascalporedda/telegram-typefully-bot/internal/session"
	"github.com/pascalporedda/telegram-typefully-bot/internal/vendors/typefully"
	"github.com/pascalporedda/telegram-typefully-bot/pkg/logging"
)

func main() {
	ctx := context.Background()
	if err := logging.SetupLogger(); err != nil {
		slog.ErrorContext(ctx, "Error setting up logger", "error", err)
		return
	}

	if err := godotenv.Load(); err != nil {
		slog.InfoContext(ctx, "No .env file loaded", "error", err)
	}

	appConfig, err := config.LoadConfig()
	if err != nil {
		slog.ErrorContext(ctx, "Error loading config", "error", err)
		return
	}

	profiles, err := config.LoadProfiles(appConfig.ProfilesPath)
	if err != nil {
		slog.ErrorContext(ctx, "Error loading instruction profiles", "error", err)
		return
	}

	db, err := database.NewDB(appConfig.DatabasePath)
	if err != nil {
		slog.ErrorContext(ctx, "Error initializing database", "error", err)
		return
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		slog.ErrorContext(ctx, "Error running database migrations", "error", err)
		return
	}

	if err := os.MkdirAll(appConfig.DownloadDir, 0755); err != nil {
		slog.ErrorContext(ctx, "Error creating download directory", "error", err)
		return
	}

	userRepo := repositories.NewUserRepo(db)
	usageRepo := repositories.NewUsageRepo(db)
	sessions := session.NewMemoryStore()
	typefullyClient := typefully.NewClient(appConfig.TypefullyBaseURL)

	pref := tele.Settings{
		Token:  appConfig.Token,
		Poller: &tele.LongPoller{Timeout: appConfig.PollTimeout},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		slog.ErrorContext(ctx, "Error creating bot", "error", err)
		return
	}

	accountService := services.NewAccountService(userRepo, usageRepo, typefullyClient, sessions)
	pipeline := services.NewVoicePipeline(
		&services.WhisperTranscriber{},
		services.NewChatComposer(profiles),
		typefullyClient,
		&tgbot.TelegramMediaFetcher{Bot: b},
		usageRepo,
		appConfig.FallbackOpenAIKey,
		appConfig.DownloadDir,
	)

	b.Use(func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			newCtx := context.WithValue(ctx, "tg_user_id", c.Sender().ID)
			newCtx = context.WithValue(newCtx, "request_id", uuid.New().String())
			c.Set("requestContext", newCtx)
			return next(c)
		}
	})
	b.Use(middleware.Logger())

	rateLimiter := &middleware.RateLimiter{}
	tgbot.RegisterHandlers(b, rateLimiter, accountService, pipeline, userRepo)

	if err := b.SetCommands(tgbot.Commands()); err != nil {
		slog.ErrorContext(ctx, "Error setting commands", "error", err)
		return
	}

	slog.InfoContext(ctx, "Starting Typefully drafting bot...")
	b.Start()
}
