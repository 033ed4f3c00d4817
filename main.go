package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/kryptonlabs/krypton-bot/kryptonbot"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/auth"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/commands"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/commands/admin"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/components"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/database"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/database/repositories"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/economy"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/economy/boost"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/economy/reward"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/handlers"
	"github.com/kryptonlabs/krypton-bot/kryptonbot/logger"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	customHandler := logger.NewHandler()
	slog.SetDefault(slog.New(customHandler))

	slog.Info("Starting Krypton Discord Bot",
		slog.String("version", version),
		slog.String("commit", commit))

	shouldSyncCommands := flag.Bool("sync-commands", false, "Whether to sync commands to discord")
	path := flag.String("config", "config.toml", "path to config")
	flag.Parse()

	cfg, err := kryptonbot.LoadConfig(*path)
	if err != nil {
		slog.Error("Failed to load configuration", slog.Any("error", err))
		os.Exit(-1)
	}
	slog.Info("Configuration loaded successfully")

	slog.Info("Initializing database connection...")
	dbStartTime := time.Now()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	dbConfig := database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	}

	db, err := database.New(ctx, dbConfig)
	if err != nil {
		slog.Error("Database connection failed",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}

	slog.Info("Database connected successfully",
		slog.String("database", cfg.DB.Database),
		slog.Duration("took", time.Since(dbStartTime)))

	slog.Info("Initializing database schema...")
	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Failed to initialize database schema",
			slog.String("error", err.Error()),
			slog.Duration("attempted_for", time.Since(dbStartTime)))
		os.Exit(-1)
	}
	slog.Info("Database schema initialized successfully")

	defer db.Close()

	b := kryptonbot.New(*cfg, version, commit)
	b.DB = db

	b.UserRepository = repositories.NewUserRepository(db.BunDB())
	b.TrustedUserRepository = repositories.NewTrustedUserRepository(db.BunDB())
	b.SettingsRepository = repositories.NewSettingsRepository(db.BunDB())
	b.AuditLogRepository = repositories.NewAuditLogRepository(db.BunDB())

	b.Engine = economy.NewEngine(b.UserRepository, b.SettingsRepository, b.AuditLogRepository)
	b.Boost = boost.NewScheduler(b.SettingsRepository, b.AuditLogRepository)
	b.Auth = auth.NewResolver(cfg.Bot.OwnerID, b.TrustedUserRepository, b.AuditLogRepository)

	b.Rewards, err = reward.NewTrigger(b.UserRepository, b.SettingsRepository, b.AuditLogRepository, b.Boost)
	if err != nil {
		slog.Error("Failed to initialize reward trigger", slog.Any("error", err))
		os.Exit(-1)
	}

	if err := b.SeedSettings(ctx); err != nil {
		slog.Error("Failed to seed settings", slog.Any("error", err))
		os.Exit(-1)
	}

	// Re-adopt any boost that was running before the last restart so its
	// expiry timer is armed again.
	if state := b.Boost.Current(ctx); state.Active && state.EndsAt != nil {
		slog.Info("Resumed active coin boost",
			slog.Float64("multiplier", state.Multiplier),
			slog.Time("ends_at", *state.EndsAt))
	}
	defer b.Boost.Stop()

	h := handler.New()

	// User commands
	h.Command("/coins", handlers.WrapWithLogging("coins", commands.CoinsHandler(b)))
	h.Command("/daily", handlers.WrapWithLogging("daily", commands.DailyHandler(b)))
	h.Command("/top", handlers.WrapWithLogging("top", commands.TopHandler(b)))
	h.Command("/profile", handlers.WrapWithLogging("profile", commands.ProfileHandler(b)))
	h.Command("/shop", handlers.WrapWithLogging("shop", commands.ShopHandler(b)))
	h.Command("/buykey", handlers.WrapWithLogging("buykey", commands.BuyKeyHandler(b)))
	h.Command("/buyrole", handlers.WrapWithLogging("buyrole", commands.BuyRoleHandler(b)))
	h.Command("/key", handlers.WrapWithLogging("key", commands.KeyHandler(b)))
	h.Command("/booststatus", handlers.WrapWithLogging("booststatus", commands.BoostStatusHandler(b)))
	h.Command("/info", handlers.WrapWithLogging("info", commands.InfoHandler(b)))
	h.Command("/help", handlers.WrapWithLogging("help", commands.HelpHandler(b)))

	// Admin commands
	h.Command("/addcoins", handlers.WrapWithLogging("addcoins", admin.AddCoinsHandler(b)))
	h.Command("/removecoins", handlers.WrapWithLogging("removecoins", admin.RemoveCoinsHandler(b)))
	h.Command("/setcoins", handlers.WrapWithLogging("setcoins", admin.SetCoinsHandler(b)))
	h.Command("/massaddcoins", handlers.WrapWithLogging("massaddcoins", admin.MassAddCoinsHandler(b)))
	h.Command("/massremovecoins", handlers.WrapWithLogging("massremovecoins", admin.MassRemoveCoinsHandler(b)))
	h.Command("/clearcoins", handlers.WrapWithLogging("clearcoins", admin.ClearCoinsHandler(b)))
	h.Component("/clearcoins/", handlers.WrapComponentWithLogging("clearcoins", components.ClearCoinsComponentHandler(b)))
	h.Command("/trust", handlers.WrapWithLogging("trust", admin.TrustHandler(b)))
	h.Command("/boost", handlers.WrapWithLogging("boost", admin.BoostHandler(b)))
	h.Command("/setspamtime", handlers.WrapWithLogging("setspamtime", admin.SetSpamTimeHandler(b)))
	h.Command("/setmessagesneeded", handlers.WrapWithLogging("setmessagesneeded", admin.SetMessagesNeededHandler(b)))
	h.Command("/ban", handlers.WrapWithLogging("ban", admin.BanHandler(b)))
	h.Command("/unban", handlers.WrapWithLogging("unban", admin.UnbanHandler(b)))
	h.Command("/logs", handlers.WrapWithLogging("logs", admin.LogsHandler(b)))
	h.Command("/restart", handlers.WrapWithLogging("restart", admin.RestartHandler(b)))

	if err = b.SetupBot(h, bot.NewListenerFunc(b.OnReady), handlers.MessageHandler(b)); err != nil {
		slog.Error("Failed to setup bot",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)),
			slog.String("component", "bot_setup"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		b.Client.Close(ctx)
	}()

	if *shouldSyncCommands {
		slog.Info("Syncing commands",
			slog.String("type", "sys"),
			slog.Any("guild_ids", cfg.Bot.DevGuilds),
		)
		if err = handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands",
				slog.String("type", "sys"),
				slog.Any("error", err),
				slog.String("error_details", fmt.Sprintf("%+v", err)),
				slog.String("component", "command_sync"),
				slog.String("status", "failed"),
			)
		}
	}

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = b.Client.OpenGateway(ctx); err != nil {
		slog.Error("Failed to open gateway",
			slog.String("type", "sys"),
			slog.Any("error", err),
			slog.String("error_details", fmt.Sprintf("%+v", err)),
			slog.String("component", "gateway"),
			slog.String("status", "failed"),
		)
		os.Exit(-1)
	}

	slog.Info("Bot is running. Press CTRL-C to exit.")
	s := make(chan os.Signal, 1)
	signal.Notify(s, syscall.SIGINT, syscall.SIGTERM)
	<-s
	slog.Info("Shutting down bot...")
}
