package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	echoapi "github.com/veylabs/rolegate/api/echo"
	"github.com/veylabs/rolegate/config"
	"github.com/veylabs/rolegate/internal/discord"
	"github.com/veylabs/rolegate/internal/tiktok"
	"github.com/veylabs/rolegate/mongodb"
	"github.com/veylabs/rolegate/services"
	"github.com/veylabs/rolegate/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg)
	log.Info().
		Str("tiktok_username", cfg.TikTokUsername).
		Strs("gift_names", cfg.GiftNameList()).
		Dur("inactivity_window", cfg.InactivityWindow).
		Dur("sweep_interval", cfg.SweepInterval).
		Msg("Starting rolegate")

	tp, err := tracing.InitTracerProvider(cfg.OtelServiceName)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize TracerProvider")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := mongodb.Init(ctx, cfg.MongoURI, cfg.MongoDBName); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to MongoDB")
	}
	db := mongodb.GetDB()

	linkRepo, err := mongodb.NewLinkRepository(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize link repository")
	}
	timerRepo := mongodb.NewTimerRepository(db)

	session, err := discord.NewSession(cfg.DiscordToken)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Discord session")
	}
	roles := discord.NewRoleManager(session, cfg.DiscordGuildID, cfg.DiscordRoleID)

	service := services.NewEntitlementService(linkRepo, timerRepo, roles, cfg.GiftNameList(), cfg.InactivityWindow)

	commands := discord.NewCommandHandler(service, cfg.DiscordGuildID, cfg.VerifyCooldown)
	commands.Register(session)
	discord.RegisterReadyProbe(session, cfg.DiscordGuildID, cfg.DiscordRoleID)

	if err := session.Open(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Discord")
	}

	go func() {
		if err := tiktok.NewSource(cfg.TikTokUsername, service).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Msg("TikTok event source stopped")
		}
	}()

	sweeper := services.NewSweeper(service, cfg.SweepInterval)
	go sweeper.Run(ctx)

	e := echo.New()
	e.HideBanner = true
	echoapi.NewHealthAPI().RegisterRoutes(e)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("HTTP server listening")
		if err := e.Start(":" + cfg.HTTPPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown failed")
	}
	if err := session.Close(); err != nil {
		log.Error().Err(err).Msg("Discord session close failed")
	}
	commands.Stop()
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("TracerProvider shutdown failed")
	}
	mongodb.Close(shutdownCtx)
}

func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
		log.Warn().Str("configured_log_level", cfg.LogLevel).Msg("Invalid LOG_LEVEL, defaulting to info")
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
