package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/TobiTenno/hekbot/config"
	"github.com/TobiTenno/hekbot/internal/catalog"
	"github.com/TobiTenno/hekbot/internal/command"
	"github.com/TobiTenno/hekbot/internal/playback"
	"github.com/TobiTenno/hekbot/pkg/dependency"
	"github.com/TobiTenno/hekbot/pkg/logger"
	"github.com/TobiTenno/hekbot/pkg/metrics"

	"github.com/bwmarrin/discordgo"
	"golang.org/x/time/rate"
)

// Application wires the bot's components together.
type Application struct {
	config   *config.Config
	logger   *logger.Logger
	metrics  *metrics.Metrics
	discord  *discordgo.Session
	catalog  *catalog.Catalog
	router   *command.Router
	queue    *playback.Queue
	limiters *userLimiters
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load configuration:", err)
		os.Exit(1)
	}

	appLogger, err := logger.New(logger.Config{
		Level:      cfg.LogLevel,
		OutputFile: cfg.LogFile,
		MaxSizeMB:  100,
		MaxBackups: 5,
		MaxAgeDays: 30,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	logger.SetDefault(appLogger)

	app := &Application{
		config:  cfg,
		logger:  appLogger,
		metrics: metrics.New(),
	}

	if err := app.initialize(); err != nil {
		appLogger.Fatal("failed to initialize application", err)
	}
	if err := app.start(); err != nil {
		appLogger.Fatal("failed to start application", err)
	}

	app.waitForShutdown()
	app.shutdown()
}

// initialize validates the environment, builds the catalog and wires the
// Discord session, router and playback queue. A missing ffmpeg or an
// unreadable sound folder is fatal: the bot must not serve requests it
// cannot play.
func (app *Application) initialize() error {
	if err := dependency.ValidateEnvironment(context.Background()); err != nil {
		return fmt.Errorf("validating environment: %w", err)
	}

	cat, err := catalog.Build(app.config.SoundFolder)
	if err != nil {
		return fmt.Errorf("building sound catalog: %w", err)
	}
	app.catalog = cat
	app.logger.Info("sound catalog built", logger.Fields{
		"folder":      app.config.SoundFolder,
		"collections": cat.Len(),
	})

	session, err := discordgo.New("Bot " + app.config.Token)
	if err != nil {
		return fmt.Errorf("creating Discord session: %w", err)
	}
	app.discord = session
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsMessageContent

	app.router = command.NewRouter(app.config.Prefix, cat)
	app.queue = playback.NewQueue(playback.NewDCADriver(session), playback.Options{
		MaxPending:      app.config.MaxQueueSize,
		DisconnectDelay: app.config.DisconnectDelay,
		Logger:          app.logger.WithComponent("playback"),
		Metrics:         app.metrics,
	})
	app.limiters = newUserLimiters(rate.Limit(app.config.CommandRate), app.config.CommandBurst)

	session.AddHandler(app.onReady)
	session.AddHandler(app.onGuildCreate)
	session.AddHandler(app.onMessageCreate)
	return nil
}

func (app *Application) start() error {
	if err := app.discord.Open(); err != nil {
		return fmt.Errorf("opening Discord session: %w", err)
	}
	app.logger.Info("bot is up", logger.Fields{
		"prefix": app.config.Prefix,
		"token":  app.config.RedactedToken(),
	})
	return nil
}

func (app *Application) waitForShutdown() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	sig := <-stop
	app.logger.Info("shutdown signal received", logger.Fields{"signal": sig.String()})
}

func (app *Application) shutdown() {
	app.queue.Shutdown()
	if err := app.discord.Close(); err != nil {
		app.logger.Error("error closing Discord session", err)
	}

	counters, _ := app.metrics.Snapshot()
	app.logger.Info("bot exited", logger.Fields{
		"uptime":   app.metrics.Uptime().String(),
		"counters": counters,
	})
}
