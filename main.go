package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"gildia/src-server/handler"
	"gildia/src-server/handler/ticket_handler"
	"gildia/src-server/metric"
	"gildia/src-server/model"
	"gildia/src-server/route"
	"gildia/src-server/utils"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/uptrace/bun"
)

func init() {
	if err := godotenv.Load(); err != nil {
		slog.Info(err.Error())
	}

	level := slog.LevelDebug
	if raw := os.Getenv("LOG_LEVEL"); raw != "" {
		if err := level.UnmarshalText([]byte(raw)); err != nil {
			level = slog.LevelDebug
		}
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.RFC1123Z,
		}),
	))
}

func main() {
	rootCmd := &cobra.Command{
		Use:           "gildia",
		Short:         "Community Discord bot: verification, welcome, admin panel and tickets",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run()
		},
	}
	rootCmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Create the database tables and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()
			slog.Info("database schema is up to date")
			return nil
		},
	})

	if err := rootCmd.Execute(); err != nil {
		slog.Error("gildia stopped", "error", err)
		os.Exit(1)
	}
}

// openStore loads the config and opens the database with the schema in
// place.
func openStore() (*utils.Config, *bun.DB, error) {
	cfg, err := utils.NewConfig(utils.NewViper())
	if err != nil {
		return nil, nil, fmt.Errorf("can't load config: %w", err)
	}
	db, err := utils.OpenDB(cfg.GetDatabaseURL())
	if err != nil {
		return nil, nil, fmt.Errorf("can't open database: %w", err)
	}
	if err := model.CreateSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("can't create database schema: %w", err)
	}
	return cfg, db, nil
}

func run() error {
	cfg, db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	dg, err := discordgo.New("Bot " + cfg.GetDiscordAppToken())
	if err != nil {
		return fmt.Errorf("can't create discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers

	// There are 2 important things (and others) inside the AppState:
	// - appCmdInfo: a map of all slash commands
	// - appCmdHandler: a map of all interaction handlers
	as := utils.NewAppState(cfg, db, utils.NewDiscord(dg))

	// injecting interaction handlers into appCmdInfo, appCmdHandler in AppState
	handler.Ping(as)
	handler.Verify(as)
	handler.Welcome(as)
	handler.AdminPanel(as)
	ticket_handler.Init(as)

	// tell discordgo how to route gateway events (w/ appCmdHandler)
	dg.AddHandler(func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		as.DispatchInteraction(i)
	})
	dg.AddHandler(func(s *discordgo.Session, m *discordgo.GuildMemberAdd) {
		as.DispatchMemberJoin(m)
	})
	dg.AddHandler(func(s *discordgo.Session, c *discordgo.ChannelDelete) {
		as.DispatchChannelDelete(c)
	})

	// open a connection to Discord
	if err := dg.Open(); err != nil {
		return fmt.Errorf("can't open discord connection: %w", err)
	}
	defer dg.Close()

	// tell Discord what commands we have (w/ appCmdInfo)
	if _, err := dg.ApplicationCommandBulkOverwrite(
		cfg.GetDiscordClientId(),
		cfg.GetDiscordGuildID(),
		func() []*discordgo.ApplicationCommand {
			var cmds []*discordgo.ApplicationCommand
			as.IterateAppCmdInfo(func(k string, v *discordgo.ApplicationCommand) {
				cmds = append(cmds, v)
			})
			return cmds
		}()); err != nil {
		slog.Error("can't create slash commands", "error", err.Error())
	}

	// cleanup appCmdInfo from memory
	as.NukeAppCmdInfo()
	runtime.GC()

	metric.Init(as, prometheus.DefaultRegisterer)

	// http server
	muxer := http.NewServeMux()
	route.Metrics(muxer, prometheus.DefaultGatherer)
	route.Health(muxer, as)
	server := &http.Server{
		Addr:              ":" + cfg.GetPort(),
		Handler:           muxer,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("cannot start HTTP server", "error", err)
			as.AppCloseSignalChan <- syscall.SIGTERM
		}
	}()

	slog.Info("number of guilds", "guilds", len(dg.State.Guilds))
	slog.Info("app is now running, press Ctrl+C to exit")

	signal.Notify(as.AppCloseSignalChan, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-as.AppCloseSignalChan
	slog.Info("Gracefully shutting down...")
	as.GracefulShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Warn("can't shut down HTTP server", "error", err)
	}
	return nil
}
