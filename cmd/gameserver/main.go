// Package main provides the game server binary: the session coordinator
// behind a websocket listener.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/Cooliokid956/sm64js-mmo-server/internal/config"
	"github.com/Cooliokid956/sm64js-mmo-server/internal/coordinator"
	"github.com/Cooliokid956/sm64js-mmo-server/internal/game/chat"
	"github.com/Cooliokid956/sm64js-mmo-server/internal/game/client"
	"github.com/Cooliokid956/sm64js-mmo-server/internal/game/room"
	"github.com/Cooliokid956/sm64js-mmo-server/internal/observability"
	"github.com/Cooliokid956/sm64js-mmo-server/internal/server"
	"github.com/Cooliokid956/sm64js-mmo-server/internal/storage/postgres"
	"github.com/Cooliokid956/sm64js-mmo-server/internal/transport/ws"
)

// Chat log retention: entries older than a day are deleted, once a day.
const (
	chatLogPruneInterval = 24 * time.Hour
	chatLogRetention     = 24 * time.Hour
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	levels, err := room.LoadLevelsFromFile(cfg.Game.LevelsFile)
	if err != nil {
		logger.Fatal("loading level catalog", zap.Error(err))
	}

	clients := client.NewRegistry()
	rooms, err := room.NewStaticDirectory(levels, clients)
	if err != nil {
		logger.Fatal("building room directory", zap.Error(err))
	}
	logger.Info("level catalog loaded", zap.Int("levels", rooms.Len()))

	opts := []coordinator.Option{}
	var (
		pool   *postgres.Pool
		pruner *postgres.Pruner
	)
	if cfg.Chat.LogEnabled {
		pool, err = postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		repo := postgres.NewChatLogRepository(pool.Raw())
		opts = append(opts, coordinator.WithRecorder(repo))
		pruner = postgres.NewPruner(repo, chatLogPruneInterval, chatLogRetention, logger)
		logger.Info("chat logging enabled")
	}

	policy := chat.NewPolicy(cfg.Chat.SpamInterval)
	coord := coordinator.New(clients, rooms, policy, chat.DefaultCommandTable(), logger, opts...)

	handler := ws.NewHandler(coord, &ws.InsecureAuthenticator{}, cfg.Server, logger)
	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: handler.Mux(),
	}

	lifecycle := server.NewLifecycle(logger)
	lifecycle.Add("coordinator", &server.FuncService{
		StartFn: func() error {
			coord.Start()
			return nil
		},
		StopFn: coord.Stop,
	})
	if pruner != nil {
		lifecycle.Add("chat-log-pruner", pruner)
	}
	lifecycle.Add("http", &server.FuncService{
		StartFn: func() error {
			logger.Info("listening", zap.String("addr", cfg.Server.Addr()))
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		},
		StopFn: func() {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			_ = httpSrv.Shutdown(shutdownCtx)
		},
	})

	if err := lifecycle.Run(ctx); err != nil {
		logger.Fatal("lifecycle failed", zap.Error(err))
	}
}
