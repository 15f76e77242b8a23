package serve

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaobohan917/douyin-toolbox/internal/api/handlers"
	"github.com/shaobohan917/douyin-toolbox/internal/api/routes"
	"github.com/shaobohan917/douyin-toolbox/internal/api/server"
	"github.com/shaobohan917/douyin-toolbox/internal/app/cache"
	"github.com/shaobohan917/douyin-toolbox/internal/app/douyin"
	"github.com/shaobohan917/douyin-toolbox/internal/app/download"
	"github.com/shaobohan917/douyin-toolbox/internal/app/model"
	"github.com/shaobohan917/douyin-toolbox/internal/app/store"
	"github.com/shaobohan917/douyin-toolbox/internal/app/stt"
	"github.com/shaobohan917/douyin-toolbox/internal/config"
)

var configPath string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Run the HTTP API server that backs the web frontend.
Settings come from built-in defaults, an optional YAML file and
environment variables, in that order of precedence.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadServerConfig(configPath)
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))

		historyStore := store.NewHistoryStore(filepath.Join(cfg.DataDir, "history.json"), cfg.MaxHistoryItems)
		configStore := store.NewConfigStore(filepath.Join(cfg.DataDir, "config.json"))

		scraper := douyin.NewClient()
		downloader := download.NewDownloader(cfg.StorageDir)
		parseCache := cache.NewTTL[*model.Video](cfg.ParseCacheTTL())

		newSTT := func(apiKey string) handlers.SpeechToText {
			return stt.NewOrchestrator(stt.NewClient(apiKey), stt.WithLogger(logger))
		}

		srv := server.NewServer(cfg, routes.Handlers{
			Video:   handlers.NewVideoHandler(scraper, downloader, configStore, parseCache, newSTT, logger),
			History: handlers.NewHistoryHandler(historyStore, logger),
			Config:  handlers.NewConfigHandler(configStore, logger),
		}, logger)

		if err := srv.Start(); err != nil {
			return err
		}

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	},
}

func init() {
	Cmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
}
