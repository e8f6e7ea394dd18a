// Command joindemo is a non-normative harness exercising the invite
// protocol over two in-process identities: a creator who mints
// invites for a conversation, and a joiner who redeems them. It is a
// demonstration and integration-test aid, not a production node.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xmtplabs/convos-node-sdk/internal/config"
	"github.com/xmtplabs/convos-node-sdk/internal/demoserver"
)

func main() {
	configPath := flag.String("config", "", "Path to TOML config file (optional)")
	envFlag := flag.String("env", "", "Environment: production, dev, or local (overrides config)")
	inviteBaseURL := flag.String("invite-base-url", "", "Invite base URL override (overrides config)")
	listenAddr := flag.String("listen", ":8089", "Listen address")
	creatorInboxID := flag.String("creator-inbox-id", "creator0000000000000000000000000000000000000000000000000000000", "Creator inbox id")
	joinerInboxID := flag.String("joiner-inbox-id", "joiner0000000000000000000000000000000000000000000000000000000", "Joiner inbox id")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPath:        *configPath,
		EnvFlag:           *envFlag,
		InviteBaseURLFlag: *inviteBaseURL,
		Logger:            logger,
	})
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Info("effective configuration", "config", cfg.Redacted())

	srv := demoserver.New(cfg, logger, *creatorInboxID, *joinerInboxID)
	httpServer := &http.Server{
		Addr:         *listenAddr,
		Handler:      srv.Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("listening", "addr", *listenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
