package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"time"

	"artsearch/internal/app"
	"artsearch/internal/artsy"
	"artsearch/internal/config"
	"artsearch/internal/server"
	"artsearch/internal/util"
)

func main() {
	cfg, err := config.Load(config.ConfigPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	sessionTTL, err := config.ParseSessionTTL(cfg.SessionTTL)
	if err != nil {
		log.Fatalf("failed to parse session TTL: %v", err)
	}

	logger := util.InitLogger(cfg.LogLevel)

	appCore, err := app.New(app.Config{
		DatabaseURL: cfg.DatabaseURL,
		JWTSecret:   cfg.JWTSecret,
		SessionTTL:  sessionTTL,
	})
	if err != nil {
		log.Fatalf("failed to init app: %v", err)
	}

	tokens := artsy.NewTokenManager(cfg.ArtsyBaseURL, cfg.ArtsyClientID, cfg.ArtsyClientSecret)
	tokens.Start(context.Background())

	httpServer, err := server.New(server.Config{
		App:                        appCore,
		Artsy:                      artsy.NewClient(cfg.ArtsyBaseURL, tokens),
		RedisAddr:                  cfg.RedisAddr,
		RedisPassword:              cfg.RedisPassword,
		RegisterRateLimitPerMinute: cfg.RegisterRateLimitPerMinute,
		LoginRateLimitPerMinute:    cfg.LoginRateLimitPerMinute,
		CookieSecure:               cfg.CookieSecure,
		StaticDir:                  cfg.StaticDir,
		AllowedOrigins:             cfg.AllowedOrigins,
		TrustedProxyCIDRs:          cfg.TrustedProxyCIDRs,
	})
	if err != nil {
		log.Fatalf("failed to init server: %v", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	slog.Info("artsearch server listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "err", err)
	}
}
