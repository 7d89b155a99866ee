package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"sathi-support/backend/internal/ai"
	"sathi-support/backend/internal/api"
	"sathi-support/backend/internal/chat"
	"sathi-support/backend/internal/config"
	"sathi-support/backend/internal/faq"
	"sathi-support/backend/internal/store"
)

func main() {
	cfg := config.Load()
	cfg.ConfigureLogging()
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	table, err := faq.LoadTable(cfg.FAQPath)
	if err != nil {
		logrus.Fatalf("load faq table: %v", err)
	}

	responder := ai.NewResponder(cfg.AI)
	if ai.DemoMode(responder) {
		logrus.Warn("GEMINI_API_KEY not configured, running in demo mode")
	}

	chatCfg := chat.Config{Table: table, Responder: responder}
	apiCfg := api.Config{
		AllowedOrigins: cfg.AllowedOrigins,
		Development:    cfg.IsDevelopment(),
		RateWindow:     cfg.RateWindow,
		RateMax:        cfg.RateMax,
		BodyLimit:      cfg.BodyLimit,
	}

	if cfg.StoreDisabled || cfg.DBPath == "" {
		logrus.Info("conversation store disabled")
	} else {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			logrus.Fatalf("create data directory: %v", err)
		}
		db, err := store.Open(cfg.DBPath, cfg.SilentDB)
		if err != nil {
			logrus.Fatalf("open conversation store: %v", err)
		}
		defer db.Close()
		chatCfg.Store = db
		apiCfg.Stats = db
		logrus.WithField("path", cfg.DBPath).Info("conversation store ready")
	}

	service, err := chat.NewService(chatCfg)
	if err != nil {
		logrus.Fatalf("create chat service: %v", err)
	}
	apiCfg.Chat = service

	server, err := api.NewServer(apiCfg)
	if err != nil {
		logrus.Fatalf("create server: %v", err)
	}

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logrus.WithFields(logrus.Fields{
			"port":        cfg.Port,
			"environment": cfg.Environment,
		}).Info("starting Sathi backend")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logrus.Info("shutting down Sathi backend")
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logrus.Errorf("server exited: %v", err)
		os.Exit(1)
	}
}
