package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kube-exec/bridge/internal/api"
	"github.com/kube-exec/bridge/internal/applog"
	"github.com/kube-exec/bridge/internal/config"
	"github.com/kube-exec/bridge/internal/identity"
	"github.com/kube-exec/bridge/internal/k8sclient"
	"github.com/kube-exec/bridge/internal/session"
)

const tokenRefreshInterval = 60 * time.Second

func main() {
	cfg := config.Load()
	applog.SetVerbose(cfg.IsLocal())

	id := identity.Load(cfg)
	shared := identity.NewShared(id)

	refresher := identity.NewRefresher(shared, cfg.TokenPath, tokenRefreshInterval)
	refresher.Start()
	defer refresher.Stop()

	clientset, err := k8sclient.New(id)
	if err != nil {
		log.Printf("WARNING: could not build Kubernetes clientset for listing proxies: %v", err)
	}

	registry := session.NewRegistry()

	router := gin.Default()
	api.SetupRoutes(router, shared, registry, clientset, cfg.IsLocal())

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("starting gateway on http://localhost:%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutdown signal received")

	registry.ShutdownAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown error: %v", err)
	}
}
