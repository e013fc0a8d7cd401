package main

import (
	"context"
	"log"
	"net/http"

	"datadash/adapters/chart"
	"datadash/internal/api"
	"datadash/internal/config"
	"datadash/internal/loader"
	"datadash/internal/session"
	"datadash/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	// Loaders share one process-wide cache of parsed datasets
	cache := loader.NewCache()
	remote := loader.NewRemoteLoader(&http.Client{Timeout: appConfig.Remote.Timeout}, cache)
	uploads := loader.NewUploadLoader(cache)

	sessions := session.NewStore(appConfig.Session.TTL)
	sessions.TrackUploads(uploads)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go sessions.Run(ctx, appConfig.Session.SweepInterval)

	server, err := ui.NewServer(ui.Dependencies{
		Config:   appConfig,
		Remote:   remote,
		Uploads:  uploads,
		Sessions: sessions,
		Renderer: chart.NewRenderer(appConfig.Chart.Width, appConfig.Chart.Height),
		API:      api.NewHandler(remote, uploads, appConfig.Server.MaxUploadBytes),
	})
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	if err := server.Start(":" + appConfig.Server.Port); err != nil {
		log.Fatal(err)
	}
}
