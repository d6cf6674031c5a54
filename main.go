// main.go
package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/jmtz/meteopipe/config"
	"github.com/jmtz/meteopipe/database"
	"github.com/jmtz/meteopipe/handlers"
	"github.com/jmtz/meteopipe/scraper"
	"github.com/jmtz/meteopipe/services"
)

func main() {
	log.Println("Starting meteo pipeline...")

	configPath := "config/config.yaml"
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		configPath = "config.yaml"
	}

	if err := config.LoadConfig(configPath); err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	log.Printf("Configuration loaded. Cities: %v, DB name: %s, run interval: %s",
		config.AppConfig.Scrape.Cities, config.AppConfig.Database.DBName,
		config.AppConfig.Pipeline.RunInterval)

	if err := database.InitDB(config.AppConfig.Database); err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}
	defer database.CloseDB()

	if err := database.EnsureSchema(); err != nil {
		log.Fatalf("Error ensuring database schema: %v", err)
	}

	fetcher := scraper.NewHTTPFetcher(config.AppConfig.Scrape.FetchTimeout)

	// One pipeline pass per interval. The scheduler serializes runs, so a
	// cycle never overlaps the previous one.
	sched := gocron.NewScheduler(time.UTC)
	sched.SingletonModeAll()
	_, err := sched.Every(config.AppConfig.Pipeline.RunInterval).Do(func() {
		if err := services.RunCycle(fetcher); err != nil {
			switch {
			case errors.Is(err, services.ErrScrapeStage):
				log.Printf("ERROR: scrape stage failed, nothing staged this cycle: %v", err)
			case errors.Is(err, services.ErrIngestStage):
				log.Printf("ERROR: ingest stage failed, nothing ingested this cycle: %v", err)
			case errors.Is(err, services.ErrExportStage):
				log.Printf("ERROR: export stage failed, store contents are unaffected: %v", err)
			default:
				log.Printf("ERROR: pipeline cycle failed: %v", err)
			}
		}
	})
	if err != nil {
		log.Fatalf("Error scheduling pipeline cycle: %v", err)
	}
	sched.StartAsync()
	defer sched.Stop()

	// --- Setup HTTP routes ---
	http.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := database.DB.Ping(); err != nil {
			http.Error(w, `{"status": "error", "message": "database connection error"}`, http.StatusInternalServerError)
			log.Printf("Health check failed: DB ping error: %v", err)
			return
		}
		fmt.Fprintln(w, `{"status": "ok", "message": "meteo pipeline is healthy"}`)
	})

	// Admin routes for manually driving the pipeline
	http.HandleFunc("/api/admin/run/", handlers.RunStageHandler)

	serverAddr := ":" + config.AppConfig.Server.Port
	log.Printf("Server starting on http://localhost%s\n", serverAddr)
	if err := http.ListenAndServe(serverAddr, nil); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
