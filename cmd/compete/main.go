package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nsilverman/compete/internal/api"
	"github.com/nsilverman/compete/internal/config"
	"github.com/nsilverman/compete/internal/scheduler"
	"github.com/nsilverman/compete/internal/storage"
	log "github.com/sirupsen/logrus"
)

const (
	defaultPort    = "8080"
	defaultRootDir = "/data"
)

func main() {
	// Existing environment variables win over .env
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("Failed to load .env: %v", err)
	}

	// Parse command line flags
	port := flag.String("port", getEnv("COMPETE_PORT", defaultPort), "HTTP server port")
	rootDir := flag.String("root", getEnv("COMPETE_ROOT", defaultRootDir), "Root data directory")
	logLevel := flag.String("log-level", getEnv("COMPETE_LOG_LEVEL", ""), "Log level (debug, info, warn, error); overrides the configuration")
	flag.Parse()

	configPath := filepath.Join(*rootDir, "config", "config.json")
	dbPath := filepath.Join(*rootDir, "config", "compete.db")

	setupLogging(*logLevel)

	log.Println("Starting compete...")
	log.Printf("Version: %s", api.Version)
	log.Printf("Config: %s", configPath)
	log.Printf("Database: %s", dbPath)

	// Initialize configuration manager
	configMgr, err := config.NewManager(configPath)
	if err != nil {
		log.Fatalf("Failed to initialize configuration manager: %v", err)
	}

	// Load or create default configuration
	if err := configMgr.Load(); err != nil {
		if os.IsNotExist(err) {
			log.Println("No configuration file found, creating default configuration...")
			if err := configMgr.CreateDefault(); err != nil {
				log.Fatalf("Failed to create default configuration: %v", err)
			}
		} else {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	}
	if *logLevel == "" {
		setupLogging(configMgr.GetSettings().LogLevel)
	}
	log.Println("Configuration loaded")

	db, err := storage.NewDatabase(dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()
	log.Println("Database initialized")

	sched := scheduler.NewScheduler(db, configMgr)

	server, err := api.NewServer(configMgr, db, sched)
	if err != nil {
		log.Fatalf("Failed to initialize server: %v", err)
	}

	// Start after the server is registered as event broadcaster
	if err := sched.Start(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", *port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on port %s", *port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// setupLogging configures the log level; unknown or empty levels mean info
func setupLogging(level string) {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	parsed, err := log.ParseLevel(level)
	if err != nil {
		parsed = log.InfoLevel
	}
	log.SetLevel(parsed)
}
