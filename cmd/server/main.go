package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/chungquantin/chaseOS/internal/infrastructure/config"
	"github.com/chungquantin/chaseOS/internal/infrastructure/server"
	"github.com/chungquantin/chaseOS/internal/shared/paths"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags override the environment
	port := flag.String("port", cfg.Server.Port, "Server port")
	dev := flag.Bool("dev", cfg.Logging.Development, "Development mode (debug logs, console encoding)")
	root := flag.String("root", ".", "Directory that relative content and store paths resolve against")
	store := flag.String("store", cfg.Store.Driver, "Desktop store driver: sqlite, file or memory")
	flag.Parse()

	cfg.Server.Port = *port
	cfg.Logging.Development = *dev
	cfg.Store.Driver = *store

	layout, err := paths.New(*root)
	if err != nil {
		log.Fatalf("Invalid root %q: %v", *root, err)
	}

	srv, err := server.NewServer(cfg, layout)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- srv.Run()
	}()

	select {
	case <-sigChan:
		log.Println("Shutting down gracefully...")
	case err := <-errChan:
		if err != nil {
			log.Printf("Server error: %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Close(ctx); err != nil {
		log.Printf("Error during shutdown: %v", err)
		os.Exit(1)
	}
}
