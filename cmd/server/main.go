package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Tyrowin/htmx-playground/internal/server"
)

func main() {
	fmt.Println("Starting HTMX Learning Server...")

	config := server.NewConfigFromEnv()
	app := server.NewApp(config)
	app.StartHub()

	httpServer := server.CreateServer(app.Config().Port, server.SetupRoutes(app))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.StartServer(httpServer)
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	case <-ctx.Done():
		log.Println("Shutdown signal received")
	}

	if err := server.ShutdownServer(httpServer, 10*time.Second); err != nil {
		log.Printf("HTTP shutdown incomplete: %v", err)
	}
	if err := app.Hub().Shutdown(5 * time.Second); err != nil {
		log.Printf("Hub shutdown incomplete: %v", err)
	}
}
