/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the allocation engine server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags
  2. Initialize SQLite store
  3. Create API handler and bootstrap (seed on first start)
  4. Configure HTTP router
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: allocation.db)
           Use ":memory:" for in-memory database
  -seed    Seed value for the generated backlog (default: 20250101)
  -orders  Number of generated orders on first start (default: 2000)
  -delay   Artificial allocation run duration, for demos (default: 0)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Wait for an in-flight allocation run to finish
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/allocation.db"

  # Run with in-memory database and a small demo backlog
  ./server -db=":memory:" -orders=50

  # Run on different port
  ./server -port=3000

ENVIRONMENT:
  No environment variables currently. All config via flags.

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/allocation-engine/api"
	"github.com/warp/allocation-engine/seed"
	"github.com/warp/allocation-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "allocation.db", "SQLite database path")
	seedValue := flag.Int64("seed", seed.DefaultSeed, "Seed for the generated backlog")
	orderCount := flag.Int("orders", seed.DefaultOrderCount, "Number of generated orders on first start")
	runDelay := flag.Duration("delay", 0, "Artificial allocation run duration")
	flag.Parse()

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler
	handler := api.NewHandler(store)
	handler.Seed = *seedValue
	handler.OrderCount = *orderCount
	handler.Runner.Delay = *runDelay

	// Seed on first start and load the working snapshot
	if err := handler.Bootstrap(context.Background()); err != nil {
		log.Fatalf("Failed to bootstrap state: %v", err)
	}

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("🚀 Server starting on http://localhost:%d", *port)
		log.Printf("📊 API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	// Let an in-flight run land its snapshot before the store closes.
	if !handler.Runner.Wait(10 * time.Second) {
		log.Println("Allocation run still in flight at shutdown")
	}

	log.Println("Server stopped")
}
