// Package main is the entry point for the midi2beep API server
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/james-see/midi2beep/internal/config"
	"github.com/james-see/midi2beep/pkg/api"
)

func main() {
	cfg := config.Load()

	defaultPort, err := strconv.Atoi(cfg.Port)
	if err != nil {
		defaultPort = 8080
	}
	port := flag.Int("port", defaultPort, "Server port")
	flag.Parse()

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			AttachStacktrace: true,
			TracesSampleRate: 0.1,
		}); err != nil {
			log.Printf("⚠️  Sentry initialization failed: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.Environment)
			defer sentry.Flush(2 * time.Second)
		}
	}

	fmt.Printf("Starting midi2beep API server on port %d...\n", *port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", *port)

	if err := api.StartServer(*port); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		sentry.Flush(2 * time.Second)
		os.Exit(1)
	}
}
