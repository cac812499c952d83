// The cleanup command runs one expiry sweep over the configured storage
// backend and exits. It is intended to be scheduled out-of-band (cron or
// similar), independent of the serving processes.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/pmalinen/EncryptBin/config"
	"github.com/pmalinen/EncryptBin/internal/sweep"
	"github.com/pmalinen/EncryptBin/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	store, err := storage.NewStore(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("[WARN] Storage close: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	report, err := sweep.Run(ctx, store, time.Now().Unix(), logger)
	if err != nil {
		log.Fatalf("Sweep failed: %v", err)
	}
	log.Printf("Cleanup complete. Scanned %d, removed %d, skipped %d",
		report.Scanned, report.Removed, report.Skipped)
}
