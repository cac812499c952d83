// Package sweep implements the out-of-band cleanup pass that removes
// expired pastes independent of request traffic.
package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/pmalinen/EncryptBin/metrics"
	"github.com/pmalinen/EncryptBin/models"
	"github.com/pmalinen/EncryptBin/storage"
)

// Report summarizes one sweep pass.
type Report struct {
	Scanned int
	Removed int
	Skipped int
}

// Run scans every stored paste and deletes those whose expiry has passed.
// A single unreadable or malformed record is skipped and logged, never
// fatal to the pass. Safe to run concurrently with live traffic and with
// itself: deletes are idempotent.
func Run(ctx context.Context, store storage.PasteStore, now int64, logger *slog.Logger) (Report, error) {
	var report Report

	ids, err := store.List(ctx)
	if err != nil {
		return report, err
	}

	for _, id := range ids {
		report.Scanned++
		meta, err := store.GetMeta(ctx, id)
		if err != nil {
			logger.Warn("sweep: skipping unreadable paste", "id", id, "error", err)
			report.Skipped++
			continue
		}
		if meta == nil {
			// Either deleted between List and GetMeta, or a creation in
			// flight that has written content but not yet metadata.
			// Deleting here could destroy a paste mid-create, so skip.
			continue
		}
		if !models.IsExpired(meta.Expires, now) {
			continue
		}
		if err := store.Delete(ctx, id); err != nil {
			logger.Warn("sweep: failed to delete expired paste", "id", id, "error", err)
			report.Skipped++
			continue
		}
		logger.Info("sweep: removed expired paste", "id", id, "expires", meta.Expires)
		report.Removed++
	}

	metrics.SweepRuns.Inc()
	metrics.SweepRemoved.Add(float64(report.Removed))
	return report, nil
}

// StartJanitor launches a background loop running a sweep every interval
// until ctx is done.
func StartJanitor(ctx context.Context, store storage.PasteStore, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				report, err := Run(ctx, store, time.Now().Unix(), logger)
				if err != nil {
					logger.Error("janitor sweep failed", "error", err)
					continue
				}
				if report.Removed > 0 {
					logger.Info("janitor sweep complete",
						"scanned", report.Scanned,
						"removed", report.Removed,
						"skipped", report.Skipped)
				}
			}
		}
	}()
}
