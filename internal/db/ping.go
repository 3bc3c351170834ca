package db

import (
	"log"
	"time"
)

// StartPingWorker launches a background goroutine that checks connection
// liveness once a minute and re-establishes the handle when it has gone
// stale, so an idle period does not cost the next report a retry.
func StartPingWorker(store *Store) {
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			if err := store.Ping(); err != nil {
				log.Printf("database ping error: %v", err)
			}
		}
	}()
}
