package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"qrattend/internal/config"
	"qrattend/internal/metrics"
	"qrattend/internal/queue"
	"qrattend/internal/session"
	"qrattend/internal/store"
)

// Worker repairs cascade deletes: it retries purge requests published by the
// API and sweeps orphaned attendees on an interval. It only makes sense
// against the shared Postgres store.
func main() {
	cfg := config.Load()
	if cfg.StoreBackend == "memory" {
		log.Fatal("worker requires STORE_BACKEND=postgres; the memory store is process-local")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "qrattend:cleanup")
	}

	repo := session.NewRepository(db.Client)

	go sweepLoop(ctx, repo, cfg.CleanupInterval)

	messages, err := q.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for purge requests...")
	for msg := range messages {
		if msg.Type != queue.TypePurge {
			continue
		}

		id := string(msg.Body)
		log.Printf("retrying cascade for session %s", id)

		// DeleteSession is idempotent: attendees first, then the session,
		// in one transaction. A repeat on an already-gone session is a no-op.
		if _, err := repo.DeleteSession(ctx, id); err != nil {
			log.Printf("cascade retry for session %s failed: %v", id, err)
			continue
		}
		log.Printf("session %s purged", id)
	}

	log.Println("worker stopped")
}

// sweepLoop periodically removes attendees whose session no longer exists.
func sweepLoop(ctx context.Context, repo *session.Repository, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteOrphans(ctx)
			if err != nil {
				log.Printf("orphan sweep failed: %v", err)
				continue
			}
			if n > 0 {
				metrics.OrphansSwept.Add(float64(n))
				log.Printf("orphan sweep removed %d attendee(s)", n)
			}
		}
	}
}
