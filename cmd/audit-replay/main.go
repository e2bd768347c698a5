// Command audit-replay drains the audit dead-letter queue back into the
// audit store. Replays are idempotent on entry id, so it is safe to rerun.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logger"
	"storefront/internal/services"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(os.Args[1:]); err != nil {
		logger.Get().Fatalf("audit-replay: %v", err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("audit-replay", flag.ContinueOnError)
	limit := fs.Int("max", 0, "replay at most this many entries (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.RedisURL == "" {
		return errors.New("REDIS_URL is not set; there is no dead-letter queue to replay")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	rdb, err := database.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer rdb.Close()

	dlq := services.NewRedisDeadLetterQueue(rdb, cfg.AuditDeadLetterKey)
	replayed, err := services.ReplayDeadLetters(ctx, dlq, services.NewAuditStore(dbManager.DB()), *limit)
	remaining, lenErr := dlq.Len(ctx)
	if lenErr != nil {
		remaining = -1
	}
	logger.Get().Infow("audit dead-letter replay finished",
		"replayed", replayed,
		"remaining", remaining,
	)
	return err
}
