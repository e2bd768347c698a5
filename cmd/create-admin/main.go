// Command create-admin creates an administrator account or promotes an
// existing one. Registration only ever creates customers, so this is how the
// first administrator is minted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logger"
	"storefront/internal/models"
	"storefront/internal/services"
)

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(os.Args[1:]); err != nil {
		logger.Get().Fatalf("create-admin: %v", err)
	}
}

func run(args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	name := fs.String("name", "Administrator", "display name for a new account")
	email := fs.String("email", "", "account email (required)")
	role := fs.String("role", string(models.RoleAdmin), "admin or superadmin")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		return errors.New("-email is required")
	}

	// Only used when the account does not exist yet.
	password := os.Getenv("ADMIN_PASSWORD")

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()
	if err := dbManager.Migrate(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	users := services.NewUserService(dbManager.DB())
	user, created, err := users.EnsureAdmin(context.Background(), *name, *email, password, models.Role(*role))
	if err != nil {
		return err
	}

	if created {
		logger.Get().Infow("administrator created", "user_id", user.ID, "email", user.Email, "role", user.Role)
	} else {
		logger.Get().Infow("administrator promoted", "user_id", user.ID, "email", user.Email, "role", user.Role)
	}
	return nil
}
