package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"vehicle-match-engine/internal/services/database"
	"vehicle-match-engine/internal/utils"
)

const initTimeout = 60 * time.Second

func newInitDBCmd() *cobra.Command {
	var create bool

	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the profile tables in PostgreSQL",
		Long:  "Uses DATABASE_URL when set, otherwise the DB_* settings.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), initTimeout)
			defer cancel()
			return runInitDB(ctx, cmd, create)
		},
	}
	cmd.Flags().BoolVar(&create, "create", false, "create the database first if it does not exist")
	return cmd
}

func databaseURL() (string, error) {
	_ = godotenv.Load()
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url, nil
	}
	cfg, err := loadConfig("")
	if err != nil {
		return "", err
	}
	return cfg.DatabaseURL(), nil
}

func runInitDB(ctx context.Context, cmd *cobra.Command, create bool) error {
	logger := utils.Named("init-db")

	url, err := databaseURL()
	if err != nil {
		return err
	}

	if create {
		if err := createDatabase(ctx, url); err != nil {
			return err
		}
	}

	db, err := database.New(ctx, url)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		return err
	}

	count, err := database.NewProfileRepository(db).Count(ctx)
	if err != nil {
		return err
	}
	logger.Info("Schema ready", utils.Int64("profiles", count))
	fmt.Fprintf(cmd.OutOrStdout(), "schema ready, %d profiles stored\n", count)
	return nil
}

// createDatabase connects to the server's postgres database and creates the target one.
func createDatabase(ctx context.Context, url string) error {
	target, err := pgx.ParseConfig(url)
	if err != nil {
		return fmt.Errorf("failed to parse database URL: %w", err)
	}
	name := target.Database

	admin := target.Copy()
	admin.Database = "postgres"
	conn, err := pgx.ConnectConfig(ctx, admin)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}
	defer conn.Close(ctx)

	var exists bool
	if err := conn.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", name).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}
	if exists {
		return nil
	}

	if _, err := conn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{name}.Sanitize()); err != nil {
		return fmt.Errorf("failed to create database %s: %w", name, err)
	}
	utils.Named("init-db").Info("Database created", utils.String("database", name))
	return nil
}
