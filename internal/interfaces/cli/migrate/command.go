package migrate

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/meterly-io/meterly/internal/infrastructure/config"
	"github.com/meterly-io/meterly/internal/infrastructure/database"
	"github.com/meterly-io/meterly/internal/infrastructure/migration"
	"github.com/meterly-io/meterly/internal/shared/biztime"
	"github.com/meterly-io/meterly/internal/shared/logger"
)

var (
	env      string
	steps    int
	name     string
	strategy string
	dir      string
)

// NewCommand builds the migrate command tree.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database migrations",
	}

	cmd.PersistentFlags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.PersistentFlags().StringVar(&strategy, "strategy", "goose", "Migration strategy (goose, golang-migrate)")
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "Override the migration scripts directory")

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE:  runUp,
	}

	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE:  runDown,
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE:  runStatus,
	}

	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new migration script",
		RunE:  runCreate,
	}
	createCmd.Flags().StringVarP(&name, "name", "n", "", "Migration name")
	createCmd.MarkFlagRequired("name")

	forceCmd := &cobra.Command{
		Use:   "force [version]",
		Short: "Force the schema version after a failed golang-migrate run",
		Args:  cobra.ExactArgs(1),
		RunE:  runForce,
	}

	cmd.AddCommand(upCmd, downCmd, statusCmd, createCmd, forceCmd)
	return cmd
}

func initEnv() (string, logger.Interface, error) {
	if envVar := os.Getenv("ENV"); envVar != "" {
		env = envVar
	}

	cfg, err := config.Load(env)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load config: %w", err)
	}

	if err := logger.Init(&cfg.Logger); err != nil {
		return "", nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.NewLogger().With("component", "cli.migrate")

	if err := biztime.Init(cfg.Server.Timezone); err != nil {
		return "", nil, fmt.Errorf("failed to initialize timezone: %w", err)
	}

	if err := database.Init(&cfg.Database); err != nil {
		return "", nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	scriptsPath := dir
	if scriptsPath == "" {
		scriptsPath, err = filepath.Abs("./internal/infrastructure/migration/scripts")
		if err != nil {
			return "", nil, fmt.Errorf("failed to get scripts path: %w", err)
		}
	}

	return scriptsPath, log, nil
}

func runUp(cmd *cobra.Command, args []string) error {
	scriptsPath, log, err := initEnv()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	log.Infow("running up migrations", "environment", env, "strategy", strategy)

	var migrator migration.Strategy
	switch strategy {
	case "golang-migrate":
		migrator = migration.NewGolangMigrateStrategy(scriptsPath)
	default:
		migrator = migration.NewGooseStrategy(scriptsPath)
	}

	if err := migration.NewManagerWithStrategy(migrator).Migrate(database.Get()); err != nil {
		log.Errorw("migration failed", "error", err)
		return err
	}

	log.Infow("migrations completed successfully")
	return nil
}

func runDown(cmd *cobra.Command, args []string) error {
	scriptsPath, log, err := initEnv()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	if strategy != "goose" {
		return fmt.Errorf("down migration is only supported with the goose strategy")
	}

	log.Infow("running down migrations", "environment", env, "steps", steps)

	if err := migration.NewGooseStrategy(scriptsPath).MigrateDown(database.Get(), steps); err != nil {
		log.Errorw("down migration failed", "error", err)
		return fmt.Errorf("down migration failed: %w", err)
	}

	log.Infow("down migration completed successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	scriptsPath, log, err := initEnv()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	if strategy != "goose" {
		return fmt.Errorf("status is only supported with the goose strategy")
	}

	gooseStrategy := migration.NewGooseStrategy(scriptsPath)

	version, err := gooseStrategy.GetVersion(database.Get())
	if err != nil {
		log.Errorw("failed to get migration version", "error", err)
		return fmt.Errorf("failed to get migration version: %w", err)
	}

	fmt.Printf("\nMigration Status:\n")
	fmt.Printf("  Environment:     %s\n", env)
	fmt.Printf("  Current Version: %d\n", version)

	if err := gooseStrategy.Status(database.Get()); err != nil {
		log.Errorw("failed to get detailed status", "error", err)
		return fmt.Errorf("failed to get detailed status: %w", err)
	}

	return nil
}

func runCreate(cmd *cobra.Command, args []string) error {
	scriptsPath, log, err := initEnv()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	if strategy != "goose" {
		return fmt.Errorf("create is only supported with the goose strategy")
	}

	log.Infow("creating new migration", "name", name)

	if err := migration.NewGooseStrategy(scriptsPath).Create(name); err != nil {
		log.Errorw("failed to create migration", "error", err)
		return fmt.Errorf("failed to create migration: %w", err)
	}

	fmt.Printf("Migration '%s' created successfully\n", name)
	return nil
}

func runForce(cmd *cobra.Command, args []string) error {
	scriptsPath, log, err := initEnv()
	if err != nil {
		return err
	}
	defer logger.Sync()
	defer database.Close()

	var version int
	if _, err := fmt.Sscanf(args[0], "%d", &version); err != nil {
		return fmt.Errorf("invalid version %q: %w", args[0], err)
	}

	log.Infow("forcing migration version", "version", version)

	if err := migration.NewGolangMigrateStrategy(scriptsPath).Force(database.Get(), version); err != nil {
		log.Errorw("force failed", "error", err)
		return fmt.Errorf("force failed: %w", err)
	}

	return nil
}
