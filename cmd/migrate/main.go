// Migrate the Postgres watchlist database from one state to another
package main

import (
	"context"
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dense-analysis/nexus/internal/config"
	"github.com/dense-analysis/nexus/internal/env"
	"github.com/jackc/pgx/v4"
)

type MigrationExecutor struct {
	connection        *pgx.Conn
	directoryName     string
	migrationFileList []string
}

func NewMigrationExecutor(connection *pgx.Conn, directoryName string) (*MigrationExecutor, error) {
	entries, err := os.ReadDir(directoryName)

	if err != nil {
		return nil, err
	}

	migrationFileList := make([]string, 0, len(entries))

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			migrationFileList = append(migrationFileList, entry.Name())
		}
	}

	return &MigrationExecutor{connection, directoryName, migrationFileList}, nil
}

func (executor *MigrationExecutor) CreateMigrationTable(ctx context.Context) error {
	_, err := executor.connection.Exec(
		ctx,
		"CREATE TABLE IF NOT EXISTS nexus_migration (id serial, migration_number integer NOT NULL UNIQUE);",
	)

	return err
}

func (executor *MigrationExecutor) CurrentMigration(ctx context.Context) (int, error) {
	row := executor.connection.QueryRow(
		ctx,
		"SELECT COALESCE(MAX(migration_number), 0) FROM nexus_migration;",
	)

	var migrationNumber int32
	err := row.Scan(&migrationNumber)

	return int(migrationNumber), err
}

// findMigration returns the path of the file for a migration, or "" if there
// is no such migration.
func (executor *MigrationExecutor) findMigration(migrationNumber int, reverse bool) string {
	for _, filename := range executor.migrationFileList {
		splitList := strings.Split(filename, "_")
		fileMigrationNumber, _ := strconv.Atoi(splitList[0])
		isReverseFile := splitList[len(splitList)-1] == "reverse.sql"

		if migrationNumber == fileMigrationNumber && reverse == isReverseFile {
			return filepath.Join(executor.directoryName, filename)
		}
	}

	return ""
}

func (executor *MigrationExecutor) applyMigration(ctx context.Context, migrationNumber int, reverse bool) (bool, error) {
	matchedFilename := executor.findMigration(migrationNumber, reverse)

	if len(matchedFilename) == 0 {
		return true, nil
	}

	fmt.Printf("Applying migration: %s\n", matchedFilename)

	file, readErr := os.ReadFile(matchedFilename)

	if readErr != nil {
		return false, readErr
	}

	batch := &pgx.Batch{}
	// NOTE: SQL functions in migration files won't work.
	queries := strings.Split(string(file), ";\n")

	for _, query := range queries {
		if strings.TrimSpace(query) != "" {
			batch.Queue(query)
		}
	}

	if reverse {
		batch.Queue(
			"DELETE FROM nexus_migration WHERE migration_number = $1;",
			migrationNumber,
		)
	} else {
		batch.Queue(
			"INSERT INTO nexus_migration (migration_number) VALUES ($1) ON CONFLICT DO NOTHING;",
			migrationNumber,
		)
	}

	results := executor.connection.SendBatch(ctx, batch)
	defer results.Close()

	for range batch.Len() {
		if _, err := results.Exec(); err != nil {
			return false, err
		}
	}

	return false, nil
}

func (executor *MigrationExecutor) ApplyMigrations(ctx context.Context, selectedMigrationNumber int) error {
	if err := executor.CreateMigrationTable(ctx); err != nil {
		return err
	}

	startMigrationNumber, currentErr := executor.CurrentMigration(ctx)

	if currentErr != nil {
		return currentErr
	}

	reverse := selectedMigrationNumber < startMigrationNumber

	for i := startMigrationNumber; i != selectedMigrationNumber; {
		if !reverse {
			i += 1
		}

		stop, err := executor.applyMigration(ctx, i, reverse)

		if reverse {
			i -= 1
		}

		if err != nil {
			return err
		}

		if stop {
			break
		}
	}

	return nil
}

func parseSelectedMigration(args []string) int {
	selectedMigration := math.MaxInt32

	if len(args) > 1 {
		fmt.Fprintf(os.Stderr, "Too many arguments\n")
		os.Exit(1)
	}

	if len(args) > 0 {
		var err error
		selectedMigration, err = strconv.Atoi(args[0])

		if err != nil || selectedMigration < 0 {
			fmt.Fprintf(os.Stderr, "Invalid migration number: %s\n", args[0])
			os.Exit(1)
		}
	}

	return selectedMigration
}

func main() {
	configPath := flag.String("config", "nexus.yaml", "path to the YAML config file")
	directory := flag.String("dir", "migrations", "directory holding the migration files")
	flag.Parse()

	selectedMigration := parseSelectedMigration(flag.Args())

	env.LoadEnvironmentVariables()

	cfg, err := config.Load(*configPath)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %s\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	conn, connectionErr := pgx.Connect(ctx, cfg.Storage.Postgres.URL())

	if connectionErr != nil {
		fmt.Fprintf(os.Stderr, "Connection error: %s\n", connectionErr)
		os.Exit(1)
	}

	defer func() {
		_ = conn.Close(ctx)
	}()

	executor, executorErr := NewMigrationExecutor(conn, *directory)

	if executorErr != nil {
		fmt.Fprintf(os.Stderr, "Error loading migrations: %s\n", executorErr)
		os.Exit(1)
	}

	if err := executor.ApplyMigrations(ctx, selectedMigration); err != nil {
		fmt.Fprintf(os.Stderr, "Error applying migration: %s\n", err)
		os.Exit(1)
	}
}
