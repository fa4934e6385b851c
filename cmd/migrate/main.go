// Schema migration wrapper around golang-migrate. Supported commands:
//
//	migrate -command up              apply all pending migrations
//	migrate -command down -steps 1   roll back
//	migrate -command version         print current version
//	migrate -command force -version 2
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/chatforge/console-api/internal/infrastructure/config"
	"github.com/chatforge/console-api/internal/infrastructure/db/mysql"
)

func main() {
	var (
		command = flag.String("command", "up", "Migration command: up, down, version, force")
		steps   = flag.Int("steps", 0, "Number of migration steps (for up/down)")
		version = flag.Int("version", 0, "Target version (for force command)")
		dir     = flag.String("dir", "./migrations", "Migrations directory")
	)
	flag.Parse()

	ctx := context.Background()
	cfg, err := config.Load(ctx)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := mysql.Connect(ctx, cfg.MySQL.DSN())
	if err != nil {
		log.Fatalf("mysql: %v", err)
	}
	defer db.Close()

	m, err := newMigrator(db, *dir)
	if err != nil {
		log.Fatalf("migrate: %v", err)
	}

	switch *command {
	case "up":
		if err := run(m.Up, m, *steps); err != nil {
			log.Fatalf("migration up failed: %v", err)
		}
		fmt.Println("migrations applied")
	case "down":
		if err := run(m.Down, m, -*steps); err != nil {
			log.Fatalf("migration down failed: %v", err)
		}
		fmt.Println("migrations rolled back")
	case "version":
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			log.Fatalf("version: %v", err)
		}
		if dirty {
			fmt.Printf("database is dirty at version %d\n", v)
			os.Exit(1)
		}
		fmt.Printf("current migration version: %d\n", v)
	case "force":
		if *version == 0 {
			log.Fatal("force requires -version")
		}
		if err := m.Force(*version); err != nil {
			log.Fatalf("force failed: %v", err)
		}
		fmt.Printf("forced database to version %d\n", *version)
	default:
		log.Fatalf("unknown command: %s (supported: up, down, version, force)", *command)
	}
}

func newMigrator(db *sql.DB, dir string) (*migrate.Migrate, error) {
	driver, err := migratemysql.WithInstance(db, &migratemysql.Config{})
	if err != nil {
		return nil, fmt.Errorf("create driver: %w", err)
	}
	m, err := migrate.NewWithDatabaseInstance("file://"+dir, "mysql", driver)
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}
	return m, nil
}

// run applies all migrations via all, or exactly steps of them when non-zero.
func run(all func() error, m *migrate.Migrate, steps int) error {
	var err error
	if steps != 0 {
		err = m.Steps(steps)
	} else {
		err = all()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
