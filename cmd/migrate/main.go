package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/geocoder89/inkwell/internal/config"
	"github.com/geocoder89/inkwell/internal/db"
	"github.com/geocoder89/inkwell/internal/observability"
	"github.com/golang-migrate/migrate/v4"
)

func main() {
	yes := flag.Bool("yes", false, "skip the confirmation prompt for drop")
	flag.Usage = usage
	flag.Parse()
	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	config.LoadDotEnv()
	cfg := config.Load()
	log := observability.NewLogger(cfg.Env)

	m, err := db.NewMigrator(cfg.DBURL, log)
	if err != nil {
		log.Error("migrator init failed", "err", err)
		os.Exit(1)
	}
	defer m.Close()

	fail := func(msg string, err error) {
		log.Error(msg, "err", err)
		m.Close()
		os.Exit(1)
	}

	switch args[0] {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			fail("up failed", err)
		}
		log.Info("migrations: up completed")

	case "down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				fail("down: invalid steps argument", fmt.Errorf("%q", args[1]))
			}
			steps = n
		}
		if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			fail("down failed", err)
		}
		log.Info("migrations: down completed", "steps", steps)

	case "version":
		v, dirty, err := m.Version()
		if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
			fail("version failed", err)
		}
		fmt.Printf("version: %d  dirty: %v\n", v, dirty)

	case "force":
		if len(args) < 2 {
			fail("force failed", errors.New("version argument required"))
		}
		v, err := strconv.Atoi(args[1])
		if err != nil {
			fail("force: invalid version", err)
		}
		if err := m.Force(v); err != nil {
			fail("force failed", err)
		}
		log.Info("migrations: forced", "version", v)

	case "drop":
		if !*yes && !confirm() {
			fmt.Println("aborted")
			return
		}
		if err := m.Drop(); err != nil {
			fail("drop failed", err)
		}
		log.Info("migrations: all tables dropped")

	default:
		usage()
		m.Close()
		os.Exit(1)
	}
}

func confirm() bool {
	fmt.Fprintln(os.Stderr, "WARNING: drop will destroy all tables. Type 'yes' to confirm:")
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line) == "yes"
}

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: migrate [-yes] <command> [args]

Commands:
  up           Apply all pending migrations
  down [N]     Roll back N migrations (default: 1)
  version      Print current migration version
  force <V>    Force set migration version (clears dirty state)
  drop         Drop all tables

Environment:
  DATABASE_URL or DB_HOST/DB_PORT/DB_USER/DB_PASSWORD/DB_NAME/DB_SSLMODE`)
}
