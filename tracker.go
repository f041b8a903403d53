package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

func main() {

	cmdFlags, err := initCmdFlags(pflag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if !cmdFlags.anyMode() {
		pflag.Usage()
		os.Exit(1)
	}

	// Load environment variables from .env file, if there is one
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal(err)
	}

	cfg, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}
	cmdFlags.apply(cfg)
	if err := cfg.DB.Validate(); err != nil {
		log.Fatal(err)
	}

	confirmed := cmdFlags.yes
	if cmdFlags.fill_db && !confirmed {
		confirmed = confirm(os.Stdin, os.Stdout, isInteractive(os.Stdin))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A long running server shares a pool.
	conn, err := openConnector(&cfg.DB, cfg.Pooled || cmdFlags.serve)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}
	defer conn.Close()

	app := newApplication(conn, cfg, os.Stdout)

	if cmdFlags.migrate {
		if err := app.migrate(ctx); err != nil {
			fatal(stop, conn, err)
		}
	}
	if cmdFlags.fill_db {
		if err := app.fillDB(ctx, importConfig(cmdFlags, cfg, confirmed)); err != nil {
			fatal(stop, conn, err)
		}
	}
	if cmdFlags.counts {
		if err := app.printCounts(ctx); err != nil {
			fatal(stop, conn, err)
		}
	}
	if cmdFlags.serve {
		if err := app.serve(ctx); err != nil {
			fatal(stop, conn, err)
		}
	}
}

// fatal releases resources that log.Fatal would skip, then exits with 1.
func fatal(stop context.CancelFunc, conn interface{ Close() error }, err error) {
	stop()
	conn.Close()
	log.Fatal(err)
}
