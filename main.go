package main

import (
	"flag"
	"log"
	"log/slog"

	"github.com/joho/godotenv"

	"github.com/checkmarble/datalab/cmd"
)

// Overridden at build time with -ldflags "-X main.apiVersion=..."
var apiVersion = "dev"

func main() {
	// Environment variables take precedence over the .env file, which is optional
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err.Error())
	}

	shouldRunMigrations := flag.Bool("migrations", false, "Run migrations")
	shouldRunServer := flag.Bool("server", false, "Run server")
	flag.Parse()

	if *shouldRunMigrations {
		if err := cmd.RunMigrations(); err != nil {
			log.Fatal(err)
		}
	}

	if *shouldRunServer {
		if err := cmd.RunServer(cmd.CompiledConfig{Version: apiVersion}); err != nil {
			log.Fatal(err)
		}
	}
}
