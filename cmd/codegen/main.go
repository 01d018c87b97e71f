package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/codegenhq/codegen/internal/app"
	"github.com/codegenhq/codegen/internal/config"

	log "github.com/sirupsen/logrus"
)

// main runs the server entrypoint and exits on unrecoverable errors.
func main() {
	if errRun := run(os.Args[1:]); errRun != nil {
		log.WithError(errRun).Error("server failed")
		os.Exit(1)
	}
}

// run parses flags, loads config, and starts the server.
func run(args []string) error {
	fs := flag.NewFlagSet("codegen", flag.ContinueOnError)
	cfgPath := fs.String("config", "", "config file path (or env CONFIG_PATH)")
	port := fs.Int("port", 8000, "server port")
	if errParse := fs.Parse(args); errParse != nil {
		return errParse
	}

	if errValidate := validatePort(*port); errValidate != nil {
		return errValidate
	}

	path := *cfgPath
	if strings.TrimSpace(path) == "" {
		path = os.Getenv(config.EnvConfigPath)
	}

	cfg, errLoad := config.Load(config.ResolveConfigPath(path))
	if errLoad != nil {
		return errLoad
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return app.RunServer(ctx, cfg, *port)
}

func validatePort(port int) error {
	if port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port: %d", port)
	}
	return nil
}
