// Command holdtalk-mcp serves the voice-note index over MCP on stdio.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/jwulff/holdtalk/internal/config"
	"github.com/jwulff/holdtalk/internal/db"
	"github.com/jwulff/holdtalk/internal/logging"
	"github.com/jwulff/holdtalk/internal/mcpserver"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"
)

var version = "dev"

func main() {
	configPath := flag.String("config", "", "path to holdtalk.yaml")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "holdtalk-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// stdout carries the protocol, so logs always go to the file
	logger, err := logging.New(logging.Options{
		File:       cfg.Log.File,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return err
	}
	defer logger.Sync()

	store, err := db.OpenReadOnly(cfg.Storage.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	logger.Info("serving", zap.String("db", cfg.Storage.DBPath), zap.String("version", version))
	srv := mcpserver.New(store, logger).MCPServer(version)
	if err := server.ServeStdio(srv); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}
