// Command dataveil-mcp serves the anonymization pipeline as MCP tools on
// stdin/stdout, for use by LLM agents.
package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/dataveil/dataveil/core"
	"github.com/dataveil/dataveil/mcpserver"
)

func main() {
	_ = godotenv.Load()

	// Stdout belongs to the MCP protocol; logs go to stderr.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cfg := core.LoadConfig()
	if err := cfg.EnsureDirs(); err != nil {
		logger.Error("Failed to create data directories", "error", err)
		os.Exit(1)
	}

	rules := core.DefaultRules()
	if path := os.Getenv("RULES_FILE"); path != "" {
		loaded, err := core.LoadRules(path)
		if err != nil {
			logger.Error("Failed to load rules file", "path", path, "error", err)
			os.Exit(1)
		}
		rules = loaded
	}

	if err := mcpserver.New(cfg, rules).ServeStdio(); err != nil {
		logger.Error("MCP server failed", "error", err)
		os.Exit(1)
	}
}
