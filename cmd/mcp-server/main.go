package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"pharmassist/internal/assistant"
	"pharmassist/internal/mcp"
	"pharmassist/internal/store"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to MCP server configuration file")
		dataDir    = flag.String("data", "", "Path to the pharmacy data directory")
		readOnly   = flag.Bool("readonly", false, "Disable the conversational tool (read-side lookups only)")
	)
	flag.Parse()

	// Load or create default configuration
	var cfg *mcp.Config
	var err error
	if *configPath != "" {
		cfg, err = mcp.LoadConfig(*configPath)
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
	} else {
		cfg = mcp.DefaultConfig()
	}

	// Override config with command line flags
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *readOnly {
		cfg.ReadOnly = true
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	dataStore, err := store.Open(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open data store: %v", err)
	}
	log.Printf("Opened pharmacy data at: %s (read-only: %v)", cfg.DataDir, cfg.ReadOnly)

	assistantConfig := assistant.DefaultConfig()
	assistantConfig.Assistant.Data.Dir = cfg.DataDir
	agent, err := assistant.NewAgent(context.Background(), assistantConfig, dataStore, nil)
	if err != nil {
		log.Fatalf("Failed to create assistant: %v", err)
	}
	defer agent.Close()

	// Create MCP server
	mcpServer := server.NewMCPServer(
		cfg.Name,
		cfg.Version,
		server.WithToolCapabilities(true),
	)

	// Create and register tool manager
	toolManager := mcp.NewToolManager(agent, dataStore, cfg)
	if err := toolManager.RegisterTools(mcpServer); err != nil {
		log.Fatalf("Failed to register tools: %v", err)
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer func() {
		signal.Stop(sigChan)
		close(sigChan)
	}()
	go func() {
		<-sigChan
		log.Println("Received shutdown signal, shutting down gracefully...")
	}()

	log.Printf("Starting MCP server with stdio transport...")
	if err := server.ServeStdio(mcpServer); err != nil {
		log.Fatalf("MCP server error: %v", err)
	}
}
