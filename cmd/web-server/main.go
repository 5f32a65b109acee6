package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"pharmassist/internal/api"
	"pharmassist/internal/assistant"
	"pharmassist/internal/store"
	"pharmassist/internal/webui"
)

var (
	configPath string
	port       string
	dataDir    string
	webUI      bool
)

func init() {
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.StringVar(&port, "port", "8080", "Port to listen on")
	flag.StringVar(&dataDir, "data", "", "Data directory (overrides config)")
	flag.BoolVar(&webUI, "ui", true, "Serve the embedded web chat UI")
}

func main() {
	flag.Parse()

	config, err := assistant.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if dataDir != "" {
		config.Assistant.Data.Dir = dataDir
	}

	dataStore, err := store.Open(config.Assistant.Data.Dir)
	if err != nil {
		log.Fatalf("Failed to open data store: %v", err)
	}
	fmt.Printf("Pharmacy data directory: %s\n", config.Assistant.Data.Dir)

	agent, err := assistant.NewAgent(context.Background(), config, dataStore, nil)
	if err != nil {
		log.Fatalf("Failed to create assistant: %v", err)
	}
	defer agent.Close()

	var router = api.SetupRouter(agent, dataStore)
	if webUI {
		staticFS, err := webui.GetDistFS()
		if err != nil {
			log.Printf("Web UI unavailable (%v), serving API only", err)
		} else {
			router = api.SetupRouterWithUI(agent, dataStore, staticFS)
		}
	}

	addr := ":" + port
	fmt.Printf("\nPharmAssist web server starting on http://localhost%s\n", addr)
	fmt.Printf("\nAPI Endpoints:\n")
	fmt.Printf("   GET  /                                  - Web chat UI (if enabled)\n")
	fmt.Printf("   GET  /api/v1/health                     - Health check\n")
	fmt.Printf("   POST /api/v1/chat                       - Conversational query\n")
	fmt.Printf("   GET  /api/v1/commands                   - Supported commands\n")
	fmt.Printf("   GET  /api/v1/history/:user              - Conversation history\n")
	fmt.Printf("   GET  /api/v1/activity                   - Activity log\n")
	fmt.Printf("   GET  /api/v1/collections                - Collection names\n")
	fmt.Printf("   GET  /api/v1/collections/:collection    - List records\n")
	fmt.Printf("   GET  /api/v1/medicines/:id/stock        - Stock level and status\n")
	fmt.Printf("\nOpen in browser: http://localhost%s\n\n", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
