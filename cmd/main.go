// PharmAssist CLI
//
// A conversational assistant for hospital pharmacy data. Understands
// plain-English questions and commands about medicines, patients,
// suppliers, departments, stores and stock, with spelling correction
// and multi-turn confirmations.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pharmassist/internal/assistant"
	"pharmassist/internal/command"
	"pharmassist/internal/repl"
	"pharmassist/internal/store"
)

var version = "1.0.0"

var (
	cfgFile string
	dataDir string
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pharmassist",
		Short: "PharmAssist - conversational hospital pharmacy assistant",
		Long: `PharmAssist answers plain-English questions about hospital pharmacy
data: medicines, patients, suppliers, departments, stores and stock.
It corrects misspellings, asks for confirmation when a question is
ambiguous, and requires an explicit confirmation phrase before any
destructive command.

Run without arguments to start the interactive prompt.`,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, dataStore, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer agent.Close()
			repl.Start(agent, dataStore)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: built-in defaults)")
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "", "data directory (overrides config)")

	rootCmd.AddCommand(newAskCmd())
	return rootCmd
}

// newAskCmd creates the one-shot query command.
func newAskCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <question...>",
		Short: "Ask a single question and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agent, dataStore, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer agent.Close()

			handler := &command.Handler{
				Agent: agent,
				Store: dataStore,
				State: &command.ReplState{UserID: "cli"},
				Out:   cmd.OutOrStdout(),
			}
			handler.Execute(strings.Join(args, " "))
			return nil
		},
	}
}

// setup loads the configuration, opens the store and builds the agent.
func setup(ctx context.Context) (*assistant.Agent, *store.FileStore, error) {
	config, err := assistant.LoadConfig(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if dataDir != "" {
		config.Assistant.Data.Dir = dataDir
	}

	dataStore, err := store.Open(config.Assistant.Data.Dir)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open data store: %w", err)
	}

	agent, err := assistant.NewAgent(ctx, config, dataStore, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create assistant: %w", err)
	}
	return agent, dataStore, nil
}
