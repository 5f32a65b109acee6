// Package repl provides the interactive pharmacy assistant prompt.
//
// Exit handling is thread-safe and uses os.Exit() instead of panic()
// to avoid conflicts with go-prompt's internal signal handling, which
// can otherwise cause "close of closed channel" panics on Windows.
package repl

import (
	"fmt"
	"os"
	"os/exec"
	"sync"

	prompt "github.com/c-bata/go-prompt"
	"github.com/google/uuid"

	"pharmassist/internal/assistant"
	"pharmassist/internal/command"
	"pharmassist/internal/store"
)

var (
	exiting   = false
	exitMutex sync.Mutex
)

// Start runs the interactive prompt until the user exits.
func Start(agent *assistant.Agent, dataStore *store.FileStore) {
	state := &command.ReplState{UserID: uuid.New().String()}
	handler := &command.Handler{Agent: agent, Store: dataStore, State: state}

	fmt.Println("Welcome to PharmAssist, the hospital pharmacy assistant.")
	fmt.Println("Ask questions in plain English, e.g. 'how many medicines do we have'.")
	fmt.Println("Type 'help' for examples, 'exit' or 'quit' to exit.")

	p := prompt.New(
		func(in string) {
			if !handler.Execute(in) {
				exitMutex.Lock()
				if exiting {
					exitMutex.Unlock()
					return
				}
				exiting = true
				exitMutex.Unlock()

				fmt.Println("Bye.")
				if isWSL() {
					fixWSLTerminal()
				}
				os.Exit(0)
			}
		},
		completer(agent),
		prompt.OptionLivePrefix(func() (string, bool) {
			return "pharmassist> ", true
		}),
	)

	defer func() {
		if r := recover(); r != nil {
			if r == "exit" {
				return
			}
			panic(r)
		}
	}()

	p.Run()
}

// isWSL checks if we're running in Windows Subsystem for Linux.
func isWSL() bool {
	return os.Getenv("WSL_DISTRO_NAME") != "" || os.Getenv("WSLENV") != ""
}

// fixWSLTerminal restores terminal input visibility for WSL.
func fixWSLTerminal() {
	cmd := exec.Command("reset")
	_ = cmd.Run()

	cmd = exec.Command("stty", "echo")
	_ = cmd.Run()

	fmt.Print("\033[?25h") // Show cursor
	fmt.Print("\033[0m")   // Reset attributes
}

func completer(agent *assistant.Agent) prompt.Completer {
	builtins := []prompt.Suggest{
		{Text: "help", Description: "Show help with example questions"},
		{Text: "history", Description: "Show your recent conversation turns"},
		{Text: "stats", Description: "Show query statistics"},
		{Text: "activity", Description: "Show recent activity log entries"},
		{Text: "clear", Description: "Clear the screen"},
		{Text: "exit", Description: "Exit"},
		{Text: "quit", Description: "Exit"},
	}
	examples := make([]prompt.Suggest, 0, len(agent.SupportedCommands()))
	for _, cmd := range agent.SupportedCommands() {
		examples = append(examples, prompt.Suggest{Text: cmd, Description: "Example question"})
	}
	all := append(builtins, examples...)
	return func(d prompt.Document) []prompt.Suggest {
		return prompt.FilterHasPrefix(all, d.GetWordBeforeCursor(), true)
	}
}
