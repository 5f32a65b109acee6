// Package repl provides the interactive pharmacy assistant prompt.
package repl

import (
	"context"
	"os"
	"testing"
	"time"

	prompt "github.com/c-bata/go-prompt"

	"pharmassist/internal/assistant"
	"pharmassist/internal/store"
)

// TestExitHandling tests that the exit handling is thread-safe and doesn't cause panics
func TestExitHandling(t *testing.T) {
	// Test that multiple concurrent exit attempts don't cause panics
	for i := 0; i < 10; i++ {
		go func() {
			exitMutex.Lock()
			if exiting {
				exitMutex.Unlock()
				return
			}
			exiting = true
			exitMutex.Unlock()

			// Reset for next test
			time.Sleep(1 * time.Millisecond)
			exitMutex.Lock()
			exiting = false
			exitMutex.Unlock()
		}()
	}

	// Wait for all goroutines to complete
	time.Sleep(10 * time.Millisecond)

	// Test should complete without panics
	t.Log("Exit handling test completed successfully")
}

// TestWSLDetection tests WSL detection functionality
func TestWSLDetection(t *testing.T) {
	// Save original environment
	originalWSLDistro := os.Getenv("WSL_DISTRO_NAME")
	originalWSLEnv := os.Getenv("WSLENV")

	defer func() {
		// Restore original environment
		os.Setenv("WSL_DISTRO_NAME", originalWSLDistro)
		os.Setenv("WSLENV", originalWSLEnv)
	}()

	// Test WSL detection with WSL_DISTRO_NAME
	os.Setenv("WSL_DISTRO_NAME", "Ubuntu")
	os.Unsetenv("WSLENV")
	if !isWSL() {
		t.Error("Expected isWSL() to return true when WSL_DISTRO_NAME is set")
	}

	// Test WSL detection with WSLENV
	os.Unsetenv("WSL_DISTRO_NAME")
	os.Setenv("WSLENV", "PATH/l")
	if !isWSL() {
		t.Error("Expected isWSL() to return true when WSLENV is set")
	}

	// Test no WSL detection
	os.Unsetenv("WSL_DISTRO_NAME")
	os.Unsetenv("WSLENV")
	if isWSL() {
		t.Error("Expected isWSL() to return false when neither WSL env var is set")
	}
}

// TestCompleter tests that built-ins and example questions are suggested
func TestCompleter(t *testing.T) {
	s, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	config := assistant.DefaultConfig()
	config.Assistant.LLM.Provider = "none"
	agent, err := assistant.NewAgent(context.Background(), config, s, nil)
	if err != nil {
		t.Fatalf("NewAgent failed: %v", err)
	}
	defer agent.Close()

	complete := completer(agent)

	// An empty document matches every suggestion.
	suggestions := complete(prompt.Document{})
	found := false
	for _, s := range suggestions {
		if s.Text == "help" {
			found = true
		}
	}
	if !found {
		t.Error("Expected 'help' in suggestions")
	}
	if len(suggestions) < 7 {
		t.Errorf("Expected at least the built-in suggestions, got %d", len(suggestions))
	}
}
