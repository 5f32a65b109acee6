package main

import (
	"bytes"
	"strings"
	"testing"

	"pharmassist/internal/store"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	// Reset flag-bound globals between runs.
	cfgFile = ""
	dataDir = ""

	out := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestAskCommand(t *testing.T) {
	dir := t.TempDir()
	s, err := store.Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	for _, name := range []string{"Aspirin", "Ibuprofen"} {
		if _, err := s.Create(store.Medicines, store.Record{"name": name, "low_stock_limit": 10}); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	output, err := runCLI(t, "--data", dir, "ask", "how", "many", "medicines", "do", "we", "have")
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if !strings.Contains(output, "Total Medicines") {
		t.Errorf("Expected medicine count in output, got: %q", output)
	}
	if !strings.Contains(output, "2") {
		t.Errorf("Expected count of 2 in output, got: %q", output)
	}
}

func TestAskCommandRequiresArgs(t *testing.T) {
	_, err := runCLI(t, "--data", t.TempDir(), "ask")
	if err == nil {
		t.Error("Expected an error when ask is called without a question")
	}
}

func TestAskCommandUnknownQuestion(t *testing.T) {
	output, err := runCLI(t, "--data", t.TempDir(), "ask", "what", "is", "the", "meaning", "of", "life")
	if err != nil {
		t.Fatalf("ask failed: %v", err)
	}
	if !strings.Contains(output, "help") {
		t.Errorf("Expected a hint pointing at help, got: %q", output)
	}
}

func TestMissingConfigFile(t *testing.T) {
	_, err := runCLI(t, "--config", "/nonexistent/config.yaml", "ask", "hello")
	if err == nil {
		t.Error("Expected an error for a missing config file")
	}
	if err != nil && !strings.Contains(err.Error(), "failed to load configuration") {
		t.Errorf("Unexpected error: %v", err)
	}
}
