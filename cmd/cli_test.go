package cmd

import (
	"path/filepath"
	"testing"

	"github.com/shelfmark/shelfmark/db"
)

// TestCreateRootCmd checks that createRootCmd returns a root command
// with the expected use string, subcommands, and a replaced help command.
func TestCreateRootCmd(t *testing.T) {
	rootCmd := createRootCmd()
	if rootCmd.Use != "shelfmark" {
		t.Errorf("expected root command use to be 'shelfmark', got: %s", rootCmd.Use)
	}

	subCommands := rootCmd.Commands()
	if len(subCommands) == 0 {
		t.Error("expected root command to have subcommands, got none")
	}

	wanted := map[string]bool{
		"login":    false,
		"register": false,
		"logout":   false,
		"whoami":   false,
		"status":   false,
		"library":  false,
		"version":  false,
	}
	for _, sub := range subCommands {
		if _, ok := wanted[sub.Name()]; ok {
			wanted[sub.Name()] = true
		}
	}
	for name, found := range wanted {
		if !found {
			t.Errorf("expected subcommand %q to be registered", name)
		}
	}

	// Verify that the default help command is replaced (i.e. no subcommand with Use "help")
	for _, sub := range subCommands {
		if sub.Use == "help" {
			t.Error("expected help command to be replaced, but found a subcommand with use 'help'")
		}
	}
}

// TestInitializeAndCloseDatabase sets a temporary DB path and calls
// initializeDatabase and closeDatabase. If no os.Exit occurs, the test passes.
func TestInitializeAndCloseDatabase(t *testing.T) {
	tmpDir := t.TempDir()
	origPath := db.Path
	db.Path = filepath.Join(tmpDir, "library.db")
	t.Cleanup(func() { db.Path = origPath })

	initializeDatabase()
	closeDatabase()
}
