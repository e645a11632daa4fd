package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/shelfmark/shelfmark/db"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) {
	t.Helper()
	origPath := db.Path
	db.Path = filepath.Join(t.TempDir(), "library.db")
	require.NoError(t, db.InitDB())
	t.Cleanup(func() {
		require.NoError(t, db.CloseDB())
		db.Db = nil
		db.Path = origPath
	})
}

func runCommand(t *testing.T, cmdFunc func() *cobra.Command, args ...string) string {
	t.Helper()
	c := cmdFunc()
	buf := new(bytes.Buffer)
	c.SetOut(buf)
	c.SetErr(buf)
	c.SetArgs(args)
	require.NoError(t, c.Execute())
	return buf.String()
}

func TestListCmd_EmptyCache(t *testing.T) {
	setupTestDB(t)

	out := runCommand(t, listCmd)
	assert.Contains(t, out, "No books found in the library cache")
}

func TestSearchCmd_FindsSeededBook(t *testing.T) {
	setupTestDB(t)
	require.NoError(t, db.UpsertBook(db.Book{ID: 7, Title: "The Mythical Man-Month", Author: "Brooks"}))

	out := runCommand(t, searchCmd, "Mythical")
	// The table goes to stdout; the command output only carries errors, so
	// the absence of an error message is the signal here.
	assert.NotContains(t, out, "Error")

	out = runCommand(t, searchCmd, "zzz-no-match")
	assert.Contains(t, out, "No books matched the query.")
}

func TestInfoCmd_ShowsBookAndHighlights(t *testing.T) {
	setupTestDB(t)
	require.NoError(t, db.UpsertBook(db.Book{ID: 7, Title: "The Mythical Man-Month", Author: "Brooks"}))
	require.NoError(t, db.ReplaceHighlights(7, []db.Highlight{
		{ID: 1, BookID: 7, Text: "Adding manpower to a late software project makes it later.", Note: "Brooks's law"},
	}))

	out := runCommand(t, infoCmd, "--id", "7")
	assert.Contains(t, out, "The Mythical Man-Month")
	assert.Contains(t, out, "Brooks")
	assert.Contains(t, out, "Cached highlights: 1")
	assert.Contains(t, out, "Brooks's law")
}

func TestInfoCmd_UnknownID(t *testing.T) {
	setupTestDB(t)

	out := runCommand(t, infoCmd, "--id", "12345")
	assert.Contains(t, out, "No book found with the specified ID.")
}

func TestInfoCmd_InvalidID(t *testing.T) {
	setupTestDB(t)

	out := runCommand(t, infoCmd, "--id", "-1")
	assert.Contains(t, out, "book ID must be a positive integer")
}

func TestExportCmd_WritesLibraryJSON(t *testing.T) {
	setupTestDB(t)
	require.NoError(t, db.UpsertBook(db.Book{ID: 7, Title: "A Book", Author: "A"}))
	require.NoError(t, db.ReplaceHighlights(7, []db.Highlight{{ID: 1, BookID: 7, Text: "passage"}}))

	exportDir := t.TempDir()
	out := runCommand(t, exportCmd, exportDir)
	assert.Contains(t, out, "Exported 1 books")

	data, err := os.ReadFile(filepath.Join(exportDir, "library.json"))
	require.NoError(t, err)

	var exported []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &exported))
	require.Len(t, exported, 1)
	assert.Equal(t, "A Book", exported[0]["title"])
	highlights, ok := exported[0]["highlights"].([]interface{})
	require.True(t, ok)
	assert.Len(t, highlights, 1)
}

func TestExportCmd_EmptyCache(t *testing.T) {
	setupTestDB(t)

	out := runCommand(t, exportCmd, t.TempDir())
	assert.Contains(t, out, "Nothing to export")
}

func TestValidateCredentials(t *testing.T) {
	tests := []struct {
		username string
		password string
		want     bool
	}{
		{"ada", "pw", true},
		{"", "pw", false},
		{"ada", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		if got := validateCredentials(tt.username, tt.password); got != tt.want {
			t.Errorf("validateCredentials(%q, %q) = %v, want %v", tt.username, tt.password, got, tt.want)
		}
	}
}
