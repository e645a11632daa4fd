package client

import (
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistentJar_RoundTripsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	u, err := url.Parse("https://notes.example.com")
	require.NoError(t, err)

	jar, err := NewPersistentJar(path)
	require.NoError(t, err)
	jar.SetCookies(u, []*http.Cookie{{Name: "refresh_token", Value: "opaque-value", Path: "/"}})

	// A fresh jar, as a new process would create, sees the saved cookie.
	reloaded, err := NewPersistentJar(path)
	require.NoError(t, err)
	cookies := reloaded.Cookies(u)
	require.Len(t, cookies, 1)
	assert.Equal(t, "refresh_token", cookies[0].Name)
	assert.Equal(t, "opaque-value", cookies[0].Value)
}

func TestPersistentJar_MissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist.json")
	jar, err := NewPersistentJar(path)
	require.NoError(t, err)

	u, _ := url.Parse("https://notes.example.com")
	assert.Empty(t, jar.Cookies(u))
}

func TestPersistentJar_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cookies.json")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o600))

	jar, err := NewPersistentJar(path)
	require.NoError(t, err, "a corrupt cookie file must not prevent startup")

	u, _ := url.Parse("https://notes.example.com")
	assert.Empty(t, jar.Cookies(u))
}

func TestPersistentJar_InMemoryWhenPathEmpty(t *testing.T) {
	jar, err := NewPersistentJar("")
	require.NoError(t, err)

	u, _ := url.Parse("https://notes.example.com")
	jar.SetCookies(u, []*http.Cookie{{Name: "refresh_token", Value: "v", Path: "/"}})
	assert.Len(t, jar.Cookies(u), 1)
}
