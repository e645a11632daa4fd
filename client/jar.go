package client

import (
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// PersistentJar is a cookie jar that mirrors its contents to a JSON file, so
// the refresh cookie the server sets survives process restarts and a later
// run can silently restore the session. The cookie values are opaque to this
// program; nothing outside the jar ever inspects them.
type PersistentJar struct {
	mu   sync.Mutex
	jar  *cookiejar.Jar
	path string
	urls map[string]struct{} // URLs cookies were set for, so Save knows where to look
}

// savedCookie carries what cookiejar's Cookies view exposes: name and value.
// Attributes like Path and Secure are not recoverable from the jar, so they
// are not persisted.
type savedCookie struct {
	URL   string `json:"url"`
	Name  string `json:"name"`
	Value string `json:"value"`
}

// NewPersistentJar creates a jar backed by the file at path, loading any
// previously saved cookies. An empty path keeps the jar in memory only.
func NewPersistentJar(path string) (*PersistentJar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	p := &PersistentJar{jar: jar, path: path, urls: make(map[string]struct{})}
	if path != "" {
		if err := p.load(); err != nil {
			// A corrupt or unreadable cookie file means starting logged out,
			// not failing to start.
			log.Warn().Err(err).Str("path", path).Msg("Could not load saved cookies, starting with an empty jar")
		}
	}
	return p, nil
}

// SetCookies stores the cookies and persists the jar. This is the write path
// for the refresh credential: the server's Set-Cookie on login, register and
// refresh lands here.
func (p *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	p.mu.Lock()
	p.jar.SetCookies(u, cookies)
	p.urls[u.Scheme+"://"+u.Host] = struct{}{}
	p.mu.Unlock()

	if p.path != "" {
		if err := p.save(); err != nil {
			log.Warn().Err(err).Str("path", p.path).Msg("Failed to persist cookies")
		}
	}
}

// Cookies returns the cookies to attach to a request to u.
func (p *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.jar.Cookies(u)
}

func (p *PersistentJar) load() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	var saved []savedCookie
	if err := json.Unmarshal(data, &saved); err != nil {
		return err
	}

	byURL := make(map[string][]*http.Cookie)
	for _, sc := range saved {
		byURL[sc.URL] = append(byURL[sc.URL], &http.Cookie{Name: sc.Name, Value: sc.Value})
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	for rawURL, cookies := range byURL {
		u, err := url.Parse(rawURL)
		if err != nil {
			continue
		}
		p.jar.SetCookies(u, cookies)
		p.urls[rawURL] = struct{}{}
	}
	log.Debug().Int("count", len(saved)).Msg("Loaded saved cookies")
	return nil
}

func (p *PersistentJar) save() error {
	p.mu.Lock()
	var saved []savedCookie
	for rawURL := range p.urls {
		u, err := url.Parse(rawURL)
		if err != nil {
			continue
		}
		for _, c := range p.jar.Cookies(u) {
			saved = append(saved, savedCookie{URL: rawURL, Name: c.Name, Value: c.Value})
		}
	}
	p.mu.Unlock()

	data, err := json.MarshalIndent(saved, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o750); err != nil {
		return err
	}
	// 0600: the refresh credential is a secret.
	return os.WriteFile(p.path, data, 0o600)
}
