package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	"storefront/internal/http/server"
	"storefront/internal/lock"
	"storefront/internal/metrics"
	"storefront/internal/repos"
)

type testApp struct {
	app     *fiber.App
	db      *sqlx.DB
	deps    *handlers.Deps
	metrics *metrics.Metrics
	csrf    string
}

func newApp(t *testing.T, o server.Options) *testApp {
	t.Helper()
	cfg := config.Config{
		DBDriver:     "sqlite",
		DBDSN:        ":memory:",
		MediaDir:     "../../web/media",
		TemplatesDir: "../../web/templates",
		OrderTopic:   "orders.placed",
	}
	db, err := repos.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if o.RateLimit == 0 {
		o.RateLimit = 1000
	}
	if o.LoginLimit == 0 {
		o.LoginLimit = 100
	}
	o.Config, o.DB, o.Locks = cfg, db, lock.NewLocal()
	if o.Metrics == nil {
		o.Metrics = metrics.New()
	}
	app, deps := server.New(o)
	ta := &testApp{app: app, db: db, deps: deps, metrics: o.Metrics}

	resp, err := app.Test(httptest.NewRequest("GET", "/login", nil))
	if err != nil {
		t.Fatal(err)
	}
	ta.csrf = extractCookie(resp, "csrf_")
	if ta.csrf == "" {
		t.Fatal("csrf token missing")
	}
	return ta
}

func extractCookie(resp *http.Response, name string) string {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}

// post sends a form with the csrf token and the given sid (may be empty).
func (ta *testApp) post(t *testing.T, path, sid string, form url.Values) *http.Response {
	t.Helper()
	if form == nil {
		form = url.Values{}
	}
	form.Set("csrf", ta.csrf)
	req := httptest.NewRequest("POST", path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: ta.csrf})
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := ta.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

// rawPost sends body as a form with the csrf cookie but no token.
func (ta *testApp) rawPost(t *testing.T, path, sid string, body io.Reader) *http.Response {
	t.Helper()
	return ta.do(t, path, sid, body, false)
}

// fetch mimics the cart buttons: token in the X-Csrf-Token header.
func (ta *testApp) fetch(t *testing.T, path, sid string, form url.Values) *http.Response {
	t.Helper()
	return ta.do(t, path, sid, strings.NewReader(form.Encode()), true)
}

func (ta *testApp) do(t *testing.T, path, sid string, body io.Reader, header bool) *http.Response {
	t.Helper()
	req := httptest.NewRequest("POST", path, body)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "csrf_", Value: ta.csrf})
	if header {
		req.Header.Set("X-Csrf-Token", ta.csrf)
	}
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := ta.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func (ta *testApp) get(t *testing.T, path, sid string) *http.Response {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	}
	resp, err := ta.app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

// login signs in a seeded user and returns the session id.
func (ta *testApp) login(t *testing.T, email string) string {
	t.Helper()
	resp := ta.post(t, "/login", "", url.Values{"email": {email}, "password": {"Passw0rd!"}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("login %s: expected redirect, got %d", email, resp.StatusCode)
	}
	sid := extractCookie(resp, "sid")
	if sid == "" {
		t.Fatal("sid not set after login")
	}
	return sid
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	return out
}

type logEntry struct {
	Level  string         `json:"level"`
	Action string         `json:"action"`
	UserID string         `json:"user_id"`
	Fields map[string]any `json:"fields"`
}

type lockedWriter struct {
	w  *bytes.Buffer
	mu *sync.Mutex
}

func (lw *lockedWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	return lw.w.Write(p)
}

// captureLogs swaps the standard logger output while fn runs.
func captureLogs(t *testing.T, fn func()) []logEntry {
	t.Helper()
	var buf bytes.Buffer
	var mu sync.Mutex
	oldW := log.Writer()
	oldFlags := log.Flags()
	log.SetOutput(&lockedWriter{w: &buf, mu: &mu})
	log.SetFlags(0)
	defer func() {
		log.SetOutput(oldW)
		log.SetFlags(oldFlags)
	}()

	fn()

	var entries []logEntry
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var e logEntry
		if err := json.Unmarshal([]byte(line), &e); err == nil {
			entries = append(entries, e)
		}
	}
	return entries
}

func hasAction(entries []logEntry, action string) (logEntry, bool) {
	for _, e := range entries {
		if e.Action == action {
			return e, true
		}
	}
	return logEntry{}, false
}
