package handlers_test

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"storefront/internal/http/server"
	"storefront/internal/repos"
)

// Seeded passwords are stored as bcrypt hashes.
func TestPasswordsSeededAreHashed(t *testing.T) {
	db, err := repos.OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	var hashes []string
	if err := db.Select(&hashes, `SELECT password_hash FROM users`); err != nil {
		t.Fatalf("select hashes: %v", err)
	}
	if len(hashes) == 0 {
		t.Fatal("no users seeded")
	}
	for _, h := range hashes {
		if strings.Contains(h, "Passw0rd!") {
			t.Fatalf("hash contains plaintext password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(h), []byte("Passw0rd!")); err != nil {
			t.Fatalf("seed hash does not validate known password: %v", err)
		}
	}
}

func TestLoginSuccessFailAndThrottle(t *testing.T) {
	ta := newApp(t, server.Options{LoginLimit: 2})

	bad := ta.post(t, "/login", "", url.Values{"email": {"alice@storefront.test"}, "password": {"Wrongpass1!"}})
	if bad.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad creds, got %d", bad.StatusCode)
	}

	good := ta.post(t, "/login", "", url.Values{"email": {"alice@storefront.test"}, "password": {"Passw0rd!"}})
	if good.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect on success, got %d", good.StatusCode)
	}

	third := ta.post(t, "/login", "", url.Values{"email": {"alice@storefront.test"}, "password": {"Wrongpass1!"}})
	if third.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after throttle, got %d", third.StatusCode)
	}
}

func TestAuthLogging(t *testing.T) {
	ta := newApp(t, server.Options{})

	fail := captureLogs(t, func() {
		ta.post(t, "/login", "", url.Values{"email": {"alice@storefront.test"}, "password": {"Wrongpass1!"}})
	})
	e, ok := hasAction(fail, "auth.login.fail")
	if !ok {
		t.Fatal("auth.login.fail log not found")
	}
	if _, ok := e.Fields["email"]; !ok {
		t.Fatal("auth.login.fail missing email field")
	}

	success := captureLogs(t, func() { ta.login(t, "alice@storefront.test") })
	if _, ok := hasAction(success, "auth.login.success"); !ok {
		t.Fatal("auth.login.success log not found")
	}
}

func TestLoginIssuesFreshSession(t *testing.T) {
	ta := newApp(t, server.Options{})
	planted := "attacker-chosen"

	resp := ta.post(t, "/login", planted, url.Values{"email": {"alice@storefront.test"}, "password": {"Passw0rd!"}})
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected redirect on success, got %d", resp.StatusCode)
	}
	sid := extractCookie(resp, "sid")
	if sid == "" || sid == planted {
		t.Fatalf("login must set a new sid, got %q", sid)
	}
	if u, err := ta.deps.Auth.CurrentUser(context.Background(), planted); err == nil {
		t.Fatalf("pre-login sid resolves to %s", u.ID)
	}
	if u, err := ta.deps.Auth.CurrentUser(context.Background(), sid); err != nil || u.ID != "u-alice" {
		t.Fatalf("new sid should resolve to alice, got %+v %v", u, err)
	}

	out := ta.post(t, "/logout", sid, nil)
	if out.StatusCode != http.StatusFound {
		t.Fatalf("logout: expected redirect, got %d", out.StatusCode)
	}
	if _, err := ta.deps.Auth.CurrentUser(context.Background(), sid); err == nil {
		t.Fatal("session should be anonymous after logout")
	}
}

func TestRegisterThenLogin(t *testing.T) {
	ta := newApp(t, server.Options{})

	weak := ta.post(t, "/register", "", url.Values{
		"name": {"Dan"}, "email": {"dan@storefront.test"}, "password": {"weak"}, "confirm": {"weak"},
	})
	if weak.StatusCode != http.StatusBadRequest {
		t.Fatalf("weak password: expected 400, got %d", weak.StatusCode)
	}

	ok := ta.post(t, "/register", "", url.Values{
		"name": {"Dan"}, "email": {"dan@storefront.test"}, "password": {"Sunny#2026"}, "confirm": {"Sunny#2026"},
	})
	if ok.StatusCode != http.StatusFound || ok.Header.Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", ok.StatusCode, ok.Header.Get("Location"))
	}

	dup := ta.post(t, "/register", "", url.Values{
		"name": {"Dan"}, "email": {"dan@storefront.test"}, "password": {"Sunny#2026"}, "confirm": {"Sunny#2026"},
	})
	if dup.StatusCode != http.StatusBadRequest {
		t.Fatalf("duplicate email: expected 400, got %d", dup.StatusCode)
	}

	login := ta.post(t, "/login", "", url.Values{"email": {"dan@storefront.test"}, "password": {"Sunny#2026"}})
	if login.StatusCode != http.StatusFound {
		t.Fatalf("new account should log in, got %d", login.StatusCode)
	}
}

func TestCSRFRequired(t *testing.T) {
	ta := newApp(t, server.Options{})
	sid := ta.login(t, "alice@storefront.test")

	entries := captureLogs(t, func() {
		req := strings.NewReader("productId=m-redmi-note-12")
		resp := ta.rawPost(t, "/cart", sid, req)
		if resp.StatusCode != http.StatusForbidden {
			t.Fatalf("expected 403 without csrf token, got %d", resp.StatusCode)
		}
	})
	if _, ok := hasAction(entries, "csrf.fail"); !ok {
		t.Fatal("csrf.fail log not found")
	}
}
