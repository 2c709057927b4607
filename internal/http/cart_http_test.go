package handlers_test

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"storefront/internal/http/server"
)

const redmi = "m-redmi-note-12"

func TestAnonymousAddRedirectsToLogin(t *testing.T) {
	ta := newApp(t, server.Options{})
	resp := ta.post(t, "/cart", "", url.Values{"productId": {redmi}})
	if resp.StatusCode != http.StatusFound || resp.Header.Get("Location") != "/login" {
		t.Fatalf("expected redirect to /login, got %d %q", resp.StatusCode, resp.Header.Get("Location"))
	}
}

func TestCartFlowOverHTTP(t *testing.T) {
	ta := newApp(t, server.Options{})
	sid := ta.login(t, "alice@storefront.test")

	add := ta.post(t, "/cart", sid, url.Values{"productId": {redmi}})
	if add.StatusCode != http.StatusFound || add.Header.Get("Location") != "/cart" {
		t.Fatalf("add: expected redirect to /cart, got %d %q", add.StatusCode, add.Header.Get("Location"))
	}

	plus := ta.fetch(t, "/cart/plus", sid, url.Values{"productId": {redmi}})
	if plus.StatusCode != http.StatusOK {
		t.Fatalf("plus: expected 200, got %d", plus.StatusCode)
	}
	body := decodeJSON(t, plus)
	if body["quantity"] != float64(2) || body["subtotal"] != "29998" || body["total"] != "30068" {
		t.Fatalf("plus: unexpected body %v", body)
	}

	for i := 0; i < 3; i++ {
		ta.fetch(t, "/cart/minus", sid, url.Values{"productId": {redmi}})
	}
	minus := ta.fetch(t, "/cart/minus", sid, url.Values{"productId": {redmi}})
	body = decodeJSON(t, minus)
	if body["quantity"] != float64(1) || body["total"] != "15069" {
		t.Fatalf("minus: quantity must stay at 1, got %v", body)
	}

	page := ta.get(t, "/cart", sid)
	if page.StatusCode != http.StatusOK {
		t.Fatalf("cart page: expected 200, got %d", page.StatusCode)
	}

	rm := ta.fetch(t, "/cart/remove", sid, url.Values{"productId": {redmi}})
	body = decodeJSON(t, rm)
	if body["subtotal"] != "0" || body["total"] != "0" {
		t.Fatalf("remove: expected zero totals, got %v", body)
	}

	again := ta.fetch(t, "/cart/remove", sid, url.Values{"productId": {redmi}})
	if again.StatusCode != http.StatusNotFound {
		t.Fatalf("remove missing line: expected 404, got %d", again.StatusCode)
	}
}

func TestQuantityEndpointsNeedSession(t *testing.T) {
	ta := newApp(t, server.Options{})
	resp := ta.fetch(t, "/cart/plus", "", url.Values{"productId": {redmi}})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestPlusOnMissingLineIsNotFound(t *testing.T) {
	ta := newApp(t, server.Options{})
	sid := ta.login(t, "alice@storefront.test")
	resp := ta.fetch(t, "/cart/plus", sid, url.Values{"productId": {redmi}})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	var n int
	if err := ta.db.Get(&n, `SELECT COUNT(*) FROM cart_lines`); err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Fatalf("plus must not create a line, found %d", n)
	}
}

func TestOtherUsersLineUntouched(t *testing.T) {
	ta := newApp(t, server.Options{})
	alice := ta.login(t, "alice@storefront.test")
	bob := ta.login(t, "bob@storefront.test")
	ta.post(t, "/cart", alice, url.Values{"productId": {redmi}})

	resp := ta.fetch(t, "/cart/remove", bob, url.Values{"productId": {redmi}})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("bob removing alice's product: expected 404, got %d", resp.StatusCode)
	}
	var q int
	if err := ta.db.Get(&q, `SELECT quantity FROM cart_lines WHERE user_id='u-alice'`); err != nil {
		t.Fatal(err)
	}
	if q != 1 {
		t.Fatalf("alice's line changed: quantity %d", q)
	}
}

func TestAddUnknownProductIsNotFound(t *testing.T) {
	ta := newApp(t, server.Options{})
	sid := ta.login(t, "alice@storefront.test")
	resp := ta.post(t, "/cart", sid, url.Values{"productId": {"no-such-product"}})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCartMutationsExported(t *testing.T) {
	ta := newApp(t, server.Options{})
	sid := ta.login(t, "alice@storefront.test")
	ta.post(t, "/cart", sid, url.Values{"productId": {redmi}})

	body := readBody(t, ta.get(t, "/metrics", ""))
	if !strings.Contains(body, `storefront_cart_mutations_total{op="add",result="ok"} 1`) {
		t.Fatalf("metrics missing cart add counter:\n%s", body)
	}
}
