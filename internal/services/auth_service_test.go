package services_test

import (
	"context"
	"errors"
	"testing"

	"storefront/internal/services"
)

func TestRegisterLoginLogout(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	u, err := e.auth.Register(ctx, services.RegisterInput{
		Name: "Carol", Email: "carol@storefront.test", Password: "Sunny#2026", Confirm: "Sunny#2026",
	})
	if err != nil {
		t.Fatal(err)
	}
	if u.Hash == "Sunny#2026" {
		t.Fatal("password stored in clear")
	}

	if _, _, err := e.auth.Login(ctx, "", "carol@storefront.test", "wrong"); !errors.Is(err, services.ErrBadCreds) {
		t.Fatalf("want ErrBadCreds, got %v", err)
	}
	_, sid, err := e.auth.Login(ctx, "", "CAROL@storefront.test", "Sunny#2026")
	if err != nil {
		t.Fatal(err)
	}
	cur, err := e.auth.CurrentUser(ctx, sid)
	if err != nil || cur.ID != u.ID {
		t.Fatalf("session should resolve to carol, got %+v %v", cur, err)
	}
	if err := e.auth.Logout(ctx, sid); err != nil {
		t.Fatal(err)
	}
	if _, err := e.auth.CurrentUser(ctx, sid); err == nil {
		t.Fatal("session should be anonymous after logout")
	}
}

func TestLoginRotatesSessionID(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	// An earlier login bound bob to the id the client still carries.
	_, planted, err := e.auth.Login(ctx, "", "bob@storefront.test", "Passw0rd!")
	if err != nil {
		t.Fatal(err)
	}
	u, sid, err := e.auth.Login(ctx, planted, "alice@storefront.test", "Passw0rd!")
	if err != nil {
		t.Fatal(err)
	}
	if sid == "" || sid == planted {
		t.Fatalf("login must issue a new session id, got %q", sid)
	}
	if cur, err := e.auth.CurrentUser(ctx, sid); err != nil || cur.ID != u.ID {
		t.Fatalf("new session should resolve to alice, got %+v %v", cur, err)
	}
	if cur, err := e.auth.CurrentUser(ctx, planted); err == nil {
		t.Fatalf("previous session id still resolves to %s", cur.ID)
	}
}

func TestRegister_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.auth.Register(ctx, services.RegisterInput{Name: "", Email: "bad", Password: "short"})
	var ve *services.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, got %v", err)
	}
	for _, f := range []string{"name", "email", "password"} {
		if ve.Fields[f] == "" {
			t.Errorf("missing message for %s", f)
		}
	}

	_, err = e.auth.Register(ctx, services.RegisterInput{
		Name: "Alice", Email: "alice@storefront.test", Password: "Passw0rd!", Confirm: "Passw0rd!",
	})
	if !errors.Is(err, services.ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}
}

func TestAddAddress_Validation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	_, err := e.addrs.Add(ctx, alice, services.AddressInput{Name: "Home", Locality: "x", City: "y", State: "z", Zipcode: "12"})
	var ve *services.ValidationError
	if !errors.As(err, &ve) || ve.Fields["zipcode"] == "" {
		t.Fatalf("want zipcode error, got %v", err)
	}
	if n := e.count(t, `SELECT COUNT(*) FROM addresses`); n != 0 {
		t.Fatalf("invalid address must not be stored, got %d", n)
	}
	if _, err := e.addrs.Add(ctx, "", services.AddressInput{}); !errors.Is(err, services.ErrUnauthenticated) {
		t.Fatalf("want ErrUnauthenticated, got %v", err)
	}
}
