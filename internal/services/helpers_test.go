package services_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"

	"storefront/internal/lock"
	"storefront/internal/metrics"
	"storefront/internal/repos"
	"storefront/internal/services"
)

type env struct {
	db      *sqlx.DB
	cart    *services.CartService
	orders  *services.OrderService
	addrs   *services.AddressService
	catalog *services.CatalogService
	auth    *services.AuthService
	outbox  *repos.OutboxRepo
	metrics *metrics.Metrics
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db, err := repos.OpenDB("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })

	m := metrics.New()
	locks := lock.NewLocal()
	carts := repos.NewCartRepo(db)
	prods := repos.NewProductRepo(db)
	addrs := repos.NewAddressRepo(db)
	return &env{
		db:      db,
		cart:    services.NewCartService(carts, prods, locks, m),
		orders:  services.NewOrderService(carts, addrs, repos.NewOrderRepo(db), locks, m, "orders.placed"),
		addrs:   services.NewAddressService(addrs),
		catalog: services.NewCatalogService(prods),
		auth:    services.NewAuthService(repos.NewUserRepo(db)),
		outbox:  repos.NewOutboxRepo(db),
		metrics: m,
	}
}

// product inserts a test product with the given discounted price.
func (e *env) product(t *testing.T, id, price string) {
	t.Helper()
	_, err := e.db.Exec(`INSERT INTO products(id,title,brand,category,selling_price,discounted_price,description,image)
		VALUES(?,?,?,?,?,?,'','')`, id, "Test "+id, "Acme", "M", price, price)
	if err != nil {
		t.Fatal(err)
	}
}

func (e *env) address(t *testing.T, userID string) string {
	t.Helper()
	a, err := e.addrs.Add(context.Background(), userID, services.AddressInput{
		Name: "Home", Locality: "12 MG Road", City: "Bengaluru", State: "Karnataka", Zipcode: "560001",
	})
	if err != nil {
		t.Fatal(err)
	}
	return a.ID
}

func (e *env) count(t *testing.T, query string, args ...any) int {
	t.Helper()
	var n int
	if err := e.db.Get(&n, query, args...); err != nil {
		t.Fatal(err)
	}
	return n
}
