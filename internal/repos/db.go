package repos

import (
	"context"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// driverNames maps config names onto database/sql driver names.
var driverNames = map[string]string{
	"sqlite":   "sqlite",
	"mysql":    "mysql",
	"postgres": "pgx",
}

// OpenDB connects, creates the schema and seeds demo data. Every step is
// idempotent, so it is safe on each start.
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	name, ok := driverNames[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
	db, err := sqlx.Open(name, dsn)
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// One connection: a single writer, and ":memory:" stays one database.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(10)
		db.SetConnMaxLifetime(5 * time.Minute)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db, driver); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	if err := seedIfEmpty(db); err != nil {
		return nil, fmt.Errorf("seed products: %w", err)
	}
	if err := seedUsers(db); err != nil {
		return nil, fmt.Errorf("seed users: %w", err)
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB, driver string) error {
	stmts := schemas[driver]
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return fmt.Errorf("%w (stmt: %.60s)", err, s)
		}
	}
	return nil
}

// withTx runs fn inside a transaction and commits only if fn returns nil.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Timestamp is fixed-width UTC so that text ordering equals time ordering on
// every backend.
func Timestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}

type seedProduct struct {
	ID, Title, Brand, Category, Selling, Discounted, Description, Image string
}

var demoProducts = []seedProduct{
	{"m-redmi-note-12", "Redmi Note 12", "Redmi", "M", "17999", "14999", "6.67in AMOLED, 5000mAh", "products/m-redmi-note-12.jpg"},
	{"m-samsung-m34", "Samsung Galaxy M34", "Samsung", "M", "24999", "18999", "6000mAh, 50MP OIS", "products/m-samsung-m34.jpg"},
	{"m-realme-c55", "Realme C55", "Realme", "M", "11999", "9999", "90Hz display, 33W charging", "products/m-realme-c55.jpg"},
	{"l-dell-inspiron-15", "Dell Inspiron 15", "Dell", "L", "62990", "54990", "i5 13th gen, 16GB, 512GB SSD", "products/l-dell-inspiron-15.jpg"},
	{"l-apple-mba-m2", "Apple MacBook Air M2", "Apple", "L", "119900", "104990", "13.6in Liquid Retina, 8GB, 256GB", "products/l-apple-mba-m2.jpg"},
	{"l-acer-aspire-3", "Acer Aspire 3", "Acer", "L", "41990", "32990", "Ryzen 5, 8GB, 512GB SSD", "products/l-acer-aspire-3.jpg"},
	{"tv-lg-43", "LG 43in 4K Smart TV", "LG", "TV", "49990", "31990", "webOS, HDR10", "products/tv-lg-43.jpg"},
	{"tv-sony-bravia-55", "Sony Bravia 55in", "Sony", "TV", "99900", "77990", "Google TV, Dolby Vision", "products/tv-sony-bravia-55.jpg"},
	{"tw-polo-shirt", "Cotton Polo Shirt", "Allen Solly", "TW", "1499", "799", "Regular fit, 100% cotton", "products/tw-polo-shirt.jpg"},
	{"tw-linen-shirt", "Linen Shirt", "Van Heusen", "TW", "2499", "1299", "Slim fit linen", "products/tw-linen-shirt.jpg"},
	{"bw-slim-jeans", "Slim Fit Jeans", "Levis", "BW", "2999", "1799", "Stretch denim", "products/bw-slim-jeans.jpg"},
	{"bw-chinos", "Cotton Chinos", "Peter England", "BW", "1599", "899", "Tapered chinos", "products/bw-chinos.jpg"},
	{"sh-nike-revolution", "Nike Revolution 6", "Nike", "SH", "3695", "2956", "Road running shoe", "products/sh-nike-revolution.jpg"},
	{"sh-reebok-classic", "Reebok Classic Leather", "Reebok", "SH", "7999", "5599", "Leather sneaker", "products/sh-reebok-classic.jpg"},
	{"ww-casio-edifice", "Casio Edifice", "Casio", "WW", "12995", "9995", "Chronograph, steel strap", "products/ww-casio-edifice.jpg"},
	{"ww-fossil-grant", "Fossil Grant", "Fossil", "WW", "13995", "11196", "Leather strap chronograph", "products/ww-fossil-grant.jpg"},
	{"ww-titan-edge", "Titan Edge", "Titan", "WW", "24995", "22495", "Slim ceramic", "products/ww-titan-edge.jpg"},
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo products")

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	q := tx.Rebind(`INSERT INTO products(id,title,brand,category,selling_price,discounted_price,description,image)
		VALUES(?,?,?,?,?,?,?,?)`)
	for _, p := range demoProducts {
		if _, err := tx.Exec(q, p.ID, p.Title, p.Brand, p.Category, p.Selling, p.Discounted, p.Description, p.Image); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// seedUsers ensures the demo shoppers exist.
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Raw string
	}
	users := []u{
		{"u-alice", "alice@storefront.test", "Alice", "Passw0rd!"},
		{"u-bob", "bob@storefront.test", "Bob", "Passw0rd!"},
	}

	tx, err := db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		var n int
		if err := tx.Get(&n, tx.Rebind(`SELECT COUNT(*) FROM users WHERE id=?`), x.ID); err != nil {
			return err
		}
		if n > 0 {
			continue
		}
		h, err := bcrypt.GenerateFromPassword([]byte(x.Raw), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(tx.Rebind(`INSERT INTO users(id,email,name,password_hash) VALUES(?,?,?,?)`),
			x.ID, x.Email, x.Name, string(h)); err != nil {
			return err
		}
	}
	return tx.Commit()
}
