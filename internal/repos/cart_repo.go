package repos

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// ErrStaleLine means the line changed between read and write; the caller may
// re-read and retry.
var ErrStaleLine = errors.New("cart line changed concurrently")

type CartRepo struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db, now: time.Now} }

// CartLineRow is a cart line joined with the product fields shown in the cart.
type CartLineRow struct {
	ProductID       string          `db:"product_id"`
	Title           string          `db:"title"`
	Brand           string          `db:"brand"`
	Image           string          `db:"image"`
	SellingPrice    decimal.Decimal `db:"selling_price"`
	DiscountedPrice decimal.Decimal `db:"discounted_price"`
	Quantity        int             `db:"quantity"`
}

const lineCols = `id, user_id, product_id, quantity, version, created_at, updated_at`

func getLine(ctx context.Context, q sqlx.ExtContext, userID, productID string) (domain.CartLine, error) {
	var l domain.CartLine
	err := sqlx.GetContext(ctx, q, &l, q.Rebind(`
		SELECT `+lineCols+` FROM cart_lines WHERE user_id = ? AND product_id = ?`), userID, productID)
	return l, err
}

// Get returns the caller's own line for productID or sql.ErrNoRows.
func (r *CartRepo) Get(ctx context.Context, userID, productID string) (domain.CartLine, error) {
	return getLine(ctx, r.db, userID, productID)
}

// Add creates a quantity-1 line, or bumps the existing line for the same
// product by one. There is never more than one line per (user, product).
func (r *CartRepo) Add(ctx context.Context, userID, productID string) (domain.CartLine, error) {
	var out domain.CartLine
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		now := Timestamp(r.now())
		l, err := getLine(ctx, tx, userID, productID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			out = domain.CartLine{
				ID: uuid.NewString(), UserID: userID, ProductID: productID,
				Quantity: 1, Version: 1, CreatedAt: now, UpdatedAt: now,
			}
			_, err = tx.ExecContext(ctx, tx.Rebind(`
				INSERT INTO cart_lines(`+lineCols+`) VALUES(?,?,?,?,?,?,?)`),
				out.ID, out.UserID, out.ProductID, out.Quantity, out.Version, out.CreatedAt, out.UpdatedAt)
			return err
		case err != nil:
			return err
		}
		out, err = setQuantity(ctx, tx, l, l.Quantity+1, now)
		return err
	})
	return out, err
}

// Adjust moves the quantity by delta but never below floor. A line already at
// the floor is returned unchanged.
func (r *CartRepo) Adjust(ctx context.Context, userID, productID string, delta, floor int) (domain.CartLine, error) {
	var out domain.CartLine
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		l, err := getLine(ctx, tx, userID, productID)
		if err != nil {
			return err
		}
		qty := l.Quantity + delta
		if qty < floor {
			qty = floor
		}
		if qty == l.Quantity {
			out = l
			return nil
		}
		out, err = setQuantity(ctx, tx, l, qty, Timestamp(r.now()))
		return err
	})
	return out, err
}

func setQuantity(ctx context.Context, tx *sqlx.Tx, l domain.CartLine, qty int, now string) (domain.CartLine, error) {
	res, err := tx.ExecContext(ctx, tx.Rebind(`
		UPDATE cart_lines SET quantity = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`), qty, now, l.ID, l.Version)
	if err != nil {
		return domain.CartLine{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.CartLine{}, ErrStaleLine
	}
	l.Quantity = qty
	l.Version++
	l.UpdatedAt = now
	return l, nil
}

// Delete removes the caller's line for productID; sql.ErrNoRows if none.
func (r *CartRepo) Delete(ctx context.Context, userID, productID string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM cart_lines WHERE user_id = ? AND product_id = ?`), userID, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *CartRepo) Lines(ctx context.Context, userID string) ([]CartLineRow, error) {
	rows := []CartLineRow{}
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT cl.product_id, p.title, p.brand, p.image, p.selling_price, p.discounted_price, cl.quantity
		FROM cart_lines cl JOIN products p ON p.id = cl.product_id
		WHERE cl.user_id = ?
		ORDER BY cl.created_at, cl.id`), userID)
	return rows, err
}

func (r *CartRepo) Count(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, r.db.Rebind(`SELECT COUNT(*) FROM cart_lines WHERE user_id = ?`), userID)
	return n, err
}
