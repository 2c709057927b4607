package repos

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"storefront/internal/domain"
)

// ErrNoLines is returned by PlaceFromCart when the user has nothing to place.
var ErrNoLines = errors.New("cart has no lines")

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

// OrderRow is a placed order joined with what the history page shows.
type OrderRow struct {
	ID          string             `db:"id"`
	CheckoutID  string             `db:"checkout_id"`
	ProductID   string             `db:"product_id"`
	Title       string             `db:"title"`
	Image       string             `db:"image"`
	AddressName string             `db:"address_name"`
	City        string             `db:"city"`
	Quantity    int                `db:"quantity"`
	UnitPrice   decimal.Decimal    `db:"unit_price"`
	PlacedAt    string             `db:"placed_at"`
	Status      domain.OrderStatus `db:"status"`
}

type PlaceParams struct {
	UserID     string
	AddressID  string
	CheckoutID string
	PlacedAt   string
	Topic      string // outbox topic for the order.placed event
}

type placeLine struct {
	ID        string          `db:"id"`
	ProductID string          `db:"product_id"`
	Quantity  int             `db:"quantity"`
	Version   int             `db:"version"`
	Price     decimal.Decimal `db:"discounted_price"`
}

// PlaceFromCart converts every cart line of the user into a placed order and
// empties the cart, all in one transaction together with the outbox record.
// The address must belong to the user, otherwise sql.ErrNoRows is returned.
func (r *OrderRepo) PlaceFromCart(ctx context.Context, p PlaceParams) ([]domain.PlacedOrder, error) {
	var placed []domain.PlacedOrder
	err := withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var n int
		if err := tx.GetContext(ctx, &n, tx.Rebind(`
			SELECT COUNT(*) FROM addresses WHERE id = ? AND user_id = ?`), p.AddressID, p.UserID); err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("address %s: %w", p.AddressID, sql.ErrNoRows)
		}

		lines := []placeLine{}
		if err := tx.SelectContext(ctx, &lines, tx.Rebind(`
			SELECT cl.id, cl.product_id, cl.quantity, cl.version, p.discounted_price
			FROM cart_lines cl JOIN products p ON p.id = cl.product_id
			WHERE cl.user_id = ?
			ORDER BY cl.created_at, cl.id`), p.UserID); err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrNoLines
		}

		insert := tx.Rebind(`
			INSERT INTO placed_orders(id, checkout_id, user_id, address_id, product_id, quantity, unit_price, placed_at, status)
			VALUES(?,?,?,?,?,?,?,?,?)`)
		remove := tx.Rebind(`DELETE FROM cart_lines WHERE id = ? AND version = ?`)

		event := domain.OrderPlaced{
			CheckoutID: p.CheckoutID, UserID: p.UserID, AddressID: p.AddressID, PlacedAt: p.PlacedAt,
		}
		for _, l := range lines {
			o := domain.PlacedOrder{
				ID: uuid.NewString(), CheckoutID: p.CheckoutID, UserID: p.UserID, AddressID: p.AddressID,
				ProductID: l.ProductID, Quantity: l.Quantity, UnitPrice: l.Price,
				PlacedAt: p.PlacedAt, Status: domain.OrderPending,
			}
			if _, err := tx.ExecContext(ctx, insert, o.ID, o.CheckoutID, o.UserID, o.AddressID,
				o.ProductID, o.Quantity, o.UnitPrice, o.PlacedAt, o.Status); err != nil {
				return fmt.Errorf("insert order for %s: %w", l.ProductID, err)
			}
			res, err := tx.ExecContext(ctx, remove, l.ID, l.Version)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return ErrStaleLine
			}
			placed = append(placed, o)
			event.Lines = append(event.Lines, domain.OrderPlacedLine{
				OrderID: o.ID, ProductID: o.ProductID, Quantity: o.Quantity, UnitPrice: o.UnitPrice,
			})
		}

		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		return insertOutbox(ctx, tx, p.Topic, p.CheckoutID, payload, p.PlacedAt)
	})
	if err != nil {
		return nil, err
	}
	return placed, nil
}

// ListByUser returns the user's orders, newest first.
func (r *OrderRepo) ListByUser(ctx context.Context, userID string) ([]OrderRow, error) {
	out := []OrderRow{}
	err := r.db.SelectContext(ctx, &out, r.db.Rebind(`
		SELECT o.id, o.checkout_id, o.product_id, p.title, p.image,
		       a.name AS address_name, a.city,
		       o.quantity, o.unit_price, o.placed_at, o.status
		FROM placed_orders o
		JOIN products p ON p.id = o.product_id
		JOIN addresses a ON a.id = o.address_id
		WHERE o.user_id = ?
		ORDER BY o.placed_at DESC, o.id`), userID)
	return out, err
}
