package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"storefront/internal/domain"
	"storefront/internal/lock"
	"storefront/internal/metrics"
	"storefront/internal/pricing"
	"storefront/internal/repos"
)

// staleRetries bounds how often a mutation is re-read and retried after an
// optimistic version conflict.
const staleRetries = 3

type CartService struct {
	Carts   *repos.CartRepo
	Prods   *repos.ProductRepo
	Locks   lock.Locker
	Metrics *metrics.Metrics
}

func NewCartService(carts *repos.CartRepo, prods *repos.ProductRepo, locks lock.Locker, m *metrics.Metrics) *CartService {
	if locks == nil {
		locks = lock.NewLocal()
	}
	return &CartService{Carts: carts, Prods: prods, Locks: locks, Metrics: m}
}

type CartTotals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Total    decimal.Decimal `json:"total"`
}

// QuantityUpdate is what the plus/minus endpoints report back.
type QuantityUpdate struct {
	Quantity int `json:"quantity"`
	CartTotals
}

type CartItem struct {
	repos.CartLineRow
	LineTotal decimal.Decimal
}

type CartView struct {
	Items  []CartItem
	Totals pricing.Totals
}

func (v CartView) Empty() bool { return len(v.Items) == 0 }

// Add puts one unit of productID in the user's cart. A product already in the
// cart gets its quantity incremented instead of a second line.
func (s *CartService) Add(ctx context.Context, userID, productID string) (line domain.CartLine, err error) {
	defer func() { s.Metrics.CartOp("add", err) }()
	if userID == "" {
		return domain.CartLine{}, ErrUnauthenticated
	}
	if _, err := s.Prods.Get(ctx, productID); err != nil {
		return domain.CartLine{}, notFound(err, "product", productID)
	}
	err = s.locked(ctx, userID, func() error {
		var err error
		line, err = s.Carts.Add(ctx, userID, productID)
		return err
	})
	return line, err
}

func (s *CartService) Increment(ctx context.Context, userID, productID string) (QuantityUpdate, error) {
	return s.ChangeQuantity(ctx, userID, productID, +1)
}

// Decrement never takes a line below 1; removing is a separate operation.
func (s *CartService) Decrement(ctx context.Context, userID, productID string) (QuantityUpdate, error) {
	return s.ChangeQuantity(ctx, userID, productID, -1)
}

// ChangeQuantity applies delta to an existing line and reports the new
// quantity with freshly computed totals. A missing line is ErrNotFound and
// nothing is created.
func (s *CartService) ChangeQuantity(ctx context.Context, userID, productID string, delta int) (out QuantityUpdate, err error) {
	op := "plus"
	if delta < 0 {
		op = "minus"
	}
	defer func() { s.Metrics.CartOp(op, err) }()
	if userID == "" {
		return QuantityUpdate{}, ErrUnauthenticated
	}

	err = s.locked(ctx, userID, func() error {
		l, err := s.Carts.Adjust(ctx, userID, productID, delta, 1)
		if err != nil {
			return notFound(err, "cart line", productID)
		}
		t, err := s.totals(ctx, userID)
		if err != nil {
			return err
		}
		out = QuantityUpdate{Quantity: l.Quantity, CartTotals: t}
		return nil
	})
	return out, err
}

// Remove deletes the user's line for productID and reports the new totals.
func (s *CartService) Remove(ctx context.Context, userID, productID string) (out CartTotals, err error) {
	defer func() { s.Metrics.CartOp("remove", err) }()
	if userID == "" {
		return CartTotals{}, ErrUnauthenticated
	}
	err = s.locked(ctx, userID, func() error {
		if err := s.Carts.Delete(ctx, userID, productID); err != nil {
			return notFound(err, "cart line", productID)
		}
		var err error
		out, err = s.totals(ctx, userID)
		return err
	})
	return out, err
}

func (s *CartService) View(ctx context.Context, userID string) (CartView, error) {
	if userID == "" {
		return CartView{}, ErrUnauthenticated
	}
	rows, err := s.Carts.Lines(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	return buildView(rows), nil
}

func (s *CartService) Count(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, nil
	}
	return s.Carts.Count(ctx, userID)
}

func (s *CartService) InCart(ctx context.Context, userID, productID string) (bool, error) {
	if userID == "" {
		return false, nil
	}
	_, err := s.Carts.Get(ctx, userID, productID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, nil
}

func (s *CartService) totals(ctx context.Context, userID string) (CartTotals, error) {
	rows, err := s.Carts.Lines(ctx, userID)
	if err != nil {
		return CartTotals{}, err
	}
	t := buildView(rows).Totals
	return CartTotals{Subtotal: t.Subtotal, Total: t.Total}, nil
}

func buildView(rows []repos.CartLineRow) CartView {
	v := CartView{Items: make([]CartItem, 0, len(rows))}
	lines := make([]pricing.Line, 0, len(rows))
	for _, r := range rows {
		l := pricing.Line{Quantity: r.Quantity, UnitPrice: r.DiscountedPrice}
		lines = append(lines, l)
		v.Items = append(v.Items, CartItem{CartLineRow: r, LineTotal: pricing.LineTotal(l)})
	}
	v.Totals = pricing.Compute(lines)
	return v
}

// locked runs fn while holding the user's cart lock, retrying on optimistic
// version conflicts.
func (s *CartService) locked(ctx context.Context, userID string, fn func() error) error {
	return withCartLock(ctx, s.Locks, userID, fn)
}

func withCartLock(ctx context.Context, locks lock.Locker, userID string, fn func() error) error {
	unlock, err := locks.Lock(ctx, lock.CartKey(userID))
	if err != nil {
		return err
	}
	defer unlock()

	for attempt := 1; ; attempt++ {
		err = fn()
		if !errors.Is(err, repos.ErrStaleLine) || attempt >= staleRetries {
			return err
		}
	}
}
