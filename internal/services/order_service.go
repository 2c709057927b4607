package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"storefront/internal/domain"
	"storefront/internal/lock"
	"storefront/internal/metrics"
	"storefront/internal/repos"
)

type OrderService struct {
	Carts     *repos.CartRepo
	Addresses *repos.AddressRepo
	Orders    *repos.OrderRepo
	Locks     lock.Locker
	Metrics   *metrics.Metrics
	Topic     string
	Now       func() time.Time
}

func NewOrderService(carts *repos.CartRepo, addrs *repos.AddressRepo, orders *repos.OrderRepo, locks lock.Locker, m *metrics.Metrics, topic string) *OrderService {
	if locks == nil {
		locks = lock.NewLocal()
	}
	if topic == "" {
		topic = "orders.placed"
	}
	return &OrderService{Carts: carts, Addresses: addrs, Orders: orders, Locks: locks, Metrics: m, Topic: topic, Now: time.Now}
}

type CheckoutView struct {
	Addresses []domain.Address
	Cart      CartView
}

type PlaceResult struct {
	CheckoutID    string
	OrdersCreated []domain.PlacedOrder
}

// Checkout loads the user's addresses and cart side by side.
func (s *OrderService) Checkout(ctx context.Context, userID string) (CheckoutView, error) {
	if userID == "" {
		return CheckoutView{}, ErrUnauthenticated
	}
	var v CheckoutView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a, err := s.Addresses.ListByUser(gctx, userID)
		v.Addresses = a
		return err
	})
	g.Go(func() error {
		rows, err := s.Carts.Lines(gctx, userID)
		if err != nil {
			return err
		}
		v.Cart = buildView(rows)
		return nil
	})
	if err := g.Wait(); err != nil {
		return CheckoutView{}, err
	}
	return v, nil
}

// PlaceOrder turns every cart line into a placed order for addressID, which
// must be one of the user's own addresses. Either all lines convert or none.
func (s *OrderService) PlaceOrder(ctx context.Context, userID, addressID string) (PlaceResult, error) {
	if userID == "" {
		return PlaceResult{}, ErrUnauthenticated
	}
	res := PlaceResult{CheckoutID: uuid.NewString()}
	err := withCartLock(ctx, s.Locks, userID, func() error {
		placed, err := s.Orders.PlaceFromCart(ctx, repos.PlaceParams{
			UserID:     userID,
			AddressID:  addressID,
			CheckoutID: res.CheckoutID,
			PlacedAt:   repos.Timestamp(s.Now()),
			Topic:      s.Topic,
		})
		res.OrdersCreated = placed
		return err
	})
	switch {
	case errors.Is(err, repos.ErrNoLines):
		return PlaceResult{}, ErrEmptyCart
	case errors.Is(err, sql.ErrNoRows):
		return PlaceResult{}, notFound(err, "address", addressID)
	case err != nil:
		return PlaceResult{}, err
	}
	s.Metrics.OrderPlaced(len(res.OrdersCreated))
	return res, nil
}

// ListOrders returns the user's orders, most recent first.
func (s *OrderService) ListOrders(ctx context.Context, userID string) ([]repos.OrderRow, error) {
	if userID == "" {
		return nil, ErrUnauthenticated
	}
	return s.Orders.ListByUser(ctx, userID)
}
