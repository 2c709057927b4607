package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type OrderHandler struct {
	Order *services.OrderService
}

// GET /checkout
func (h *OrderHandler) Checkout(c *fiber.Ctx) error {
	v, err := h.Order.Checkout(c.UserContext(), userID(c))
	if err != nil {
		return pageError(c, "checkout.load", err)
	}
	if v.Cart.Empty() {
		return c.Redirect("/cart")
	}
	return render(c, "checkout", fiber.Map{"Addresses": v.Addresses, "Cart": v.Cart})
}

// POST /paymentdone places the order. Payment itself is assumed to have
// succeeded.
func (h *OrderHandler) PaymentDone(c *fiber.Ctx) error {
	addr, ok := validate.ID(c.FormValue("addressId"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "addressId"})
		return c.Status(fiber.StatusBadRequest).SendString("choose a delivery address")
	}
	res, err := h.Order.PlaceOrder(c.UserContext(), userID(c), addr)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			applog.Security(c, "order.place.foreign_address", map[string]any{"address": addr})
		}
		return pageError(c, "order.place", err)
	}
	applog.Audit(c, "order.place", map[string]any{
		"checkout_id": res.CheckoutID,
		"lines":       len(res.OrdersCreated),
	})
	return c.Redirect("/orders")
}

// GET /orders
func (h *OrderHandler) History(c *fiber.Ctx) error {
	orders, err := h.Order.ListOrders(c.UserContext(), userID(c))
	if err != nil {
		return pageError(c, "orders.history", err)
	}
	return render(c, "orders", fiber.Map{"Orders": orders})
}
