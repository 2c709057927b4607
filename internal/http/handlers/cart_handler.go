package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

func productParam(c *fiber.Ctx) (string, bool) {
	id, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
	}
	return id, ok
}

// POST /cart
func (h *CartHandler) Add(c *fiber.Ctx) error {
	return h.add(c, "/cart")
}

// POST /buynow adds the product and goes straight to checkout.
func (h *CartHandler) BuyNow(c *fiber.Ctx) error {
	return h.add(c, "/checkout")
}

func (h *CartHandler) add(c *fiber.Ctx, next string) error {
	pid, ok := productParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).SendString("missing productId")
	}
	line, err := h.Cart.Add(c.UserContext(), userID(c), pid)
	if err != nil {
		return pageError(c, "cart.add", err)
	}
	applog.Audit(c, "cart.add", map[string]any{"product": pid, "quantity": line.Quantity})
	return c.Redirect(next)
}

// GET /cart
func (h *CartHandler) View(c *fiber.Ctx) error {
	cv, err := h.Cart.View(c.UserContext(), userID(c))
	if err != nil {
		return pageError(c, "cart.view", err)
	}
	return render(c, "cart", fiber.Map{"Cart": cv})
}

// POST /cart/plus
func (h *CartHandler) Plus(c *fiber.Ctx) error { return h.change(c, +1) }

// POST /cart/minus
func (h *CartHandler) Minus(c *fiber.Ctx) error { return h.change(c, -1) }

func (h *CartHandler) change(c *fiber.Ctx, delta int) error {
	pid, ok := productParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing productId"})
	}
	u, err := h.Cart.ChangeQuantity(c.UserContext(), userID(c), pid, delta)
	if err != nil {
		return jsonError(c, "cart.change", err)
	}
	return c.JSON(u)
}

// POST /cart/remove
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	pid, ok := productParam(c)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing productId"})
	}
	t, err := h.Cart.Remove(c.UserContext(), userID(c), pid)
	if err != nil {
		return jsonError(c, "cart.remove", err)
	}
	applog.Audit(c, "cart.remove", map[string]any{"product": pid})
	return c.JSON(t)
}
