package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
	Cart    *services.CartService
}

func (h *ProductHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return notFoundPage(c, "This item is no longer available")
	}
	p, err := h.Catalog.Product(c.UserContext(), id)
	if err != nil {
		return pageError(c, "product", err)
	}
	in, err := h.Cart.InCart(c.UserContext(), userID(c), id)
	if err != nil {
		return pageError(c, "product.incart", err)
	}
	return render(c, "product", fiber.Map{"P": p, "InCart": in})
}
