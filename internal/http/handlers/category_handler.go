package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront/internal/services"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
}

// GET /
func (h *CategoryHandler) Home(c *fiber.Ctx) error {
	home, err := h.Catalog.Home(c.UserContext())
	if err != nil {
		return pageError(c, "home", err)
	}
	return render(c, "home", fiber.Map{"Home": home})
}

// Page serves GET /<page> and GET /<page>/:filter.
func (h *CategoryHandler) Page(page string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l, err := h.Catalog.Category(c.UserContext(), page, c.Params("filter"))
		if err != nil {
			return pageError(c, "category", err)
		}
		return render(c, "category", fiber.Map{"Listing": l})
	}
}
