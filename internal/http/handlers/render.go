package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/domain"
	applog "storefront/internal/log"
	"storefront/internal/services"
)

func render(c *fiber.Ctx, tmpl string, data fiber.Map) error {
	if data == nil {
		data = fiber.Map{}
	}
	if u := c.Locals("user"); u != nil {
		data["User"] = u
	}
	if n, ok := c.Locals("cartCount").(int); ok {
		data["CartCount"] = n
	}
	// The CSRF middleware puts the token into Locals; the cookie covers
	// requests that skipped it.
	tok, _ := c.Locals("CSRFToken").(string)
	if tok == "" {
		tok = c.Cookies("csrf_")
	}
	if tok != "" {
		data["CSRFToken"] = tok
	}
	return c.Render(tmpl, data)
}

func notFoundPage(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": msg})
}

// currentUser returns the user attached by the session middleware, or nil.
func currentUser(c *fiber.Ctx) *domain.User {
	u, _ := c.Locals("user").(*domain.User)
	return u
}

func userID(c *fiber.Ctx) string {
	if u := currentUser(c); u != nil {
		return u.ID
	}
	return ""
}

// pageError maps service errors onto HTML responses. Anything unexpected
// goes to the app's ErrorHandler.
func pageError(c *fiber.Ctx, action string, err error) error {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		return c.Redirect("/login")
	case errors.Is(err, services.ErrNotFound):
		return notFoundPage(c, "This item is no longer available")
	case errors.Is(err, services.ErrEmptyCart):
		return c.Redirect("/cart")
	}
	applog.Error(c, action+".fail", err, nil)
	return err
}

// jsonError is pageError for the fetch endpoints.
func jsonError(c *fiber.Ctx, action string, err error) error {
	switch {
	case errors.Is(err, services.ErrUnauthenticated):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
	case errors.Is(err, services.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not in cart"})
	}
	applog.Error(c, action+".fail", err, nil)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "something went wrong"})
}
