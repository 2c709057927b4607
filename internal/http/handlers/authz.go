package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "storefront/internal/log"
	"storefront/internal/services"
)

// AttachUser resolves the sid cookie to a user, when there is one.
func AttachUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if sid := c.Cookies("sid"); sid != "" {
			if u, err := auth.CurrentUser(c.UserContext(), sid); err == nil && u != nil {
				c.Locals("user", u)
			}
		}
		return c.Next()
	}
}

// CartCounter exposes the number of cart lines to every rendered page.
func CartCounter(cart *services.CartService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id := userID(c); id != "" {
			if n, err := cart.Count(c.UserContext(), id); err == nil {
				c.Locals("cartCount", n)
			}
		}
		return c.Next()
	}
}

// RequireUser enforces that a user is logged in; otherwise redirect to login.
func RequireUser(auth *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) != nil {
			return c.Next()
		}
		sid := c.Cookies("sid")
		if sid == "" {
			return c.Redirect("/login")
		}
		u, err := auth.CurrentUser(c.UserContext(), sid)
		if err != nil || u == nil {
			applog.Security(c, "access.denied.anonymous", nil)
			return c.Redirect("/login")
		}
		c.Locals("user", u)
		return c.Next()
	}
}
