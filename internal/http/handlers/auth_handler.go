package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/log"
	"storefront/internal/services"
	"storefront/internal/validate"
)

type AuthHandler struct {
	Auth *services.AuthService
}

func setSID(c *fiber.Ctx, sid string, expires time.Time) {
	c.Cookie(&fiber.Cookie{
		Name:     "sid",
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Secure:   false,
		Expires:  expires,
	})
}

func (h *AuthHandler) LoginForm(c *fiber.Ctx) error {
	return render(c, "login", fiber.Map{"Err": ""})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")
	pass := c.FormValue("password")
	fail := func(reason string) error {
		log.Security(c, "auth.login.fail", map[string]any{"email": email, "reason": reason})
		c.Status(fiber.StatusUnauthorized)
		return render(c, "login", fiber.Map{"Err": "Invalid email or password"})
	}
	if _, ok := validate.Email(email); !ok {
		return fail("bad_format")
	}
	if !validate.Password(pass) {
		return fail("bad_password_format")
	}
	_, sid, err := h.Auth.Login(c.UserContext(), c.Cookies("sid"), email, pass)
	if err != nil {
		if !errors.Is(err, services.ErrBadCreds) {
			return pageError(c, "auth.login", err)
		}
		return fail("bad_credentials")
	}
	setSID(c, sid, time.Time{})

	log.Audit(c, "auth.login.success", map[string]any{"email": email})
	return c.Redirect("/")
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	sid := c.Cookies("sid")
	if sid != "" {
		_ = h.Auth.Logout(c.UserContext(), sid)
	}
	setSID(c, "", time.Now().Add(-1*time.Hour))
	log.Audit(c, "auth.logout", nil)
	return c.Redirect("/")
}

func (h *AuthHandler) RegisterForm(c *fiber.Ctx) error {
	return render(c, "register", fiber.Map{"Errors": map[string]string{}})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	in := services.RegisterInput{
		Name:     c.FormValue("name"),
		Email:    c.FormValue("email"),
		Password: c.FormValue("password"),
		Confirm:  c.FormValue("confirm"),
	}
	u, err := h.Auth.Register(c.UserContext(), in)
	var ve *services.ValidationError
	switch {
	case errors.As(err, &ve):
		c.Status(fiber.StatusBadRequest)
		return render(c, "register", fiber.Map{"Errors": ve.Fields, "Name": in.Name, "Email": in.Email})
	case errors.Is(err, services.ErrEmailTaken):
		log.Security(c, "auth.register.duplicate", map[string]any{"email": in.Email})
		c.Status(fiber.StatusBadRequest)
		return render(c, "register", fiber.Map{"Errors": map[string]string{"email": "already registered"}, "Name": in.Name})
	case err != nil:
		return pageError(c, "auth.register", err)
	}
	log.Audit(c, "auth.register", map[string]any{"user_id": u.ID})
	return c.Redirect("/login")
}
