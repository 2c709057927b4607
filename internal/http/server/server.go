// Package server assembles the fiber app: middleware chain, static files and
// routes.
package server

import (
	"errors"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	html "github.com/gofiber/template/html/v2"
	"github.com/jmoiron/sqlx"

	"storefront/internal/config"
	"storefront/internal/http/handlers"
	applog "storefront/internal/log"
	"storefront/internal/lock"
	"storefront/internal/metrics"
	"storefront/internal/services"
)

type Options struct {
	Config  config.Config
	DB      *sqlx.DB
	Locks   lock.Locker
	Metrics *metrics.Metrics

	// Requests per minute per client; 0 means 60.
	RateLimit int
	// Login attempts per 10 minutes per client; 0 means 5.
	LoginLimit int
	// AccessLog enables fiber's request logger.
	AccessLog bool
}

func New(o Options) (*fiber.App, *handlers.Deps) {
	if o.RateLimit <= 0 {
		o.RateLimit = 60
	}
	if o.LoginLimit <= 0 {
		o.LoginLimit = 5
	}
	if o.Metrics == nil {
		o.Metrics = metrics.New()
	}
	deps := handlers.NewDeps(o.DB, o.Config, o.Locks, o.Metrics)

	tmplDir := o.Config.TemplatesDir
	if tmplDir == "" {
		tmplDir = "./web/templates"
	}
	engine := html.New(tmplDir, ".html")

	app := fiber.New(fiber.Config{
		Views:        engine,
		ErrorHandler: errorHandler,
	})
	app.Server().MaxRequestBodySize = 1 << 20

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	if o.AccessLog {
		app.Use(logger.New())
	}
	app.Use(helmet.New())
	app.Use(o.Metrics.Middleware())
	app.Use(handlers.AttachUser(deps.Auth))
	app.Use(handlers.CartCounter(deps.Cart))
	app.Use(limiter.New(limiter.Config{
		Max:        o.RateLimit,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			p := string(c.Request().URI().Path())
			return strings.HasPrefix(p, "/static/") || strings.HasPrefix(p, "/media/") || p == "/metrics"
		},
	}))
	app.Use(csrf.New(csrf.Config{
		// Forms post the token as a field; the cart buttons send it as a header.
		Extractor: func(c *fiber.Ctx) (string, error) {
			if tok, err := csrf.CsrfFromForm("csrf")(c); err == nil {
				return tok, nil
			}
			return csrf.CsrfFromHeader("X-Csrf-Token")(c)
		},
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", map[string]any{"reason": err.Error()})
			return c.Status(fiber.StatusForbidden).Render("notfound", fiber.Map{"Message": "Security check failed. Please refresh and try again."})
		},
	}))
	app.Use(func(c *fiber.Ctx) error {
		if tok, ok := c.Locals("csrf").(string); ok {
			c.Locals("CSRFToken", tok)
		}
		return c.Next()
	})

	// ---------- Static assets ----------
	mediaDir := o.Config.MediaDir
	if mediaDir == "" {
		mediaDir = "./web/media"
	}
	if !filepath.IsAbs(mediaDir) {
		if abs, err := filepath.Abs(mediaDir); err == nil {
			mediaDir = abs
		}
	}
	log.Printf("[static] /media -> %s", mediaDir)
	app.Get("/media/*", func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "..") || filepath.IsAbs(clean) {
			applog.Security(c, "media.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(mediaDir, clean), true)
	})

	// ---------- Catalog ----------
	app.Get("/", deps.CategoryHandler.Home)
	app.Get("/search", limiter.New(limiter.Config{Max: 20, Expiration: time.Minute}), deps.SearchHandler.Search)
	for _, page := range services.Pages() {
		app.Get("/"+page+"/:filter?", deps.CategoryHandler.Page(page))
	}
	app.Get("/product/:id", deps.ProductHandler.Detail)

	// ---------- Cart & orders ----------
	user := handlers.RequireUser(deps.Auth)
	app.Post("/cart", user, deps.CartHandler.Add)
	app.Post("/buynow", user, deps.CartHandler.BuyNow)
	app.Get("/cart", user, deps.CartHandler.View)
	app.Post("/cart/plus", deps.CartHandler.Plus)
	app.Post("/cart/minus", deps.CartHandler.Minus)
	app.Post("/cart/remove", deps.CartHandler.Remove)
	app.Get("/checkout", user, deps.OrderHandler.Checkout)
	app.Post("/paymentdone", user, deps.OrderHandler.PaymentDone)
	app.Get("/orders", user, deps.OrderHandler.History)

	// ---------- Account ----------
	app.Get("/profile", user, deps.AddressHandler.ProfileForm)
	app.Post("/profile", user, deps.AddressHandler.Add)
	app.Get("/address", user, deps.AddressHandler.List)
	app.Get("/register", deps.AuthHandler.RegisterForm)
	app.Post("/register", deps.AuthHandler.Register)
	app.Get("/login", deps.AuthHandler.LoginForm)
	app.Post("/login", limiter.New(limiter.Config{
		Max:        o.LoginLimit,
		Expiration: 10 * time.Minute,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).Render("login", fiber.Map{"Err": "Too many attempts. Please try again later."})
		},
	}), deps.AuthHandler.Login)
	app.Post("/logout", deps.AuthHandler.Logout)

	// ---------- Ops & 404 ----------
	app.Get("/metrics", adaptor.HTTPHandler(o.Metrics.Handler()))
	app.Get("/healthz", func(c *fiber.Ctx) error {
		if err := o.DB.PingContext(c.UserContext()); err != nil {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"ok": false})
		}
		return c.JSON(fiber.Map{"ok": true})
	})
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(404).Render("notfound", fiber.Map{"Message": "Page not found"})
	})

	return app, deps
}

// errorHandler keeps the status of *fiber.Error values (a missing media file
// is a 404) and hides everything else behind a generic 500 page.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Something went wrong. Please try again."
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		if code < fiber.StatusInternalServerError {
			msg = "Page not found"
			if code != fiber.StatusNotFound {
				msg = "Request could not be handled"
			}
		}
	}
	if code >= fiber.StatusInternalServerError {
		applog.Error(c, "server.error", err, nil)
	} else {
		applog.Info(c, "server.client_error", map[string]any{"status": code, "err": err.Error()})
	}
	if rerr := c.Status(code).Render("notfound", fiber.Map{"Message": msg}); rerr != nil {
		return c.Status(code).SendString(msg)
	}
	return nil
}
