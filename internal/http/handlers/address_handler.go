package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"storefront/internal/log"
	"storefront/internal/services"
)

type AddressHandler struct {
	Addresses *services.AddressService
}

// GET /profile
func (h *AddressHandler) ProfileForm(c *fiber.Ctx) error {
	return render(c, "profile", fiber.Map{"Errors": map[string]string{}})
}

// POST /profile adds a delivery address.
func (h *AddressHandler) Add(c *fiber.Ctx) error {
	in := services.AddressInput{
		Name:     c.FormValue("name"),
		Locality: c.FormValue("locality"),
		City:     c.FormValue("city"),
		State:    c.FormValue("state"),
		Zipcode:  c.FormValue("zipcode"),
	}
	a, err := h.Addresses.Add(c.UserContext(), userID(c), in)
	var ve *services.ValidationError
	if errors.As(err, &ve) {
		c.Status(fiber.StatusBadRequest)
		return render(c, "profile", fiber.Map{"Errors": ve.Fields, "In": in})
	}
	if err != nil {
		return pageError(c, "address.add", err)
	}
	log.Audit(c, "address.add", map[string]any{"address_id": a.ID})
	return c.Redirect("/address")
}

// GET /address
func (h *AddressHandler) List(c *fiber.Ctx) error {
	addrs, err := h.Addresses.List(c.UserContext(), userID(c))
	if err != nil {
		return pageError(c, "address.list", err)
	}
	return render(c, "address", fiber.Map{"Addresses": addrs})
}
