package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/chargemap/internal/core/domain"
)

// siteRequest is the body of a create or update. Coordinates are required.
type siteRequest struct {
	UserID              int      `json:"user_id"`
	Latitude            *float64 `json:"latitude"`
	Longitude           *float64 `json:"longitude"`
	ObfuscationDisabled bool     `json:"obfuscation_disabled"`
	Private             bool     `json:"private"`
	Reserved            bool     `json:"reserved"`
	RateOfCharge        float64  `json:"rate_of_charge"`
}

func (r siteRequest) input() (domain.ChargeSiteInput, error) {
	if r.Latitude == nil || r.Longitude == nil {
		return domain.ChargeSiteInput{}, fmt.Errorf("latitude and longitude are required")
	}
	if r.RateOfCharge < 0 {
		return domain.ChargeSiteInput{}, fmt.Errorf("rate_of_charge must not be negative")
	}
	return domain.ChargeSiteInput{
		UserID:              r.UserID,
		Latitude:            *r.Latitude,
		Longitude:           *r.Longitude,
		ObfuscationDisabled: r.ObfuscationDisabled,
		Private:             r.Private,
		Reserved:            r.Reserved,
		RateOfCharge:        r.RateOfCharge,
	}, nil
}

func parseSiteRequest(c *fiber.Ctx) (domain.ChargeSiteInput, error) {
	var req siteRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.ChargeSiteInput{}, fmt.Errorf("invalid request body")
	}
	return req.input()
}

// queryFloat reads a required float query parameter.
func queryFloat(c *fiber.Ctx, name string) (float64, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number", name)
	}
	return v, nil
}

// RegionSitesHandler returns every site that may lie in the viewport
// lat/lon ± latd/lond. Clients trim results outside their map bounds.
func RegionSitesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var vp domain.Viewport
		var err error
		if vp.Center.Lat, err = queryFloat(c, "lat"); err != nil {
			return errBadRequest(c, err.Error())
		}
		if vp.Center.Lon, err = queryFloat(c, "lon"); err != nil {
			return errBadRequest(c, err.Error())
		}
		if vp.LatitudeDelta, err = queryFloat(c, "latd"); err != nil {
			return errBadRequest(c, err.Error())
		}
		if vp.LongitudeDelta, err = queryFloat(c, "lond"); err != nil {
			return errBadRequest(c, err.Error())
		}

		sites, err := deps.Sites.QueryRegion(c.UserContext(), vp)
		if err != nil {
			return serviceError(c, err)
		}

		c.Set("Cache-Control", "public, max-age=30")
		return c.JSON(domain.PublicList(sites))
	}
}

// GetSiteHandler returns a single site.
func GetSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		site, err := deps.Sites.GetByID(c.UserContext(), c.Params("id"))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(site.Public())
	}
}

// CreateSiteHandler obfuscates and stores a new site.
func CreateSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in, err := parseSiteRequest(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		site, err := deps.Sites.Create(c.UserContext(), in)
		if err != nil {
			return serviceError(c, err)
		}

		c.Location("/v1/chargesites/" + site.ID)
		return c.Status(fiber.StatusCreated).JSON(site.Public())
	}
}

// UpdateSiteHandler replaces a site's state and re-runs obfuscation.
func UpdateSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in, err := parseSiteRequest(c)
		if err != nil {
			return errBadRequest(c, err.Error())
		}

		site, err := deps.Sites.Update(c.UserContext(), c.Params("id"), in)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(site.Public())
	}
}

// DeleteSiteHandler removes a site.
func DeleteSiteHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Sites.Delete(c.UserContext(), c.Params("id")); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}
