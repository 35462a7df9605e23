package handler

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"pilketos/internal/service"
)

type generateCodesRequest struct {
	Count int `json:"count"`
}

// ListCodes pages through registration codes, newest first.
//
// @Summary   List registration codes
// @Tags      admin
// @Produce   json
// @Security  BearerAuth
// @Param     limit  query int false "Page size" default(50)
// @Param     offset query int false "Offset"    default(0)
// @Success   200 {object} service.CodeListResult
// @Router    /admin/codes [get]
func ListCodes(svc service.CodeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit, err := strconv.Atoi(c.Query("limit", "50"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(c.Query("offset", "0"))
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(res)
	}
}

// GenerateCodes creates a batch of fresh registration codes.
//
// @Summary   Generate registration codes
// @Tags      admin
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body body generateCodesRequest true "Batch size (1-50)"
// @Success   201 {object} map[string][]model.RegistrationCode
// @Failure   400 {object} errorPayload
// @Router    /admin/codes [post]
func GenerateCodes(svc service.CodeService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req generateCodesRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		codes, err := svc.Generate(c.UserContext(), req.Count)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": codes})
	}
}
