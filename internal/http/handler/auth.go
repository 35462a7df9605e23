package handler

import (
	"github.com/gofiber/fiber/v2"

	"pilketos/internal/http/middleware"
	"pilketos/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register redeems a registration code and returns a session for the new voter.
//
// @Summary  Register a voter with a registration code
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body service.RegisterInput true "Registration"
// @Success  201 {object} service.Session
// @Failure  400 {object} errorPayload
// @Failure  409 {object} errorPayload
// @Router   /auth/register [post]
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.RegisterInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		sess, err := svc.Register(c.UserContext(), in)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sess)
	}
}

// Login exchanges email and password for a bearer token.
//
// @Summary  Sign in
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body loginRequest true "Credentials"
// @Success  200 {object} service.Session
// @Failure  401 {object} errorPayload
// @Router   /auth/login [post]
func Login(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		sess, err := svc.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(sess)
	}
}

// Me returns the signed-in account.
//
// @Summary   Current account
// @Tags      auth
// @Produce   json
// @Security  BearerAuth
// @Success   200 {object} service.Account
// @Failure   401 {object} errorPayload
// @Router    /auth/me [get]
func Me(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		acc, err := svc.Me(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(acc)
	}
}
