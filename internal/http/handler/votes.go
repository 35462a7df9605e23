package handler

import (
	"github.com/gofiber/fiber/v2"

	"pilketos/internal/http/middleware"
	"pilketos/internal/service"
)

type castVoteRequest struct {
	CandidateID string `json:"candidate_id"`
}

// GetElection describes the election and its current phase.
//
// @Summary  Election status
// @Tags     election
// @Produce  json
// @Success  200 {object} service.ElectionStatus
// @Router   /election [get]
func GetElection(svc service.BallotService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(svc.Status())
	}
}

// CastVote records the caller's vote.
//
// @Summary   Cast vote
// @Tags      votes
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body body castVoteRequest true "Chosen candidate"
// @Success   201 {object} model.Vote
// @Failure   403 {object} errorPayload
// @Failure   409 {object} errorPayload
// @Router    /votes [post]
func CastVote(svc service.BallotService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req castVoteRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		v, err := svc.Cast(c.UserContext(), middleware.UserID(c), req.CandidateID)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(v)
	}
}

// MyVote returns the caller's ballot receipt.
//
// @Summary   My vote
// @Tags      votes
// @Produce   json
// @Security  BearerAuth
// @Success   200 {object} service.Receipt
// @Failure   404 {object} errorPayload
// @Router    /votes/me [get]
func MyVote(svc service.BallotService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		r, err := svc.MyVote(c.UserContext(), middleware.UserID(c))
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(r)
	}
}
