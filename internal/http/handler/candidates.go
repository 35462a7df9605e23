package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"pilketos/internal/service"
)

const maxPhotoSize = 5 << 20

// candidateID validates the :id path parameter.
func candidateID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// ListCandidates returns every candidate pair ordered by number.
//
// @Summary  List candidates
// @Tags     candidates
// @Produce  json
// @Success  200 {array} model.Candidate
// @Router   /candidates [get]
func ListCandidates(svc service.CandidateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.List(c.UserContext())
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(fiber.Map{"data": items})
	}
}

// GetCandidate returns one candidate pair.
//
// @Summary  Get candidate
// @Tags     candidates
// @Produce  json
// @Param    id path string true "Candidate ID"
// @Success  200 {object} model.Candidate
// @Failure  404 {object} errorPayload
// @Router   /candidates/{id} [get]
func GetCandidate(svc service.CandidateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := candidateID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		cand, err := svc.Get(c.UserContext(), id)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(cand)
	}
}

// CreateCandidate adds a candidate pair.
//
// @Summary   Create candidate
// @Tags      admin
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     body body service.CandidateInput true "Candidate"
// @Success   201 {object} model.Candidate
// @Failure   409 {object} errorPayload
// @Router    /admin/candidates [post]
func CreateCandidate(svc service.CandidateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CandidateInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		cand, err := svc.Create(c.UserContext(), in)
		if err != nil {
			return serviceError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(cand)
	}
}

// UpdateCandidate replaces a candidate's text fields.
//
// @Summary   Update candidate
// @Tags      admin
// @Accept    json
// @Produce   json
// @Security  BearerAuth
// @Param     id   path string true "Candidate ID"
// @Param     body body service.CandidateInput true "Candidate"
// @Success   200 {object} model.Candidate
// @Router    /admin/candidates/{id} [put]
func UpdateCandidate(svc service.CandidateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := candidateID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		var in service.CandidateInput
		if err := c.BodyParser(&in); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "invalid request body")
		}
		cand, err := svc.Update(c.UserContext(), id, in)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(cand)
	}
}

// DeleteCandidate removes a candidate that has no votes.
//
// @Summary   Delete candidate
// @Tags      admin
// @Security  BearerAuth
// @Param     id path string true "Candidate ID"
// @Success   204
// @Failure   409 {object} errorPayload
// @Router    /admin/candidates/{id} [delete]
func DeleteCandidate(svc service.CandidateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := candidateID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		if err := svc.Delete(c.UserContext(), id); err != nil {
			return serviceError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// UploadCandidatePhoto stores a photo (multipart field "file") for one slot.
//
// @Summary   Upload candidate photo
// @Tags      admin
// @Accept    multipart/form-data
// @Produce   json
// @Security  BearerAuth
// @Param     id   path     string true "Candidate ID"
// @Param     slot path     string true "chairman or vice_chairman"
// @Param     file formData file   true "Image"
// @Success   200 {object} model.Candidate
// @Router    /admin/candidates/{id}/photos/{slot} [put]
func UploadCandidatePhoto(svc service.CandidateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := candidateID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		fh, err := c.FormFile("file")
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required")
		}
		if fh.Size > maxPhotoSize {
			return writeError(c, fiber.StatusRequestEntityTooLarge, "PHOTO_TOO_LARGE", "photo must be at most 5 MB")
		}

		f, err := fh.Open()
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "FILE_OPEN_ERROR", "cannot open uploaded file")
		}
		defer f.Close()

		ct := fh.Header.Get("Content-Type")
		if ct == "" {
			ct = "application/octet-stream"
		}

		cand, err := svc.UploadPhoto(c.UserContext(), id, service.PhotoSlot(c.Params("slot")), f, ct, fh.Size)
		if err != nil {
			return serviceError(c, err)
		}
		return c.JSON(cand)
	}
}

// GetCandidatePhoto streams a stored photo, or redirects to a signed
// object URL when called with ?redirect=true.
//
// @Summary  Candidate photo
// @Tags     candidates
// @Produce  image/jpeg,image/png
// @Param    id       path  string true  "Candidate ID"
// @Param    slot     path  string true  "chairman or vice_chairman"
// @Param    redirect query bool   false "Redirect to a signed URL"
// @Success  200
// @Success  302
// @Failure  404 {object} errorPayload
// @Router   /candidates/{id}/photos/{slot} [get]
func GetCandidatePhoto(svc service.CandidateService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, ok := candidateID(c)
		if !ok {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		slot := service.PhotoSlot(c.Params("slot"))

		if c.QueryBool("redirect") {
			link, err := svc.PhotoLink(c.UserContext(), id, slot)
			if err != nil {
				return serviceError(c, err)
			}
			return c.Redirect(link, fiber.StatusFound)
		}

		rc, info, err := svc.Photo(c.UserContext(), id, slot)
		if err != nil {
			return serviceError(c, err)
		}
		if info.ContentType != "" {
			c.Set(fiber.HeaderContentType, info.ContentType)
		}
		if info.ETag != "" {
			c.Set(fiber.HeaderETag, `"`+info.ETag+`"`)
		}
		c.Set(fiber.HeaderCacheControl, "public, max-age=60")
		// The body stream is closed by fasthttp once written.
		return c.SendStream(rc, int(info.Size))
	}
}
