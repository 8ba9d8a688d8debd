package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/tanvir4425/Mask-App-sub001/internal/middleware"
	"github.com/tanvir4425/Mask-App-sub001/internal/model"
	"github.com/tanvir4425/Mask-App-sub001/internal/service"
)

const (
	defaultRunAllLimit = 100
	maxRunAllLimit     = 1000
)

// AdminHandler covers the moderation endpoints: manual fact-check triggers
// and trust recomputes.
type AdminHandler struct {
	svc *service.FactCheckService
}

func NewAdminHandler(svc *service.FactCheckService) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// TriggerPost handles POST /api/admin/factcheck/:postId
//
// An admin trigger carries force hints: it bypasses the AI eligibility
// gates and the hourly budget, though a terminal result still wins.
func (h *AdminHandler) TriggerPost(c fiber.Ctx) error {
	postID, errMsg := middleware.ValidatePostID(c.Params("postId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	h.svc.Enqueue(postID, model.EnqueueHint{
		ForceAI:       true,
		ForceOverride: true,
		Reason:        "admin",
	})

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"queued": true})
}

// RunAll handles POST /api/admin/factcheck/run-all?limit=N
func (h *AdminHandler) RunAll(c fiber.Ctx) error {
	limit := fiber.Query[int](c, "limit", defaultRunAllLimit)
	if limit <= 0 || limit > maxRunAllLimit {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "limit must be between 1 and 1000")
	}

	queued, err := h.svc.RunAll(c.Context(), limit)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to enqueue unchecked posts")
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"queued": queued})
}

// RecomputeTrust handles POST /api/admin/trust/:subjectType/:subjectId/recompute
func (h *AdminHandler) RecomputeTrust(c fiber.Ctx) error {
	subjectType := model.SubjectType(c.Params("subjectType"))
	if !model.ValidSubjectTypes[subjectType] {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD",
			"subjectType must be one of: user, page")
	}

	subjectID, errMsg := middleware.ValidateSubjectID(c.Params("subjectId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	if err := h.svc.RecomputeTrust(c.Context(), subjectType, subjectID); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to recompute trust")
	}

	resp, err := h.svc.GetTrust(c.Context(), subjectType, subjectID)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to load trust snapshot")
	}

	return c.JSON(resp)
}
