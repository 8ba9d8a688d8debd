package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/tanvir4425/Mask-App-sub001/internal/middleware"
	"github.com/tanvir4425/Mask-App-sub001/internal/model"
	"github.com/tanvir4425/Mask-App-sub001/internal/service"
)

type TrustHandler struct {
	svc *service.FactCheckService
}

func NewTrustHandler(svc *service.FactCheckService) *TrustHandler {
	return &TrustHandler{svc: svc}
}

// GetBySubject handles GET /api/trust/:subjectType/:subjectId
func (h *TrustHandler) GetBySubject(c fiber.Ctx) error {
	subjectType := model.SubjectType(c.Params("subjectType"))
	if !model.ValidSubjectTypes[subjectType] {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD",
			"subjectType must be one of: user, page")
	}

	subjectID, errMsg := middleware.ValidateSubjectID(c.Params("subjectId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, err := h.svc.GetTrust(c.Context(), subjectType, subjectID)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to lookup trust score")
	}

	return c.JSON(resp)
}
