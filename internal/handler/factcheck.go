package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/tanvir4425/Mask-App-sub001/internal/middleware"
	"github.com/tanvir4425/Mask-App-sub001/internal/service"
)

type FactCheckHandler struct {
	svc *service.FactCheckService
}

func NewFactCheckHandler(svc *service.FactCheckService) *FactCheckHandler {
	return &FactCheckHandler{svc: svc}
}

// GetByPostID handles GET /api/posts/:postId/factcheck
func (h *FactCheckHandler) GetByPostID(c fiber.Ctx) error {
	postID, errMsg := middleware.ValidatePostID(c.Params("postId"))
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	resp, err := h.svc.GetResult(c.Context(), postID)
	if err != nil {
		return middleware.ErrorResponse(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "Failed to lookup fact-check result")
	}

	return c.JSON(resp)
}
