package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/tanvir4425/Mask-App-sub001/internal/middleware"
	"github.com/tanvir4425/Mask-App-sub001/internal/model"
	"github.com/tanvir4425/Mask-App-sub001/internal/service"
)

// EventHandler receives internal platform events (new posts, engagement)
// and feeds them into the fact-check pipeline. These endpoints are called
// service-to-service, never by browsers.
type EventHandler struct {
	svc     *service.FactCheckService
	trigger *service.AutoTrigger
}

func NewEventHandler(svc *service.FactCheckService, trigger *service.AutoTrigger) *EventHandler {
	return &EventHandler{svc: svc, trigger: trigger}
}

// PostCreated handles POST /api/internal/events/post-created
func (h *EventHandler) PostCreated(c fiber.Ctx) error {
	var req model.PostCreatedEvent
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	postID, errMsg := middleware.ValidatePostID(req.PostID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}

	h.svc.Enqueue(postID, model.EnqueueHint{Reason: "post-created"})

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"queued": true})
}

// Reaction handles POST /api/internal/events/reaction
func (h *EventHandler) Reaction(c fiber.Ctx) error {
	var req model.ReactionEvent
	if err := c.Bind().JSON(&req); err != nil {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_BODY", "Invalid request body")
	}

	postID, errMsg := middleware.ValidatePostID(req.PostID)
	if errMsg != "" {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", errMsg)
	}
	if req.ReactionCount < 0 || req.UniqueReactors < 0 {
		return middleware.ErrorResponse(c, fiber.StatusBadRequest, "INVALID_FIELD", "Counts must be non-negative")
	}

	triggered := h.trigger.OnReaction(postID, req.ReactionCount, req.UniqueReactors)

	return c.JSON(fiber.Map{"triggered": triggered})
}
