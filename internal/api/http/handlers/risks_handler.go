package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/complyhub/compliance-service/internal/api/dto"
	"github.com/complyhub/compliance-service/internal/auth"
	"github.com/complyhub/compliance-service/internal/domain"
	"github.com/complyhub/compliance-service/internal/service"
	apperrors "github.com/complyhub/compliance-service/pkg/util/errorutil"
)

// RisksHandler manages risk register endpoints.
type RisksHandler struct {
	svc *service.RiskService
}

// NewRisksHandler constructs handler.
func NewRisksHandler(svc *service.RiskService) *RisksHandler {
	return &RisksHandler{svc: svc}
}

// List GET /risks.
func (h *RisksHandler) List(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	risks, err := h.svc.List(c.Context(), principal, c.QueryInt("limit", 50), c.QueryInt("offset", 0))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewRiskListResponse(risks)})
}

// Get GET /risks/:id.
func (h *RisksHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	risk, err := h.svc.Get(c.Context(), principal, c.Params("id"))
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewRiskResponse(risk)})
}

// Create POST /risks.
func (h *RisksHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.RiskCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	risk, err := h.svc.Create(c.Context(), principal, req.Title, req.Description, req.DueDate)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewRiskResponse(risk)})
}

// Update PUT /risks/:id.
func (h *RisksHandler) Update(c *fiber.Ctx) error {
	return h.applyUpdate(c, auth.ActionUpdate)
}

// PartialUpdate PATCH /risks/:id.
func (h *RisksHandler) PartialUpdate(c *fiber.Ctx) error {
	return h.applyUpdate(c, auth.ActionPartialUpdate)
}

// Delete DELETE /risks/:id.
func (h *RisksHandler) Delete(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	if err := h.svc.Delete(c.Context(), principal, c.Params("id")); err != nil {
		return apperrors.MapError(err)
	}
	return c.SendStatus(http.StatusNoContent)
}

func (h *RisksHandler) applyUpdate(c *fiber.Ctx, action auth.Action) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.RiskUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	risk, err := h.svc.Update(c.Context(), principal, c.Params("id"), action, func(risk *domain.Risk) {
		if req.Title != nil {
			risk.Title = *req.Title
		}
		if req.Description != nil {
			risk.Description = *req.Description
		}
		if req.Status != nil {
			risk.Status = domain.RiskStatus(*req.Status)
		}
		if req.DueDate != nil {
			risk.DueDate = req.DueDate
		}
	})
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.NewRiskResponse(risk)})
}
