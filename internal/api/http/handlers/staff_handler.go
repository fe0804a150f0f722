package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/stall-admin/internal/api/dto"
	"github.com/spec-kit/stall-admin/internal/service"
	apperrors "github.com/spec-kit/stall-admin/pkg/util"
)

// StaffHandler exposes the staff account endpoints.
type StaffHandler struct {
	staff    *service.StaffService
	validate *validator.Validate
}

// NewStaffHandler constructs handler.
func NewStaffHandler(staff *service.StaffService) *StaffHandler {
	return &StaffHandler{staff: staff, validate: newValidator()}
}

// Create handles POST /staff.
func (h *StaffHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateStaffRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	if err := h.validate.Struct(req); err != nil {
		return apperrors.NewValidationError("Missing required fields")
	}

	res, err := h.staff.CreateStaff(c.UserContext(), actorFrom(c), service.CreateStaffInput{
		Email:         req.Email,
		Password:      req.Password,
		FullName:      req.FullName,
		ContactNumber: req.ContactNumber,
		StallID:       req.StallID.Ptr(),
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.CreateStaffResponse{UserID: res.UserID, ConfirmationSent: res.ConfirmationSent})
}

// ResendInvite handles POST /staff/resend-invite.
func (h *StaffHandler) ResendInvite(c *fiber.Ctx) error {
	var req dto.ResendInviteRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}

	msg, err := h.staff.ResendInvite(c.UserContext(), actorFrom(c), service.ResendInviteInput{
		Email:   req.Email,
		StaffID: req.StaffID,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: msg})
}

// AuthMetadata handles GET /staff/:id/auth.
func (h *StaffHandler) AuthMetadata(c *fiber.Ctx) error {
	meta, err := h.staff.AuthMetadata(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.AuthMetadataResponse{
		EmailConfirmedAt: meta.EmailConfirmedAt,
		LastSignInAt:     meta.LastSignInAt,
	})
}

// Delete handles DELETE /staff/:id.
func (h *StaffHandler) Delete(c *fiber.Ctx) error {
	if err := h.staff.DeleteStaff(c.UserContext(), actorFrom(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// NotFound answers every unmatched route.
func NotFound(*fiber.Ctx) error {
	return apperrors.NewNotFound("Not Found")
}
