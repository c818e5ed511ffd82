package handlers

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fintrackeasy/user-service/internal/apperror"
	"github.com/fintrackeasy/user-service/internal/middleware"
	"github.com/fintrackeasy/user-service/internal/service"
	"github.com/fintrackeasy/user-service/internal/utils"
)

type UserHandler struct {
	svc       *service.UserService
	logger    *zap.SugaredLogger
	opTimeout time.Duration
}

func NewUserHandler(svc *service.UserService, logger *zap.SugaredLogger, opTimeout time.Duration) *UserHandler {
	return &UserHandler{svc: svc, logger: logger, opTimeout: opTimeout}
}

// opCtx is detached from the request context so a client disconnect does not
// abort an in-flight store or mail write; the timeout still bounds the I/O.
func (h *UserHandler) opCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), h.opTimeout)
}

func (h *UserHandler) respondError(c *fiber.Ctx, err error) error {
	var vErr *apperror.ValidationError
	if errors.As(err, &vErr) {
		return utils.JSONValidation(c, vErr.Fields)
	}
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		if appErr.Code >= fiber.StatusInternalServerError {
			h.logger.Errorf("request failed: %v", appErr.Err)
			return utils.JSONInternal(c, appErr.Message)
		}
		return utils.JSONMessage(c, appErr.Code, appErr.Message)
	}
	h.logger.Errorf("unclassified error: %v", err)
	return utils.JSONInternal(c, "internal server error")
}

func callerID(c *fiber.Ctx) string {
	id, _ := c.Locals(middleware.CallerIDKey).(string)
	return id
}

type registerRequest struct {
	Name     string `json:"name"`
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
}

// POST /api/users/register
func (h *UserHandler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONMessage(c, fiber.StatusBadRequest, "Invalid request body")
	}

	ctx, cancel := h.opCtx()
	defer cancel()

	res, err := h.svc.Register(ctx, service.RegisterInput{
		Name:     req.Name,
		Nickname: req.Nickname,
		Email:    req.Email,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Verification email sent",
		"userId":  res.UserID,
	})
}

// GET /api/users/verify-email?token=...&id=...
func (h *UserHandler) VerifyEmail(c *fiber.Ctx) error {
	ctx, cancel := h.opCtx()
	defer cancel()

	res, err := h.svc.VerifyEmail(ctx, c.Query("token"), c.Query("id"))
	if err != nil {
		return h.respondError(c, err)
	}

	msg := "Email verified successfully"
	if res.AlreadyVerified {
		msg = "Email already verified"
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": msg,
		"data": fiber.Map{
			"redirectUrl":  res.RedirectURL,
			"autoRedirect": true,
		},
	})
}

// GET /api/users/
func (h *UserHandler) List(c *fiber.Ctx) error {
	ctx, cancel := h.opCtx()
	defer cancel()

	users, err := h.svc.ListUsers(ctx)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(users)
}

// GET /api/users/me
func (h *UserHandler) Me(c *fiber.Ctx) error {
	ctx, cancel := h.opCtx()
	defer cancel()

	u, err := h.svc.GetByID(ctx, callerID(c))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": u})
}

// GET /api/users/:id
func (h *UserHandler) GetByID(c *fiber.Ctx) error {
	ctx, cancel := h.opCtx()
	defer cancel()

	u, err := h.svc.GetByID(ctx, c.Params("id"))
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(u)
}

// GET /api/users/email/:email
func (h *UserHandler) GetByEmail(c *fiber.Ctx) error {
	email, err := url.PathUnescape(c.Params("email"))
	if err != nil {
		email = c.Params("email")
	}

	ctx, cancel := h.opCtx()
	defer cancel()

	u, err := h.svc.GetByEmail(ctx, email)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(u)
}

type updateProfileRequest struct {
	Nickname          *string `json:"nickname"`
	Phone             *string `json:"phone"`
	PreferredLanguage *string `json:"preferredLanguage"`
}

// PATCH /api/users/:id
func (h *UserHandler) UpdateProfile(c *fiber.Ctx) error {
	var req updateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.JSONMessage(c, fiber.StatusBadRequest, "Invalid request body")
	}

	ctx, cancel := h.opCtx()
	defer cancel()

	u, err := h.svc.UpdateProfile(ctx, c.Params("id"), callerID(c), service.ProfileUpdate{
		Nickname:          req.Nickname,
		Phone:             req.Phone,
		PreferredLanguage: req.PreferredLanguage,
	})
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Profile updated successfully", "user": u})
}

// DELETE /api/users/:id
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	ctx, cancel := h.opCtx()
	defer cancel()

	if err := h.svc.Delete(ctx, c.Params("id"), callerID(c)); err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "User deleted successfully"})
}
