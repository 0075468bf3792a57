package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akshayde/account_management_app/internal/apperrors"
	portssvc "github.com/akshayde/account_management_app/internal/core/ports/services"
	"github.com/akshayde/account_management_app/internal/dto"
	"github.com/akshayde/account_management_app/internal/middleware"
)

// UserHandler handles user profile endpoints.
type UserHandler struct {
	userService portssvc.UserSvcFacade
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(services *portssvc.ServiceContainer) *UserHandler {
	return &UserHandler{userService: services.User}
}

// registerUserRoutes sets up the routes for user profiles. All routes require
// authentication.
func registerUserRoutes(rg *gin.Engine, services *portssvc.ServiceContainer) {
	h := NewUserHandler(services)

	users := rg.Group("/users", middleware.AuthMiddleware(services.Token))
	{
		users.GET("/:id", h.getUser)
		users.PUT("/:id", h.updateUser)
	}
}

// getUser godoc
// @Summary Get a user by ID
// @Description Retrieves an active user's profile. Soft-deleted users are not visible.
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} dto.UserEnvelope
// @Failure 401 {object} dto.MessageResponse
// @Failure 404 {object} dto.MessageResponse
// @Security BearerAuth
// @Router /users/{id} [get]
func (h *UserHandler) getUser(c *gin.Context) {
	userID := c.Param("id")

	user, err := h.userService.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, dto.MessageResponse{Message: "User not found"})
			return
		}
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to get user", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, dto.MessageResponse{Message: "Failed to get user"})
		return
	}

	c.JSON(http.StatusOK, dto.UserEnvelope{User: dto.ToUserResponse(user)})
}

// updateUser godoc
// @Summary Update a user's profile
// @Description Applies a partial update to the user's own profile. Only the fields present in the body are changed.
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param update body dto.UpdateUserRequest true "Fields to update"
// @Success 200 {object} dto.UserEnvelope
// @Failure 400 {object} dto.ValidationErrorResponse
// @Failure 401 {object} dto.MessageResponse
// @Failure 403 {object} dto.MessageResponse
// @Failure 409 {object} dto.MessageResponse
// @Security BearerAuth
// @Router /users/{id} [put]
func (h *UserHandler) updateUser(c *gin.Context) {
	targetID := c.Param("id")

	callerID, ok := middleware.GetUserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, dto.MessageResponse{Message: "Not logged in"})
		return
	}
	// Users may only edit their own profile.
	if callerID != targetID {
		c.JSON(http.StatusForbidden, dto.MessageResponse{Message: "Forbidden"})
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ValidationErrorResponse{Message: "Validation failed", Errors: bindingErrors(err)})
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), targetID, req)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, dto.MessageResponse{Message: "User not found"})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, dto.MessageResponse{Message: "Email already exists"})
		default:
			middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to update user", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, dto.MessageResponse{Message: "Failed to update user"})
		}
		return
	}

	c.JSON(http.StatusOK, dto.UserEnvelope{
		Message: "User updated successfully",
		User:    dto.ToUserResponse(user),
	})
}
