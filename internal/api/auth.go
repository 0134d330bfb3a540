package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/forkbook/backend/internal/logger"
	"github.com/forkbook/backend/internal/models"
	"github.com/forkbook/backend/internal/service"
)

type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email"`
	Password             string `json:"password" validate:"required,min=6"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required,eqfield=Password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

// userData is the account shape returned by register and login.
type userData struct {
	UUID  string      `json:"uuid"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	Token string      `json:"token,omitempty"`
}

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/register", h.Register)
	router.POST("/login", h.Login)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusUnprocessableEntity, "Validation failed", nil)
		return
	}

	errs := validateStruct(&req)
	if len(errs["email"]) == 0 && req.Email != "" {
		taken, err := h.authService.EmailExists(req.Email)
		if err != nil {
			logger.Error("email lookup failed", "error", err)
			Error(c, http.StatusInternalServerError, "Something went wrong", nil)
			return
		}
		if taken {
			errs.add("email", "The email has already been taken.")
		}
	}
	if len(errs) > 0 {
		Error(c, http.StatusUnprocessableEntity, "Validation failed", errs)
		return
	}

	user, err := h.authService.Register(req.Name, req.Email, req.Password)
	if err != nil {
		if err == service.ErrEmailTaken {
			Error(c, http.StatusUnprocessableEntity, "Validation failed", fieldErrors{
				"email": {"The email has already been taken."},
			})
			return
		}
		logger.Error("registration failed", "error", err)
		Error(c, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}

	Success(c, http.StatusCreated, "User registered successfully", userData{
		UUID:  user.UUID.String(),
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		Error(c, http.StatusUnprocessableEntity, "Validation failed", nil)
		return
	}

	errs := validateStruct(&req)
	// An unknown email is a validation failure (422) while a wrong
	// password for a known account is 401. Existing clients key off the
	// status codes, so the asymmetry stays even though it leaks account
	// existence.
	if len(errs["email"]) == 0 && req.Email != "" {
		exists, err := h.authService.EmailExists(req.Email)
		if err != nil {
			logger.Error("email lookup failed", "error", err)
			Error(c, http.StatusInternalServerError, "Something went wrong", nil)
			return
		}
		if !exists {
			errs.add("email", "The selected email is invalid.")
		}
	}
	if len(errs) > 0 {
		Error(c, http.StatusUnprocessableEntity, "Validation failed", errs)
		return
	}

	user, token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		if err == service.ErrInvalidCredentials {
			Error(c, http.StatusUnauthorized, "Invalid email or password", nil)
			return
		}
		logger.Error("login failed", "error", err)
		Error(c, http.StatusInternalServerError, "Something went wrong", nil)
		return
	}

	Success(c, http.StatusOK, "User logged in successfully", userData{
		UUID:  user.UUID.String(),
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		Token: token,
	})
}
