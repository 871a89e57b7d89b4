package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sinbc2003/cluade2/internal/api/middleware"
	"github.com/sinbc2003/cluade2/internal/api/response"
	"github.com/sinbc2003/cluade2/internal/domain"
	"github.com/sinbc2003/cluade2/internal/service"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login handles user login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var input domain.UserLogin
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	result, err := h.authService.Login(r.Context(), input)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(w, "invalid credentials")
			return
		}
		response.InternalError(w, "login failed")
		return
	}

	response.OK(w, result)
}

// ChangePassword sets a new password for the authenticated user
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	subject, _ := middleware.GetSubject(r.Context())

	var input struct {
		NewPassword string `json:"new_password" validate:"required,min=4,max=72"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	err := h.authService.ChangePassword(r.Context(), domain.PasswordChange{
		Username:    subject,
		NewPassword: input.NewPassword,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.NoContent(w)
}

// Register creates a new account. Admin only; the router guards it.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Username   string `json:"username" validate:"required,max=100"`
		Password   string `json:"password" validate:"required,min=4,max=72"`
		Privileged bool   `json:"privileged"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(input); err != nil {
		response.BadRequest(w, validationMessages(err))
		return
	}

	user, err := h.authService.CreateUser(r.Context(), input.Username, input.Password, input.Privileged)
	if err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	response.Created(w, user)
}
