package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sinbc2003/cluade2/internal/api/response"
	"github.com/sinbc2003/cluade2/internal/domain"
)

var validate = validator.New()

// validationMessages flattens validator errors into a field->message map
func validationMessages(err error) any {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err.Error()
	}

	messages := make(map[string]string)
	for _, e := range validationErrors {
		switch e.Tag() {
		case "required":
			messages[e.Field()] = "field is required"
		case "min":
			messages[e.Field()] = "must be at least " + e.Param() + " characters"
		case "max":
			messages[e.Field()] = "must be at most " + e.Param() + " characters"
		default:
			messages[e.Field()] = "validation failed on " + e.Tag()
		}
	}
	return messages
}

// writeDomainError maps the error taxonomy onto HTTP statuses
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, "not found")
	case errors.Is(err, domain.ErrForbidden):
		response.Forbidden(w, "access denied")
	case errors.Is(err, domain.ErrEmptyMessage):
		response.BadRequest(w, "message text is empty")
	case errors.Is(err, domain.ErrUnsupportedModel):
		response.BadRequest(w, "unsupported model")
	default:
		response.InternalError(w, "internal error")
	}
}

// chatbotIDParam parses the {chatbotID} URL parameter
func chatbotIDParam(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "chatbotID"))
}
