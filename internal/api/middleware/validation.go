package middleware

import (
	stderrors "errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"media2text/internal/api/errors"
)

// Validator interface for domain validation
type Validator interface {
	Validate() error
}

// ValidateRequest binds the JSON body and checks struct tags, then domain
// rules. A body that is not JSON yields a bad request error; tag failures
// yield a validation error with per-field details.
func ValidateRequest(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		var validationErrs validator.ValidationErrors
		if !stderrors.As(err, &validationErrs) {
			return errors.NewBadRequestError("Request body must be a JSON object")
		}

		fields := make(map[string]string)
		for _, fieldError := range validationErrs {
			field := strings.ToLower(fieldError.Field())
			switch fieldError.Tag() {
			case "required":
				fields[field] = "is required"
			case "url":
				fields[field] = "must be a valid URL"
			case "max":
				fields[field] = "is too long"
			default:
				fields[field] = "is invalid"
			}
		}
		return errors.NewValidationError("Validation failed", fields)
	}

	if v, ok := req.(Validator); ok {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}
