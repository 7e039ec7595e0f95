package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/albazaar/storefront/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var setupOnce sync.Once

// SetupValidator configures gin's validator: JSON names in errors and the
// notblank tag for fields that must contain more than whitespace
func SetupValidator() {
	setupOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
		_ = v.RegisterValidation("notblank", validators.NotBlank)
	})
}

// FormatValidationErrors formats binding errors into a standard response.
// Malformed JSON yields a single detail without a field.
func FormatValidationErrors(err error, requestID string) dto.Response {
	var details []dto.ValidationDetail

	var validationErrors validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &validationErrors):
		for _, e := range validationErrors {
			details = append(details, dto.ValidationDetail{
				Field:   e.Field(),
				Message: getValidationMessage(e),
			})
		}
	case errors.As(err, &typeErr):
		details = append(details, dto.ValidationDetail{
			Field:   typeErr.Field,
			Message: "Must be a " + typeErr.Type.String(),
		})
	case errors.As(err, &syntaxErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		details = append(details, dto.ValidationDetail{Message: "Malformed JSON body"})
	}

	return dto.NewValidationErrorResponse(
		"Request validation failed",
		requestID,
		details,
	)
}

// HandleValidationError returns a validation error response. A body cut
// off by BodyLimit answers 413 instead.
func HandleValidationError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		AbortWithError(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, bodyTooLargeMessage)
		return
	}
	RespondError(c, http.StatusBadRequest, FormatValidationErrors(err, GetRequestID(c)))
}

// validationMessages maps validator tags to shopper-facing text. %s is
// the tag parameter; length tags get a different text for strings.
var validationMessages = map[string]struct{ text, str string }{
	"required": {text: "This field is required"},
	"notblank": {text: "Must not be blank"},
	"numeric":  {text: "Must contain digits only"},
	"min":      {text: "Must be at least %s", str: "Must be at least %s characters"},
	"max":      {text: "Must be at most %s", str: "Must be at most %s characters"},
	"len":      {text: "Must be exactly %s", str: "Must be exactly %s characters"},
	"oneof":    {text: "Must be one of: %s"},
	"gte":      {text: "Must be %s or more"},
	"lt":       {text: "Must be less than %s"},
}

func getValidationMessage(e validator.FieldError) string {
	m, ok := validationMessages[e.Tag()]
	if !ok {
		return "Invalid value"
	}
	format := m.text
	if m.str != "" && e.Kind() == reflect.String {
		format = m.str
	}
	if !strings.Contains(format, "%s") {
		return format
	}
	return fmt.Sprintf(format, e.Param())
}
