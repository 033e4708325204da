package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	apperrors "promptdeck.io/promptdeck/internal/pkg/errors"
)

var registerOnce sync.Once

// RegisterValidation makes gin's validator report JSON field names.
func RegisterValidation() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonFieldName)
	})
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}

// bindJSON decodes the request body into dst. On failure the error is
// recorded and false is returned.
func bindJSON(c *gin.Context, dst interface{}) bool {
	RegisterValidation()
	if err := c.ShouldBindJSON(dst); err != nil {
		fail(c, bindError(err))
		return false
	}
	return true
}

func bindError(err error) *apperrors.AppError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]apperrors.FieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, apperrors.FieldError{
				Field:   fe.Field(),
				Code:    fe.Tag(),
				Message: fieldMessage(fe),
			})
		}
		return apperrors.BadRequest(apperrors.CodeValidationFailed, "request validation failed").
			WithFieldErrors(fields)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, io.EOF):
		return apperrors.BadRequest(apperrors.CodeInvalidRequest, "request body is required")
	case errors.As(err, &syntaxErr):
		return apperrors.BadRequest(apperrors.CodeInvalidRequest, "request body is not valid JSON")
	case errors.As(err, &typeErr):
		return apperrors.BadRequest(apperrors.CodeInvalidRequest, "field "+typeErr.Field+" has the wrong type")
	default:
		return apperrors.BadRequest(apperrors.CodeInvalidRequest, "request body could not be decoded")
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}
