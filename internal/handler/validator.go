package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/abdusco/linkbox/internal"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

// FieldError describes why a single request field was rejected.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned for requests that decode but fail validation.
// It is rendered as 422 with the field list as detail.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := lo.Map(e.Fields, func(f FieldError, _ int) string {
		return f.Field + ": " + f.Message
	})
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validator plugs go-playground/validator into echo's Context.Validate.
type Validator struct {
	v *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by the name clients send them with.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})

	if err := v.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return internal.IsHTTPURL(fl.Field().String())
	}); err != nil {
		panic(fmt.Sprintf("register httpurl validation: %v", err))
	}

	return &Validator{v: v}
}

func (cv *Validator) Validate(i any) error {
	err := cv.v.Struct(i)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	return &ValidationError{
		Fields: lo.Map(verrs, func(fe validator.FieldError, _ int) FieldError {
			return FieldError{Field: fe.Field(), Message: fieldMessage(fe)}
		}),
	}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field required"
	case "email":
		return "value is not a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "httpurl":
		return "must be an absolute http or https URL"
	case "gte":
		return "must be greater than or equal to " + fe.Param()
	case "lte":
		return "must be less than or equal to " + fe.Param()
	default:
		return "failed on " + fe.Tag()
	}
}

// bindAndValidate decodes the request body into req and validates it.
// Undecodable bodies are 400, invalid values a *ValidationError.
func bindAndValidate(c echo.Context, req any) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body").SetInternal(err)
	}
	return c.Validate(req)
}
