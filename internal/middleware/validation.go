package middleware

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "agrocaged/internal/errors"
)

var codePattern = regexp.MustCompile(`^[0-9]+$`)

// QueryValidator validates query parameters and the filter structs decoded from them
type QueryValidator struct {
	validator    *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewQueryValidator creates a validator reporting failures through errorHandler
func NewQueryValidator(logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *QueryValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("code", isCode)

	// Error fields carry the query parameter name
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("query"), ",", 2)[0]
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		}
		if name == "-" {
			return ""
		}
		return name
	})

	return &QueryValidator{
		validator:    v,
		logger:       logger.With(slog.String("component", "query_validator")),
		errorHandler: errorHandler,
	}
}

// ValidateStruct checks v against its validate tags. The first failing
// field is returned as a validation APIError.
func (q *QueryValidator) ValidateStruct(v any) error {
	err := q.validator.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return apierrors.ErrValidation("", err.Error())
	}

	fe := fieldErrs[0]
	return apierrors.ErrValidation(fe.Field(), formatValidationError(fe))
}

// ValidateInt reads an integer parameter bounded by [min, max]
func (q *QueryValidator) ValidateInt(w http.ResponseWriter, r *http.Request, param string, min, max, defaultValue int) (int, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		q.reject(w, r, param, fmt.Sprintf("%s must be a valid integer", param))
		return 0, false
	}
	if n < min || n > max {
		q.reject(w, r, param, fmt.Sprintf("%s must be between %d and %d", param, min, max))
		return 0, false
	}
	return n, true
}

// ValidateEnum reads a parameter restricted to allowed values
func (q *QueryValidator) ValidateEnum(w http.ResponseWriter, r *http.Request, param string, allowed []string, defaultValue string) (string, bool) {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue, true
	}
	for _, a := range allowed {
		if value == a {
			return value, true
		}
	}
	q.reject(w, r, param, fmt.Sprintf("%s must be one of: %s", param, strings.Join(allowed, ", ")))
	return "", false
}

func (q *QueryValidator) reject(w http.ResponseWriter, r *http.Request, param, message string) {
	q.logger.DebugContext(r.Context(), "query parameter rejected",
		slog.String("param", param),
		slog.String("value", r.URL.Query().Get(param)))
	q.errorHandler.HandleError(w, r, apierrors.ErrValidation(param, message))
}

func formatValidationError(err validator.FieldError) string {
	field := err.Field()
	param := err.Param()

	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", field, param)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "datetime":
		return fmt.Sprintf("%s must match the layout %s", field, param)
	case "code":
		return fmt.Sprintf("%s must contain only digits", field)
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, err.Tag())
	}
}

// isCode accepts IBGE and CNAE codes, which are digit-only strings
func isCode(fl validator.FieldLevel) bool {
	return codePattern.MatchString(fl.Field().String())
}
