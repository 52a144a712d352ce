package validation

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "agrocaged/internal/errors"
	"agrocaged/pkg/contracts/domain"
)

// RecordValidator enforces the invariants of raw movement records through struct tags
type RecordValidator struct {
	validate *validator.Validate
}

// NewRecordValidator creates a validator that reports fields by their column name
func NewRecordValidator() *RecordValidator {
	v := validator.New()

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &RecordValidator{validate: v}
}

// Validate checks one record. The first violation becomes a schema error naming the
// row and column.
func (v *RecordValidator) Validate(record domain.RawMovement) error {
	err := v.validate.Struct(record)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !apperrors.As(err, &fieldErrors) || len(fieldErrors) == 0 {
		return apperrors.NewAppError(apperrors.ErrTypeSchema, "record validation failed", err)
	}

	fe := fieldErrors[0]
	return apperrors.NewRowSchemaError(record.Row, fe.Field(), describe(fe))
}

// ValidateAll checks every record and stops at the first violation
func (v *RecordValidator) ValidateAll(records []domain.RawMovement) error {
	for i := range records {
		if err := v.Validate(records[i]); err != nil {
			return err
		}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "len":
		return fmt.Sprintf("%s must have %s characters, got %q", fe.Field(), fe.Param(), fe.Value())
	case "numeric":
		return fmt.Sprintf("%s must be numeric, got %q", fe.Field(), fe.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %v", fe.Field(), fe.Param(), fe.Value())
	case "min", "max":
		return fmt.Sprintf("%s out of range (%s %s), got %v", fe.Field(), fe.Tag(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
