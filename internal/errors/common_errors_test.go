package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name        string
		appError    *AppError
		wantMessage string
	}{
		{
			name:        "error without cause",
			appError:    NewSchemaError("subclasse", "required column subclasse is missing"),
			wantMessage: "[SCHEMA] required column subclasse is missing",
		},
		{
			name:        "error with cause",
			appError:    NewStorageError("failed to write table", fmt.Errorf("disk full")),
			wantMessage: "[STORAGE] failed to write table: disk full",
		},
		{
			name:        "missing input",
			appError:    NewMissingInputError("input dataset", "/data/raw.parquet", nil),
			wantMessage: "[MISSING_INPUT] input dataset not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMessage, tt.appError.Error())
		})
	}
}

func TestAppError_Fatal(t *testing.T) {
	tests := []struct {
		errType ErrorType
		fatal   bool
	}{
		{ErrTypeMissingInput, true},
		{ErrTypeSchema, true},
		{ErrTypeConfig, true},
		{ErrTypeParsing, false},
		{ErrTypeStorage, false},
		{ErrTypeNetwork, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.errType), func(t *testing.T) {
			assert.Equal(t, tt.fatal, NewAppError(tt.errType, "x", nil).Fatal())
		})
	}
}

func TestNewRowSchemaError_Context(t *testing.T) {
	err := NewRowSchemaError(42, "saldomovimentacao", "movement balance must be 1 or -1")

	assert.Equal(t, ErrTypeSchema, err.Type)
	assert.Equal(t, 42, err.Context["row"])
	assert.Equal(t, "saldomovimentacao", err.Context["column"])
	assert.Contains(t, err.Error(), "row 42")
}

func TestAppError_Unwrap(t *testing.T) {
	cause := stderrors.New("permission denied")
	err := fmt.Errorf("write step: %w", NewStorageError("cannot create output", cause))

	var appErr *AppError
	require.True(t, As(err, &appErr))
	assert.Equal(t, ErrTypeStorage, appErr.Type)
	assert.True(t, Is(err, cause))
	assert.True(t, IsType(err, ErrTypeStorage))
	assert.False(t, IsType(err, ErrTypeSchema))
	assert.False(t, IsType(cause, ErrTypeStorage))
}

func TestAppError_WithContextOnZeroValue(t *testing.T) {
	err := &AppError{Type: ErrTypeConfig, Message: "bad"}
	err.WithContext("field", "pipeline.workers")
	assert.Equal(t, "pipeline.workers", err.Context["field"])
}
