package validator_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datahihi1/craft-mini/pkg/validator"
)

func TestMake(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value any
		rules string
		want  []string
	}{
		{"required ok", "Ann", "required", nil},
		{"required zero string ok", "0", "required", nil},
		{"required missing", nil, "required", []string{"field validation failed for required"}},
		{"required empty", "", "required", []string{"field validation failed for required"}},
		{"required zero int", 0, "required", []string{"field validation failed for required"}},
		{"required false", false, "required", []string{"field validation failed for required"}},
		{"email ok", "ann@example.com", "email", nil},
		{"email bad", "ann@", "email", []string{"field validation failed for email"}},
		{"email not a string", 42, "email", []string{"field validation failed for email"}},
		{"string ok", "x", "string", nil},
		{"string bad", 42, "string", []string{"field validation failed for string"}},
		{"numeric int", 42, "numeric", nil},
		{"numeric float string", "4.5", "numeric", nil},
		{"numeric bad", "4a", "numeric", []string{"field validation failed for numeric"}},
		{"min ok", "abc", "min:3", nil},
		{"min counts characters", "héé", "min:3", nil},
		{"min short", "ab", "min:3", []string{"field validation failed for min"}},
		{"max ok", "abc", "max:3", nil},
		{"max long", "abcd", "max:3", []string{"field validation failed for max"}},
		{"max on number text", 12345, "max:3", []string{"field validation failed for max"}},
		{"unknown rule passes", "x", "uuid", nil},
		{"rules in order", "", "required|email|min:2", []string{
			"field validation failed for required",
			"field validation failed for email",
			"field validation failed for min",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			errs := validator.Make(map[string]any{"field": tt.value}, map[string]string{"field": tt.rules}, nil)
			assert.Equal(t, tt.want, errs["field"])
		})
	}
}

func TestMake_CustomMessages(t *testing.T) {
	t.Parallel()

	errs := validator.Make(
		map[string]any{"email": "nope", "name": "Ann"},
		map[string]string{"email": "required|email", "name": "required|max:2"},
		map[string]string{"email.email": "Please enter a valid email address"},
	)

	assert.Equal(t, "Please enter a valid email address", errs.First("email"))
	assert.Equal(t, "name validation failed for max", errs.First("name"))
	assert.True(t, errs.Has("name"))
	assert.False(t, errs.Has("age"))
	assert.Empty(t, errs.First("age"))
}

func TestErrors(t *testing.T) {
	t.Parallel()

	t.Run("empty is nil error", func(t *testing.T) {
		t.Parallel()
		errs := validator.Make(map[string]any{"a": "x"}, map[string]string{"a": "required"}, nil)
		assert.Empty(t, errs)
		assert.NoError(t, errs.Err())
	})

	t.Run("error wraps sentinel", func(t *testing.T) {
		t.Parallel()
		errs := validator.Make(map[string]any{}, map[string]string{"b": "required", "a": "required"}, nil)
		err := errs.Err()
		require.Error(t, err)
		assert.True(t, errors.Is(err, validator.ErrValidation))
		assert.Equal(t, "validation failed: a validation failed for required; b validation failed for required", err.Error())
	})

	t.Run("json shape", func(t *testing.T) {
		t.Parallel()
		errs := validator.Make(map[string]any{}, map[string]string{"a": "required"}, nil)
		b, err := json.Marshal(errs)
		require.NoError(t, err)
		assert.JSONEq(t, `{"a":["a validation failed for required"]}`, string(b))
	})
}

func TestStruct(t *testing.T) {
	t.Parallel()

	type createUser struct {
		Name  string `json:"name" validate:"required,max=5"`
		Email string `json:"email,omitempty" validate:"required,email"`
		Note  string `validate:"max=3"`
	}

	require.NoError(t, validator.Struct(createUser{Name: "Ann", Email: "ann@example.com"}))

	err := validator.Struct(createUser{Name: "Annabelle", Email: "bad", Note: "long"})
	require.ErrorIs(t, err, validator.ErrValidation)

	var errs validator.Errors
	require.True(t, errors.As(err, &errs))
	assert.Equal(t, "name validation failed for max", errs.First("name"))
	assert.Equal(t, "email validation failed for email", errs.First("email"))
	assert.Equal(t, "Note validation failed for max", errs.First("Note"))
}
