package security

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateModelName(t *testing.T) {
	tests := []struct {
		name    string
		model   string
		wantErr bool
	}{
		{"distilbert", "DistilBert", false},
		{"multibert", "MultiBert", false},
		{"with hyphen", "my-model_2", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", MaxModelNameLength+1), true},
		{"path", "../DistilBert", true},
		{"spaces", "Distil Bert", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateModelName(tt.model)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidationError_Error(t *testing.T) {
	err := ValidateModelName("")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr), "expected *ValidationError, got %T", err)
	assert.Equal(t, "model", verr.Field)
	assert.Equal(t, "validation failed for model: required", err.Error())

	err = ValidateModelName(strings.Repeat("a", MaxModelNameLength+1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(got: 65)")
}
