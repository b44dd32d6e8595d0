package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Command   string `json:"command" validate:"required,oneof=register deregister"`
	Attribute uint64 `json:"attribute" validate:"gt=0"`
}

func TestValidateStruct_ReportsJSONNames(t *testing.T) {
	err := ValidateStruct(sample{Command: "explode"})
	require.Error(t, err)

	fields := TranslateError(err)
	assert.Equal(t, "must be one of [register deregister]", fields["command"])
	assert.Equal(t, "must satisfy gt=0", fields["attribute"])
}

func TestValidateStruct_Valid(t *testing.T) {
	assert.NoError(t, ValidateStruct(sample{Command: "register", Attribute: 4}))
	assert.Empty(t, TranslateError(nil))
}

func TestTranslateError_Other(t *testing.T) {
	assert.Equal(t, map[string]string{"error": "boom"}, TranslateError(errors.New("boom")))
}
