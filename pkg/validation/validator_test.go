package validation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"AdminPanelPlatform/pkg/errors"
)

func TestValidateRequiredFields(t *testing.T) {
	v := NewValidator()

	err := v.ValidateRequiredFields(map[string]string{
		"shopName":  "Acme Store",
		"ownerName": "   ",
	}, []string{"shopName", "ownerName", "pincode"})
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))

	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Equal(t, "ownerName is required", appErr.Message)
	assert.Equal(t, map[string]string{"ownerName": "is required", "pincode": "is required"}, appErr.Fields)
	assert.Equal(t, "ownerName: is required; pincode: is required", appErr.Details)

	assert.NoError(t, v.ValidateRequiredFields(map[string]string{"name": "Acme"}, []string{"name"}))
}

func TestValidateFormats(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateEmail("email", "admin@example.com"))
	assert.Error(t, v.ValidateEmail("email", "admin@"))
	assert.Error(t, v.ValidateEmail("email", "admin.example.com"))
	assert.Error(t, v.ValidateEmail("email", ""))

	assert.NoError(t, v.ValidatePhone("ownerPhone", "9999999999"))
	assert.NoError(t, v.ValidatePhone("ownerPhone", "+919999999999"))
	assert.Error(t, v.ValidatePhone("ownerPhone", "99-99"))

	assert.NoError(t, v.ValidatePincode("pincode", "100000"))
	assert.Error(t, v.ValidatePincode("pincode", "1000"))
	assert.Error(t, v.ValidatePincode("pincode", "10000a"))

	assert.NoError(t, v.ValidateEnum("active", []string{"active", "inactive"}, "status"))
	assert.Error(t, v.ValidateEnum("deleted", []string{"active", "inactive"}, "status"))

	assert.NoError(t, v.ValidateStringLength("Добро", "name", 1, 5))
	assert.Error(t, v.ValidateStringLength("", "name", 1, 5))

	assert.NoError(t, v.ValidateNonNegative("mrp", 0))
	assert.Error(t, v.ValidateNonNegative("mrp", -1))
}

func TestValidateURL(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.ValidateURL("https://admin.example.com", []string{"http", "https"}))
	assert.Error(t, v.ValidateURL("ftp://admin.example.com", []string{"http", "https"}))
	assert.Error(t, v.ValidateURL("http://", nil))
	assert.Error(t, v.ValidateURL("http://bad host", nil))
}

func TestProblems_Merge(t *testing.T) {
	v := NewValidator()

	var p Problems
	p.Merge(v.ValidateRequiredFields(map[string]string{}, []string{"name"}))
	p.Merge(v.ValidatePincode("pincode", "12"))
	p.Merge(v.ValidateRequiredFields(map[string]string{}, []string{"name"}))
	p.Merge(fmt.Errorf("foreign"))
	p.Merge(nil)

	err := p.Err()
	appErr, ok := errors.As(err)
	require.True(t, ok)
	assert.Len(t, appErr.Fields, 3)
	assert.Equal(t, "is required", appErr.Fields["name"])
	assert.Equal(t, "foreign", appErr.Fields["_"])

	var empty Problems
	assert.True(t, empty.Empty())
	assert.NoError(t, empty.Err())
}
