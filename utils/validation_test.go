package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("cliente@moria.com.br"))
	assert.True(t, ValidateEmail("  spaced@moria.com "))
	assert.False(t, ValidateEmail("not-an-email"))
	assert.False(t, ValidateEmail("missing@tld"))
	assert.False(t, ValidateEmail(""))
}

func TestValidatePassword(t *testing.T) {
	ok, _ := ValidatePassword("Passw0rd")
	assert.True(t, ok)

	ok, msg := ValidatePassword("short1A")
	assert.False(t, ok)
	assert.Contains(t, msg, "8 characters")

	ok, msg = ValidatePassword("alllowercase1")
	assert.False(t, ok)
	assert.Contains(t, msg, "uppercase")

	ok, _ = ValidatePassword("NoDigitsHere")
	assert.False(t, ok)
}

func TestValidateCPF(t *testing.T) {
	assert.True(t, ValidateCPF("12345678901"))
	assert.True(t, ValidateCPF("123.456.789-01"))
	assert.False(t, ValidateCPF("1234567890"))
	assert.False(t, ValidateCPF("abcdefghijk"))
}

func TestValidatePlate(t *testing.T) {
	assert.True(t, ValidatePlate("ABC-1234"))
	assert.True(t, ValidatePlate("abc1234"))
	assert.True(t, ValidatePlate("BRA2E19")) // Mercosul format
	assert.False(t, ValidatePlate("AB-1234"))
	assert.False(t, ValidatePlate(""))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "Filtro de Oleo", SanitizeString("  Filtro   de  Oleo "))
	assert.Equal(t, "", SanitizeString("   "))
}
