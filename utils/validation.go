package utils

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	cpfRegex   = regexp.MustCompile(`^\d{11}$`)
	plateRegex = regexp.MustCompile(`^[A-Z]{3}-?\d[A-Z0-9]\d{2}$`)
)

// ValidateEmail checks if an email address is well formed
func ValidateEmail(email string) bool {
	return emailRegex.MatchString(strings.TrimSpace(email))
}

// ValidatePassword checks password strength requirements
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters long"
	}
	var hasUpper, hasLower, hasDigit bool
	for _, ch := range password {
		switch {
		case unicode.IsUpper(ch):
			hasUpper = true
		case unicode.IsLower(ch):
			hasLower = true
		case unicode.IsDigit(ch):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return false, "Password must contain uppercase, lowercase and digit characters"
	}
	return true, ""
}

// ValidateCPF checks the Brazilian taxpayer number format (digits only)
func ValidateCPF(cpf string) bool {
	cpf = strings.NewReplacer(".", "", "-", "").Replace(strings.TrimSpace(cpf))
	return cpfRegex.MatchString(cpf)
}

// ValidatePlate checks Brazilian vehicle plates, both legacy and Mercosul formats
func ValidatePlate(plate string) bool {
	return plateRegex.MatchString(strings.ToUpper(strings.TrimSpace(plate)))
}

// SanitizeString trims whitespace and collapses internal runs of spaces
func SanitizeString(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
