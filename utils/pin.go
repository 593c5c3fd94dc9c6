package utils

import (
	"strings"

	"github.com/google/uuid"
)

// pinLength is the number of hex characters kept from a random UUID
const pinLength = 12

// GeneratePinCode returns a random activation PIN such as PIN-9F2C41AB07DE
func GeneratePinCode() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	hex := strings.ReplaceAll(id.String(), "-", "")
	return "PIN-" + strings.ToUpper(hex[:pinLength]), nil
}

// NormalizePinCode trims and upper-cases user supplied PINs
func NormalizePinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
