package utils

import (
	"crypto/rand"
	"encoding/base32"
	"strings"
)

// ReferralType is the prefix of a referral code
type ReferralType string

const (
	MemberType   ReferralType = "MBR"
	StockistType ReferralType = "STK"
)

// ReferralTypeFor picks the referral prefix for a member user type
func ReferralTypeFor(userType string) ReferralType {
	if userType == "stockist" {
		return StockistType
	}
	return MemberType
}

// GenerateReferralCode generates a referral code for the specified type.
// Format: {TYPE}-{RANDOM} where RANDOM is 6 uppercase alphanumerics,
// e.g. MBR-ABC123.
func GenerateReferralCode(entityType ReferralType) (string, error) {
	// 4 random bytes give 7 base32 characters; keep 6
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", err
	}

	randomStr := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(randomBytes)
	randomStr = strings.ToUpper(randomStr[:6])

	return string(entityType) + "-" + randomStr, nil
}

// NormalizeReferralCode trims and upper-cases user supplied codes
func NormalizeReferralCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
