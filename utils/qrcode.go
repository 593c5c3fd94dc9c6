package utils

import (
	"bytes"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/qr"
)

// ReferralLink builds the deep link encoded in referral QR codes
func ReferralLink(referralCode string) string {
	return "matrix://referral/" + referralCode
}

// ReferralQRCode renders the referral link of a code as a size×size PNG
func ReferralQRCode(referralCode string, size int) ([]byte, error) {
	code, err := qr.Encode(ReferralLink(referralCode), qr.M, qr.Auto)
	if err != nil {
		return nil, err
	}

	code, err = barcode.Scale(code, size, size)
	if err != nil {
		return nil, err
	}

	buffer := new(bytes.Buffer)
	if err := png.Encode(buffer, code); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
