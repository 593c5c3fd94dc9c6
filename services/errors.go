package services

import "errors"

var (
	ErrMemberNotFound       = errors.New("member not found")
	ErrEmailTaken           = errors.New("email is already registered")
	ErrSponsorNotFound      = errors.New("referral code not found")
	ErrSponsorRequired      = errors.New("referral code is required")
	ErrSponsorBlocked       = errors.New("sponsor account is blocked")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrInvalidPhone         = errors.New("invalid phone number")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidRefreshToken  = errors.New("refresh token is invalid or expired")
	ErrMemberBlocked        = errors.New("member account is blocked")
	ErrAlreadyActive        = errors.New("member is already activated")
	ErrPinUnavailable       = errors.New("pin is invalid or already used")
	ErrTooManyPinAttempts   = errors.New("too many activation attempts, try again later")
	ErrStockistNotFound     = errors.New("stockist not found")
	ErrCommissionNotFound   = errors.New("commission not found")
	ErrCommissionNotPending = errors.New("commission is not in the required status")
)
