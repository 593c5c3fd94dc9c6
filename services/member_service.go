package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/matrix_backend/models"
	"github.com/HSouheill/matrix_backend/repositories"
	"github.com/HSouheill/matrix_backend/utils"
)

// maxReferralCodeAttempts bounds retries on referral code collisions
const maxReferralCodeAttempts = 5

// TokenIssuer signs access and refresh tokens for a member
type TokenIssuer interface {
	Issue(userID, email, userType string) (string, string, error)
	// ParseRefresh returns the user ID of a valid refresh token
	ParseRefresh(token string) (string, error)
}

// UplineRefresher reacts to a member joining the active matrix
type UplineRefresher interface {
	RefreshUpline(ctx context.Context, memberID primitive.ObjectID) error
}

type MemberService struct {
	members   MemberStore
	pins      PinStore
	tokens    TokenIssuer
	refresher UplineRefresher
	attempts  AttemptLimiter
	now       func() time.Time
}

func NewMemberService(members MemberStore, pins PinStore, tokens TokenIssuer, refresher UplineRefresher) *MemberService {
	return &MemberService{
		members:   members,
		pins:      pins,
		tokens:    tokens,
		refresher: refresher,
		attempts:  noopLimiter{},
		now:       time.Now,
	}
}

// WithAttemptLimiter throttles PIN activation attempts
func (s *MemberService) WithAttemptLimiter(l AttemptLimiter) *MemberService {
	if l != nil {
		s.attempts = l
	}
	return s
}

// Register creates a pending member under the sponsor owning the referral
// code. Only the very first member may register without one.
func (s *MemberService) Register(ctx context.Context, req models.RegisterRequest) (*models.Member, error) {
	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return nil, ErrInvalidEmail
	}
	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return nil, ErrInvalidPhone
	}

	if _, err := s.members.FindByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, err
	}

	var sponsorID *primitive.ObjectID
	if code := utils.NormalizeReferralCode(req.ReferralCode); code != "" {
		sponsor, err := s.members.FindByReferralCode(ctx, code)
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSponsorNotFound
		}
		if err != nil {
			return nil, err
		}
		if sponsor.Status == models.MemberStatusBlocked {
			return nil, ErrSponsorBlocked
		}
		sponsorID = &sponsor.ID
	} else {
		count, err := s.members.Count(ctx)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrSponsorRequired
		}
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	member := &models.Member{
		FullName:  utils.SanitizeInput(req.FullName),
		Email:     email,
		Phone:     phone,
		Password:  hash,
		UserType:  models.MemberTypeMember,
		Status:    models.MemberStatusPending,
		SponsorID: sponsorID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	for attempt := 0; attempt < maxReferralCodeAttempts; attempt++ {
		code, err := utils.GenerateReferralCode(utils.ReferralTypeFor(member.UserType))
		if err != nil {
			return nil, err
		}
		member.ReferralCode = code

		err = s.members.Create(ctx, member)
		if err == nil {
			return member, nil
		}
		if !errors.Is(err, repositories.ErrDuplicate) {
			return nil, err
		}
		// Either the email raced with another registration or the
		// referral code collided; only the latter is worth a retry.
		if _, ferr := s.members.FindByEmail(ctx, email); ferr == nil {
			return nil, ErrEmailTaken
		}
	}
	return nil, fmt.Errorf("could not allocate a unique referral code after %d attempts", maxReferralCodeAttempts)
}

// Login checks credentials and issues tokens
func (s *MemberService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	member, err := s.members.FindByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(member.Password, req.Password) {
		return nil, ErrInvalidCredentials
	}
	if member.Status == models.MemberStatusBlocked {
		return nil, ErrMemberBlocked
	}

	token, refresh, err := s.tokens.Issue(member.ID.Hex(), member.Email, member.UserType)
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{Token: token, RefreshToken: refresh, Member: *member}, nil
}

// Refresh trades a refresh token for a new token pair. The member is
// reloaded so blocked accounts and changed user types take effect.
func (s *MemberService) Refresh(ctx context.Context, refreshToken string) (*models.LoginResponse, error) {
	userID, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	member, err := s.members.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, err
	}
	if member.Status == models.MemberStatusBlocked {
		return nil, ErrMemberBlocked
	}

	token, refresh, err := s.tokens.Issue(member.ID.Hex(), member.Email, member.UserType)
	if err != nil {
		return nil, err
	}
	return &models.LoginResponse{Token: token, RefreshToken: refresh, Member: *member}, nil
}

func (s *MemberService) Get(ctx context.Context, id primitive.ObjectID) (*models.Member, error) {
	member, err := s.members.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrMemberNotFound
	}
	return member, err
}

// DirectReferrals lists the members sponsored by id
func (s *MemberService) DirectReferrals(ctx context.Context, id primitive.ObjectID) ([]models.ReferralSummary, error) {
	members, err := s.members.ListDirectReferrals(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]models.ReferralSummary, len(members))
	for i, m := range members {
		out[i] = models.ReferralSummary{ID: m.ID, FullName: m.FullName, Status: m.Status, CreatedAt: m.CreatedAt}
	}
	return out, nil
}

// Activate redeems a PIN and activates the member. The PIN is released
// again if the member cannot be activated.
func (s *MemberService) Activate(ctx context.Context, id primitive.ObjectID, pinCode string) (*models.Member, error) {
	member, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch member.Status {
	case models.MemberStatusActive:
		return nil, ErrAlreadyActive
	case models.MemberStatusBlocked:
		return nil, ErrMemberBlocked
	}

	if err := s.attempts.Allow(ctx, id.Hex()); err != nil {
		return nil, err
	}

	code := utils.NormalizePinCode(pinCode)
	now := s.now()
	if _, err := s.pins.Redeem(ctx, code, id, now); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPinUnavailable
		}
		return nil, err
	}

	if err := s.members.Activate(ctx, id, code, now); err != nil {
		if rerr := s.pins.Release(ctx, code); rerr != nil {
			log.Printf("Failed to release pin %s after activation error: %v", code, rerr)
		}
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrAlreadyActive
		}
		return nil, err
	}

	member.Status = models.MemberStatusActive
	member.ActivationPin = code
	member.ActivatedAt = &now
	member.UpdatedAt = now

	if s.refresher != nil {
		if err := s.refresher.RefreshUpline(ctx, id); err != nil {
			log.Printf("Failed to refresh upline of %s: %v", id.Hex(), err)
		}
	}
	return member, nil
}

// EnsureAdmin creates an active admin account with the given credentials
// unless a member with that email already exists. The admin has no sponsor
// and can serve as the root of the referral tree.
func (s *MemberService) EnsureAdmin(ctx context.Context, email, password string) (*models.Member, bool, error) {
	email, err := utils.SanitizeEmail(email)
	if err != nil {
		return nil, false, err
	}
	if existing, err := s.members.FindByEmail(ctx, email); err == nil {
		return existing, false, nil
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, false, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}
	code, err := utils.GenerateReferralCode(utils.ReferralTypeFor(models.MemberTypeAdmin))
	if err != nil {
		return nil, false, err
	}

	now := s.now()
	admin := &models.Member{
		FullName:     "Administrator",
		Email:        email,
		Password:     hash,
		UserType:     models.MemberTypeAdmin,
		Status:       models.MemberStatusActive,
		ReferralCode: code,
		ActivatedAt:  &now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.members.Create(ctx, admin); err != nil {
		return nil, false, err
	}
	return admin, true, nil
}
