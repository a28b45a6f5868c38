package auth

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/hijabina/hijabina-backend/internal/users"
	"github.com/hijabina/hijabina-backend/pkg/db"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
	"github.com/hijabina/hijabina-backend/pkg/security"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail applies the storefront's email shape check.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// NormalizePhone strips separators and reports whether the result is an
// Indonesian mobile number.
func NormalizePhone(phone string) (string, bool) {
	return users.NormalizePhone(phone)
}

// Register creates a customer account and signs it in.
func (s *service) Register(ctx context.Context, req RegisterRequest) (*TokenResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Nama wajib diisi").
			WithDetails(map[string]any{"field": "name"})
	}
	email := users.NormalizeEmail(req.Email)
	if !ValidEmail(email) {
		return nil, ReasonError(ReasonInvalidEmail)
	}
	if err := security.CheckStrength(req.Password); err != nil {
		return nil, ReasonError(ReasonWeakPassword)
	}
	var phone *string
	if req.Phone != nil && strings.TrimSpace(*req.Phone) != "" {
		cleaned, ok := NormalizePhone(*req.Phone)
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Nomor telepon tidak valid").
				WithDetails(map[string]any{"field": "phone"})
		}
		phone = &cleaned
	}
	var address *string
	if req.Address != nil && strings.TrimSpace(*req.Address) != "" {
		trimmed := strings.TrimSpace(*req.Address)
		address = &trimmed
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, ReasonError(ReasonEmailInUse)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, dependencyError(err, "check user email")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Phone:        phone,
		Address:      address,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, ReasonError(ReasonEmailInUse)
		}
		return nil, dependencyError(err, "create user")
	}

	s.logg.Info(s.logg.WithUserID(ctx, user.ID.String()), "auth.registered")
	return s.issue(ctx, user)
}
