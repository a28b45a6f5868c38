package auth

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/hijabina/hijabina-backend/internal/users"
	"github.com/hijabina/hijabina-backend/pkg/db"
	"github.com/hijabina/hijabina-backend/pkg/db/models"
	"github.com/hijabina/hijabina-backend/pkg/enums"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
	"github.com/hijabina/hijabina-backend/pkg/security"
)

// MsgAdminExists is returned once any admin account exists.
const MsgAdminExists = "Admin sudah ada!"

// AdminSeed is the first admin account.
type AdminSeed struct {
	Name     string
	Email    string
	Password string
	Phone    string
}

type adminStore interface {
	CountByRole(ctx context.Context, role enums.UserRole) (int64, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
}

// SeedAdmin creates the store's first admin. It is one-shot: once an admin
// exists every call fails with CONFLICT and writes nothing.
func SeedAdmin(ctx context.Context, store adminStore, hasher *security.Hasher, in AdminSeed) (*users.UserDTO, error) {
	if store == nil || hasher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user store and hasher are required")
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Nama wajib diisi").
			WithDetails(map[string]any{"field": "name"})
	}
	email := users.NormalizeEmail(in.Email)
	if !ValidEmail(email) {
		return nil, ReasonError(ReasonInvalidEmail)
	}
	if err := security.CheckStrength(in.Password); err != nil {
		return nil, ReasonError(ReasonWeakPassword)
	}
	var phone *string
	if strings.TrimSpace(in.Phone) != "" {
		cleaned, ok := users.NormalizePhone(in.Phone)
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Nomor telepon tidak valid").
				WithDetails(map[string]any{"field": "phone"})
		}
		phone = &cleaned
	}

	admins, err := store.CountByRole(ctx, enums.UserRoleAdmin)
	if err != nil {
		return nil, dependencyError(err, "count admins")
	}
	if admins > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, MsgAdminExists)
	}
	if _, err := store.FindByEmail(ctx, email); err == nil {
		return nil, ReasonError(ReasonEmailInUse)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, dependencyError(err, "check admin email")
	}

	hash, err := hasher.Hash(in.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	user, err := store.Create(ctx, users.CreateUserDTO{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Phone:        phone,
		Role:         enums.UserRoleAdmin,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, ReasonError(ReasonEmailInUse)
		}
		return nil, dependencyError(err, "create admin")
	}
	return users.FromModel(user), nil
}
