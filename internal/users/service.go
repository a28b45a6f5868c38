package users

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
	"github.com/hijabina/hijabina-backend/pkg/logger"
)

// MsgProfileUpdated confirms a saved profile.
const MsgProfileUpdated = "Profil berhasil diperbarui"

const msgUserNotFound = "User tidak ditemukan"

// ProfileService is the signed-in user's view of their own account.
type ProfileService struct {
	repo *Repository
	logg *logger.Logger
}

func NewProfileService(repo *Repository, logg *logger.Logger) (*ProfileService, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user repository is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &ProfileService{repo: repo, logg: logg}, nil
}

func (s *ProfileService) Profile(ctx context.Context, userID uuid.UUID) (*UserDTO, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, mapLookupError(err, "load profile")
	}
	return FromModel(user), nil
}

// UpdateProfile applies the non-empty fields of in and returns the stored
// profile.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uuid.UUID, in ProfileUpdate) (*UserDTO, error) {
	fields := map[string]any{}
	if in.Name != nil {
		if name := strings.TrimSpace(*in.Name); name != "" {
			fields["name"] = name
		}
	}
	if in.Phone != nil && strings.TrimSpace(*in.Phone) != "" {
		cleaned, ok := NormalizePhone(*in.Phone)
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Nomor telepon tidak valid").
				WithDetails(map[string]any{"field": "phone"})
		}
		fields["phone"] = cleaned
	}
	if in.Address != nil {
		if address := strings.TrimSpace(*in.Address); address != "" {
			fields["address"] = address
		}
	}

	if len(fields) > 0 {
		if err := s.repo.UpdateProfile(ctx, userID, fields); err != nil {
			return nil, mapLookupError(err, "update profile")
		}
		s.logg.Info(s.logg.WithUserID(ctx, userID.String()), "users.profile_updated")
	}
	return s.Profile(ctx, userID)
}

func mapLookupError(err error, op string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, msgUserNotFound)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, op)
}
