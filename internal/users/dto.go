package users

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hijabina/hijabina-backend/pkg/db/models"
	"github.com/hijabina/hijabina-backend/pkg/enums"
)

// UserDTO is the transport shape that omits credentials.
type UserDTO struct {
	ID          uuid.UUID      `json:"id"`
	Name        string         `json:"name"`
	Email       string         `json:"email"`
	Phone       *string        `json:"phone,omitempty"`
	Address     *string        `json:"address,omitempty"`
	Role        enums.UserRole `json:"role"`
	IsActive    bool           `json:"is_active"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// CreateUserDTO holds what the repo needs to persist a new account.
type CreateUserDTO struct {
	Name         string
	Email        string
	PasswordHash string
	Phone        *string
	Address      *string
	Role         enums.UserRole
}

// ToModel normalizes the email and defaults the role to customer.
func (dto CreateUserDTO) ToModel() *models.User {
	role := dto.Role
	if role == "" {
		role = enums.UserRoleCustomer
	}
	return &models.User{
		Name:         strings.TrimSpace(dto.Name),
		Email:        NormalizeEmail(dto.Email),
		PasswordHash: dto.PasswordHash,
		Phone:        dto.Phone,
		Address:      dto.Address,
		Role:         role,
		IsActive:     true,
	}
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}
	return &UserDTO{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Address:     u.Address,
		Role:        u.Role,
		IsActive:    u.IsActive,
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}

// NormalizeEmail is the canonical form used for storage and lookups.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

var (
	phonePattern = regexp.MustCompile(`^(\+62|62|0)[0-9]{9,12}$`)
	phoneStrip   = strings.NewReplacer("-", "", " ", "")
)

// NormalizePhone strips separators and reports whether the result is an
// Indonesian mobile number.
func NormalizePhone(phone string) (string, bool) {
	cleaned := phoneStrip.Replace(strings.TrimSpace(phone))
	return cleaned, phonePattern.MatchString(cleaned)
}

// ProfileUpdate carries the self-service profile fields. Empty or absent
// fields keep their stored value.
type ProfileUpdate struct {
	Name    *string `json:"name,omitempty" validate:"omitempty,max=120"`
	Phone   *string `json:"phone,omitempty"`
	Address *string `json:"address,omitempty" validate:"omitempty,max=500"`
}
