package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/hijabina/hijabina-backend/pkg/db"
	"github.com/hijabina/hijabina-backend/pkg/db/dbtest"
	"github.com/hijabina/hijabina-backend/pkg/enums"
)

func TestCreateNormalizesAndDefaults(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))

	user, err := repo.Create(ctx, CreateUserDTO{Name: " Aisyah ", Email: " Aisyah@Mail.COM ", PasswordHash: "h"})
	require.NoError(t, err)
	assert.Equal(t, "aisyah@mail.com", user.Email)
	assert.Equal(t, "Aisyah", user.Name)
	assert.Equal(t, enums.UserRoleCustomer, user.Role)

	found, err := repo.FindByEmail(ctx, "aisyah@mail.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.True(t, found.IsActive)

	now := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.UpdateLastLogin(ctx, user.ID, now))
	require.NoError(t, repo.UpdatePasswordHash(ctx, user.ID, "h2"))
	found, err = repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, found.LastLoginAt)
	assert.True(t, found.LastLoginAt.Equal(now))
	assert.Equal(t, "h2", found.PasswordHash)

	dto := FromModel(found)
	assert.Equal(t, user.ID, dto.ID)
	assert.Nil(t, FromModel(nil))
}

func TestDuplicateEmailIsUniqueViolation(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))
	_, err := repo.Create(ctx, CreateUserDTO{Name: "A", Email: "a@mail.com", PasswordHash: "h"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, CreateUserDTO{Name: "B", Email: "A@mail.com", PasswordHash: "h"})
	require.Error(t, err)
	assert.True(t, db.IsUniqueViolation(err, ""))

	_, err = repo.FindByEmail(ctx, "missing@mail.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUpdatesOnMissingUserReportNotFound(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))

	err := repo.UpdateLastLogin(ctx, uuid.New(), time.Now())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
