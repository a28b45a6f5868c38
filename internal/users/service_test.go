package users

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hijabina/hijabina-backend/pkg/db/dbtest"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
)

func strptr(s string) *string { return &s }

func TestProfileUpdateKeepsEmptyFields(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewProfileService(repo, nil)
	require.NoError(t, err)
	user, err := repo.Create(ctx, CreateUserDTO{Name: "Aisyah", Email: "aisyah@mail.com", PasswordHash: "h", Address: strptr("Jl. Melati 1")})
	require.NoError(t, err)

	got, err := svc.UpdateProfile(ctx, user.ID, ProfileUpdate{Name: strptr(" Aisyah Putri "), Phone: strptr("0812 3456 7890"), Address: strptr("  ")})
	require.NoError(t, err)
	assert.Equal(t, "Aisyah Putri", got.Name)
	require.NotNil(t, got.Phone)
	assert.Equal(t, "081234567890", *got.Phone)
	require.NotNil(t, got.Address)
	assert.Equal(t, "Jl. Melati 1", *got.Address)

	profile, err := svc.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, got, profile)
	assert.Equal(t, "aisyah@mail.com", profile.Email)
}

func TestProfileUpdateRejectsBadPhone(t *testing.T) {
	ctx := context.Background()
	repo := NewRepository(dbtest.Open(t))
	svc, err := NewProfileService(repo, nil)
	require.NoError(t, err)
	user, err := repo.Create(ctx, CreateUserDTO{Name: "Aisyah", Email: "aisyah@mail.com", PasswordHash: "h"})
	require.NoError(t, err)

	_, err = svc.UpdateProfile(ctx, user.ID, ProfileUpdate{Name: strptr("Lain"), Phone: strptr("12345")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	profile, err := svc.Profile(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Aisyah", profile.Name, "a rejected update writes nothing")
}

func TestProfileOfMissingUser(t *testing.T) {
	ctx := context.Background()
	svc, err := NewProfileService(NewRepository(dbtest.Open(t)), nil)
	require.NoError(t, err)

	_, err = svc.Profile(ctx, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	_, err = svc.UpdateProfile(ctx, uuid.New(), ProfileUpdate{Name: strptr("Siapa")})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
