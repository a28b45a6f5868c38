package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hijabina/hijabina-backend/pkg/enums"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
)

func TestSeedAdminIsOneShot(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	admin, err := SeedAdmin(ctx, f.repo, f.hasher, AdminSeed{Name: "Admin Toko Hijabina", Email: "Admin@TokoHijabina.com", Password: "rahasia", Phone: "0812-3456-7890"})
	require.NoError(t, err)
	assert.Equal(t, enums.UserRoleAdmin, admin.Role)
	assert.Equal(t, "admin@tokohijabina.com", admin.Email)

	resp, err := f.svc.AdminLogin(ctx, LoginRequest{Email: "admin@tokohijabina.com", Password: "rahasia"})
	require.NoError(t, err)
	assert.Equal(t, admin.ID, resp.User.ID)

	_, err = SeedAdmin(ctx, f.repo, f.hasher, AdminSeed{Name: "Admin Kedua", Email: "kedua@tokohijabina.com", Password: "rahasia"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	assert.Equal(t, MsgAdminExists, pkgerrors.As(err).Message())
	n, err := f.repo.CountByRole(ctx, enums.UserRoleAdmin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSeedAdminIgnoresStaffAndCustomers(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	_, err := f.svc.Register(ctx, RegisterRequest{Name: "Aisyah", Email: "aisyah@mail.com", Password: "rahasia"})
	require.NoError(t, err)

	_, err = SeedAdmin(ctx, f.repo, f.hasher, AdminSeed{Name: "Admin", Email: "aisyah@mail.com", Password: "rahasia"})
	assert.Equal(t, ReasonEmailInUse, reasonOf(t, err))

	_, err = SeedAdmin(ctx, f.repo, f.hasher, AdminSeed{Name: "Admin", Email: "admin@mail.com", Password: "12345"})
	assert.Equal(t, ReasonWeakPassword, reasonOf(t, err))

	_, err = SeedAdmin(ctx, f.repo, f.hasher, AdminSeed{Name: "Admin", Email: "admin@mail.com", Password: "rahasia"})
	require.NoError(t, err)
}
