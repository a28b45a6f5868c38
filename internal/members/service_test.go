package members

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hijabina/hijabina-backend/pkg/db/dbtest"
	"github.com/hijabina/hijabina-backend/pkg/enums"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
	"github.com/hijabina/hijabina-backend/pkg/pagination"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(NewRepository(dbtest.Open(t)), nil)
	require.NoError(t, err)
	base := time.Date(2024, 6, 1, 2, 0, 0, 0, time.UTC)
	calls := 0
	svc.clock = func() time.Time {
		calls++
		return base.Add(time.Duration(calls) * time.Hour)
	}
	return svc
}

func TestAddDefaults(t *testing.T) {
	svc := newTestService(t)

	member, err := svc.Add(context.Background(), AddInput{Name: " Siti ", Email: "Siti@Hijabina.id"})
	require.NoError(t, err)
	assert.Equal(t, "Siti", member.Name)
	assert.Equal(t, "siti@hijabina.id", member.Email)
	assert.Equal(t, enums.MemberTierBronze, member.Tier)
	assert.Zero(t, member.Points)
	assert.Equal(t, "1/6/2024", member.JoinedOn)
	assert.NotEqual(t, uuid.Nil, member.ID)
}

func TestAddValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Add(ctx, AddInput{Email: "a@b.id"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = svc.Add(ctx, AddInput{Name: "Ayu", Email: "bukan-email"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = svc.Add(ctx, AddInput{Name: "Ayu", Email: "ayu@hijabina.id", Tier: "Diamond"})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	gold, err := svc.Add(ctx, AddInput{Name: "Ayu", Email: "ayu@hijabina.id", Tier: "Gold"})
	require.NoError(t, err)
	assert.Equal(t, enums.MemberTierGold, gold.Tier)
}

func TestListNewestFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	for _, name := range []string{"Ayu", "Bunga", "Citra"} {
		_, err := svc.Add(ctx, AddInput{Name: name, Email: name + "@hijabina.id"})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Members, 2)
	assert.Equal(t, "Citra", page.Members[0].Name)
	assert.Equal(t, "Bunga", page.Members[1].Name)

	rest, err := svc.List(ctx, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	require.NoError(t, err)
	require.Len(t, rest.Members, 1)
	assert.Equal(t, "Ayu", rest.Members[0].Name)
	assert.Empty(t, rest.NextCursor)
}

func TestDelete(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	member, err := svc.Add(ctx, AddInput{Name: "Dewi", Email: "dewi@hijabina.id"})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, member.ID))
	assert.True(t, pkgerrors.IsCode(svc.Delete(ctx, member.ID), pkgerrors.CodeNotFound))
}
