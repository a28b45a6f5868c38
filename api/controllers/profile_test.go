package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/hijabina/hijabina-backend/internal/users"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
)

type stubProfiles struct {
	profile *users.UserDTO
	err     error
	gotUser uuid.UUID
	gotIn   users.ProfileUpdate
}

func (s *stubProfiles) Profile(ctx context.Context, userID uuid.UUID) (*users.UserDTO, error) {
	s.gotUser = userID
	return s.profile, s.err
}

func (s *stubProfiles) UpdateProfile(ctx context.Context, userID uuid.UUID, in users.ProfileUpdate) (*users.UserDTO, error) {
	s.gotUser = userID
	s.gotIn = in
	return s.profile, s.err
}

func TestMeProfileGetRequiresUser(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/me/profile", nil)
	resp := httptest.NewRecorder()
	MeProfileGet(&stubProfiles{}, nil).ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestMeProfileUpdatePassesFields(t *testing.T) {
	userID := uuid.New()
	svc := &stubProfiles{profile: &users.UserDTO{ID: userID, Name: "Aisyah Putri"}}
	resp := httptest.NewRecorder()
	body := `{"name":"Aisyah Putri","phone":"081234567890"}`
	MeProfileUpdate(svc, nil).ServeHTTP(resp, userRequest(http.MethodPatch, "/api/v1/me/profile", body, userID))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if svc.gotUser != userID || svc.gotIn.Name == nil || *svc.gotIn.Name != "Aisyah Putri" || svc.gotIn.Address != nil {
		t.Fatalf("unexpected update %+v for %s", svc.gotIn, svc.gotUser)
	}
	var envelope struct {
		Data profileUpdated `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Message != users.MsgProfileUpdated || envelope.Data.User.ID != userID {
		t.Fatalf("unexpected response %+v", envelope.Data)
	}
}

func TestMeProfileUpdateRejectsUnknownFields(t *testing.T) {
	svc := &stubProfiles{}
	resp := httptest.NewRecorder()
	MeProfileUpdate(svc, nil).ServeHTTP(resp, userRequest(http.MethodPatch, "/api/v1/me/profile", `{"role":"admin"}`, uuid.New()))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if svc.gotUser != uuid.Nil {
		t.Fatal("service must not be called for a rejected body")
	}
}

func TestMeProfileGetMapsNotFound(t *testing.T) {
	svc := &stubProfiles{err: pkgerrors.New(pkgerrors.CodeNotFound, "User tidak ditemukan")}
	resp := httptest.NewRecorder()
	MeProfileGet(svc, nil).ServeHTTP(resp, userRequest(http.MethodGet, "/api/v1/me/profile", "", uuid.New()))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", resp.Code)
	}
}
