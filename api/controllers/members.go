package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/hijabina/hijabina-backend/api/responses"
	"github.com/hijabina/hijabina-backend/api/validators"
	"github.com/hijabina/hijabina-backend/internal/members"
	"github.com/hijabina/hijabina-backend/pkg/logger"
	"github.com/hijabina/hijabina-backend/pkg/pagination"
)

type Members interface {
	List(ctx context.Context, params pagination.Params) (*members.MemberPage, error)
	Add(ctx context.Context, input members.AddInput) (*members.MemberDTO, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type addMemberRequest struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"required"`
	Tier  string `json:"tier,omitempty"`
}

func AdminMemberList(svc Members, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		page, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func AdminMemberAdd(svc Members, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body addMemberRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		member, err := svc.Add(r.Context(), members.AddInput{Name: body.Name, Email: body.Email, Tier: body.Tier})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, member)
	}
}

func AdminMemberDelete(svc Members, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "memberId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
