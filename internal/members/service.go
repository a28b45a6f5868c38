// Package members manages the loyalty member list kept by store staff.
package members

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hijabina/hijabina-backend/pkg/db/models"
	"github.com/hijabina/hijabina-backend/pkg/enums"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
	"github.com/hijabina/hijabina-backend/pkg/format"
	"github.com/hijabina/hijabina-backend/pkg/logger"
	"github.com/hijabina/hijabina-backend/pkg/pagination"
)

// MemberDTO is the member payload.
type MemberDTO struct {
	ID        uuid.UUID        `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Tier      enums.MemberTier `json:"tier"`
	Points    int              `json:"points"`
	JoinedAt  time.Time        `json:"joined_at"`
	JoinedOn  string           `json:"joined_on"`
	CreatedAt time.Time        `json:"created_at"`
}

// MemberPage is one cursor page of members.
type MemberPage struct {
	Members    []MemberDTO `json:"members"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// AddInput holds a new member. An empty tier means Bronze.
type AddInput struct {
	Name  string
	Email string
	Tier  string
}

// Service exposes member list management.
type Service struct {
	repo     *Repository
	logg     *logger.Logger
	validate *validator.Validate
	clock    func() time.Time
}

func NewService(repo *Repository, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "member repository is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{repo: repo, logg: logg, validate: validator.New(), clock: time.Now}, nil
}

func (s *Service) List(ctx context.Context, params pagination.Params) (*MemberPage, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Cursor tidak valid")
	}
	rows, next, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	page := &MemberPage{Members: make([]MemberDTO, 0, len(rows)), NextCursor: next}
	for _, row := range rows {
		page.Members = append(page.Members, toDTO(row))
	}
	return page, nil
}

// Add stores a new member with zero points, joined now.
func (s *Service) Add(ctx context.Context, input AddInput) (*MemberDTO, error) {
	name := strings.TrimSpace(input.Name)
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if name == "" || email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Nama dan email wajib diisi")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Email tidak valid").
			WithDetails(map[string]any{"field": "email"})
	}
	tier, err := enums.ParseMemberTier(strings.TrimSpace(input.Tier))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Tier member tidak valid")
	}

	now := s.clock().UTC()
	row := models.Member{
		Name:      name,
		Email:     email,
		Tier:      tier,
		JoinedAt:  now,
		CreatedAt: now,
	}
	if err := s.repo.Create(ctx, &row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert member")
	}
	s.logg.Info(s.logg.WithField(ctx, "member_id", row.ID.String()), "member added")
	dto := toDTO(row)
	return &dto, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete member")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Member tidak ditemukan")
	}
	return nil
}

func toDTO(row models.Member) MemberDTO {
	return MemberDTO{
		ID:        row.ID,
		Name:      row.Name,
		Email:     row.Email,
		Tier:      row.Tier,
		Points:    row.Points,
		JoinedAt:  row.JoinedAt,
		JoinedOn:  format.Date(row.JoinedAt),
		CreatedAt: row.CreatedAt,
	}
}
