// Package settings stores the single storefront contact record edited from the
// admin dashboard.
package settings

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/hijabina/hijabina-backend/pkg/db/models"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
	"github.com/hijabina/hijabina-backend/pkg/logger"
)

// Settings is the payload of the store settings endpoints.
type Settings struct {
	StoreName string    `json:"store_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Patch carries the fields to merge into the stored settings. Nil fields are kept.
type Patch struct {
	StoreName *string `json:"store_name"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	Address   *string `json:"address"`
}

// Repository reads and writes the settings row.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Find returns the settings row or gorm.ErrRecordNotFound.
func (r *Repository) Find(ctx context.Context) (*models.StoreSetting, error) {
	var row models.StoreSetting
	if err := r.db.WithContext(ctx).Where("id = ?", models.StoreSettingsID).First(&row).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// Upsert writes the full row, inserting it on first save.
func (r *Repository) Upsert(ctx context.Context, row *models.StoreSetting) error {
	row.ID = models.StoreSettingsID
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"store_name", "email", "phone", "address", "updated_at"}),
	}).Create(row).Error
}

// Service exposes the settings read and merge.
type Service struct {
	repo     *Repository
	logg     *logger.Logger
	validate *validator.Validate
	clock    func() time.Time
}

func NewService(repo *Repository, logg *logger.Logger) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "settings repository is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Service{repo: repo, logg: logg, validate: validator.New(), clock: time.Now}, nil
}

// Get returns the stored settings, or empty settings when none were saved yet.
func (s *Service) Get(ctx context.Context) (*Settings, error) {
	row, err := s.repo.Find(ctx)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Settings{}, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store settings")
	}
	return fromModel(row), nil
}

// Save merges patch into the stored settings and returns the result.
func (s *Service) Save(ctx context.Context, patch Patch) (*Settings, error) {
	if patch.Email != nil {
		if email := strings.TrimSpace(*patch.Email); email != "" {
			if err := s.validate.Var(email, "email"); err != nil {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "Email tidak valid").
					WithDetails(map[string]any{"field": "email"})
			}
		}
	}

	row, err := s.repo.Find(ctx)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		row = &models.StoreSetting{}
	case err != nil:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load store settings")
	}

	merge(&row.StoreName, patch.StoreName)
	merge(&row.Email, patch.Email)
	merge(&row.Phone, patch.Phone)
	merge(&row.Address, patch.Address)
	row.UpdatedAt = s.clock().UTC()

	if err := s.repo.Upsert(ctx, row); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save store settings")
	}
	s.logg.Info(ctx, "store settings saved")
	return fromModel(row), nil
}

func merge(dst *string, value *string) {
	if value != nil {
		*dst = strings.TrimSpace(*value)
	}
}

func fromModel(row *models.StoreSetting) *Settings {
	return &Settings{
		StoreName: row.StoreName,
		Email:     row.Email,
		Phone:     row.Phone,
		Address:   row.Address,
		UpdatedAt: row.UpdatedAt,
	}
}
