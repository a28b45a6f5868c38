package products

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/hijabina/hijabina-backend/pkg/db/models"
	pkgerrors "github.com/hijabina/hijabina-backend/pkg/errors"
	"github.com/hijabina/hijabina-backend/pkg/logger"
	"github.com/hijabina/hijabina-backend/pkg/pagination"
)

// Service exposes catalog reads for shoppers and product management for staff.
type Service interface {
	CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error)
	GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error)
	ListProducts(ctx context.Context, params pagination.Params, filters ListFilters) (*ProductPage, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

// CreateProductInput holds the payload to create a product. Price and Stock
// are pointers so a missing value can be told apart from zero.
type CreateProductInput struct {
	Name        string
	Category    string
	Price       *int64
	Stock       *int
	Description *string
	ImageURL    *string
}

// UpdateProductInput holds optional mutation values for a product.
type UpdateProductInput struct {
	Name        *string
	Category    *string
	Price       *int64
	Stock       *int
	Description *string
	ImageURL    *string
}

type service struct {
	repo  *Repository
	logg  *logger.Logger
	clock func() time.Time
}

// NewService builds the product service.
func NewService(repo *Repository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product repository is required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{repo: repo, logg: logg, clock: time.Now}, nil
}

func (s *service) CreateProduct(ctx context.Context, input CreateProductInput) (*ProductDTO, error) {
	name := strings.TrimSpace(input.Name)
	category := strings.TrimSpace(input.Category)
	if name == "" || category == "" || input.Price == nil || input.Stock == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Nama, kategori, harga dan stok wajib diisi")
	}
	if err := validateAmounts(input.Price, input.Stock); err != nil {
		return nil, err
	}

	now := s.clock().UTC()
	product := &models.Product{
		Name:        name,
		Category:    category,
		Price:       *input.Price,
		Stock:       *input.Stock,
		Description: trimOptional(input.Description),
		ImageURL:    trimOptional(input.ImageURL),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert product")
	}
	s.logg.Info(s.logg.WithField(ctx, "product_id", product.ID.String()), "product created")
	return NewProductDTO(product), nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID) (*ProductDTO, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}
	return NewProductDTO(product), nil
}

func (s *service) ListProducts(ctx context.Context, params pagination.Params, filters ListFilters) (*ProductPage, error) {
	if _, err := pagination.ParseCursor(params.Cursor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "Cursor tidak valid")
	}
	res, err := s.repo.List(ctx, params, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	page := &ProductPage{Products: make([]ProductDTO, 0, len(res.Products)), NextCursor: res.NextCursor}
	for i := range res.Products {
		page.Products = append(page.Products, *NewProductDTO(&res.Products[i]))
	}
	return page, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input UpdateProductInput) (*ProductDTO, error) {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Nama produk wajib diisi")
	}
	if input.Category != nil && strings.TrimSpace(*input.Category) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "Kategori wajib diisi")
	}
	if err := validateAmounts(input.Price, input.Stock); err != nil {
		return nil, err
	}

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err)
	}
	applyUpdate(product, input)
	product.UpdatedAt = s.clock().UTC()
	if err := s.repo.Save(ctx, product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update product")
	}
	return NewProductDTO(product), nil
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, "Produk tidak ditemukan")
	}
	return nil
}

func validateAmounts(price *int64, stock *int) error {
	if price != nil && *price < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Harga tidak boleh negatif").
			WithDetails(map[string]any{"field": "price"})
	}
	if stock != nil && *stock < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "Stok tidak boleh negatif").
			WithDetails(map[string]any{"field": "stock"})
	}
	return nil
}

func applyUpdate(product *models.Product, input UpdateProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Category != nil {
		product.Category = strings.TrimSpace(*input.Category)
	}
	if input.Price != nil {
		product.Price = *input.Price
	}
	if input.Stock != nil {
		product.Stock = *input.Stock
	}
	if input.Description != nil {
		product.Description = trimOptional(input.Description)
	}
	if input.ImageURL != nil {
		product.ImageURL = trimOptional(input.ImageURL)
	}
}

// trimOptional maps blank strings to NULL.
func trimOptional(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func mapLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "Produk tidak ditemukan")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
}
