package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/shop-service/internal/auth"
	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

// CatalogService coordinates category and product workflows.
type CatalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// CatalogDependencies bundles repositories for the catalog service.
type CatalogDependencies struct {
	CategoryRepo repository.CategoryRepository
	ProductRepo  repository.ProductRepository
	Dispatcher   events.Dispatcher
	Logger       *zap.Logger
}

// ProductInput describes a product write. On update, nil fields are left unchanged.
type ProductInput struct {
	Name        *string
	Description *string
	PriceCents  *int64
	InStock     *bool
	CategoryID  *string
}

// ProductListFilter describes public listing filters.
type ProductListFilter struct {
	CategoryID *string
	OwnerID    *string
	SearchTerm *string
	Limit      int
	Offset     int
}

// NewCatalogService constructs the service.
func NewCatalogService(deps CatalogDependencies) *CatalogService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogService{
		categories: deps.CategoryRepo,
		products:   deps.ProductRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// ListCategories returns one page of categories ordered by name.
func (s *CatalogService) ListCategories(ctx context.Context, limit, offset int) ([]domain.Category, error) {
	return s.categories.List(ctx, limit, offset)
}

// GetCategory loads a category.
func (s *CatalogService) GetCategory(ctx context.Context, id string) (*domain.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, categoryError(err, id)
	}
	return category, nil
}

// CreateCategory adds a category. Only administrators may call it.
func (s *CatalogService) CreateCategory(ctx context.Context, actor *domain.User, name string) (*domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	category := &domain.Category{Name: strings.TrimSpace(name)}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, categoryError(err, "")
	}
	s.publish(ctx, actor, events.EventCategoryChanged, events.ResourcePayload{ResourceID: category.ID, Name: category.Name, Action: "created"})
	return category, nil
}

// RenameCategory changes a category name. Only administrators may call it.
func (s *CatalogService) RenameCategory(ctx context.Context, actor *domain.User, id, name string) (*domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	category := &domain.Category{ID: id, Name: strings.TrimSpace(name)}
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, categoryError(err, id)
	}
	s.publish(ctx, actor, events.EventCategoryChanged, events.ResourcePayload{ResourceID: id, Name: category.Name, Action: "renamed"})
	return category, nil
}

// DeleteCategory removes a category that no product references.
func (s *CatalogService) DeleteCategory(ctx context.Context, actor *domain.User, id string) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return categoryError(err, id)
	}
	s.publish(ctx, actor, events.EventCategoryChanged, events.ResourcePayload{ResourceID: id, Action: "deleted"})
	return nil
}

// ListProducts returns products newest first.
func (s *CatalogService) ListProducts(ctx context.Context, filter ProductListFilter) ([]domain.Product, error) {
	products, err := s.products.List(ctx, repository.ProductFilter{
		CategoryID: filter.CategoryID,
		OwnerID:    filter.OwnerID,
		SearchTerm: filter.SearchTerm,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
	if errors.Is(err, repository.ErrNotFound) {
		// a filter id that is not a uuid matches nothing
		return []domain.Product{}, nil
	}
	return products, err
}

// GetProduct loads a product.
func (s *CatalogService) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	product, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, productError(err, id)
	}
	return product, nil
}

// CreateProduct adds a product owned by the actor.
func (s *CatalogService) CreateProduct(ctx context.Context, actor *domain.User, input ProductInput) (*domain.Product, error) {
	if actor == nil {
		return nil, auth.ErrMissingToken
	}
	if input.Name == nil || input.PriceCents == nil || input.CategoryID == nil {
		return nil, apperrors.NewValidationError("name, price_cents and category_id are required", nil)
	}
	product := &domain.Product{OwnerID: actor.ID, InStock: true}
	applyProductInput(product, input)
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.products.Create(ctx, product); err != nil {
		return nil, productError(err, "")
	}
	s.publish(ctx, actor, events.EventProductCreated, events.ResourcePayload{ResourceID: product.ID, Name: product.Name, Action: "created"})
	return s.reload(ctx, product)
}

// UpdateProduct applies a partial update. Only the owner or an administrator may call it.
func (s *CatalogService) UpdateProduct(ctx context.Context, actor *domain.User, id string, input ProductInput) (*domain.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.CanBeModifiedBy(actor) {
		return nil, auth.ErrAuthorizationDenied
	}
	applyProductInput(product, input)
	if err := validateProduct(product); err != nil {
		return nil, err
	}
	if err := s.products.Update(ctx, product); err != nil {
		return nil, productError(err, id)
	}
	s.publish(ctx, actor, events.EventProductUpdated, events.ResourcePayload{ResourceID: product.ID, Name: product.Name, Action: "updated"})
	return s.reload(ctx, product)
}

// DeleteProduct removes a product. Only the owner or an administrator may call it.
func (s *CatalogService) DeleteProduct(ctx context.Context, actor *domain.User, id string) error {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	if !product.CanBeModifiedBy(actor) {
		return auth.ErrAuthorizationDenied
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return productError(err, id)
	}
	s.publish(ctx, actor, events.EventProductDeleted, events.ResourcePayload{ResourceID: id, Name: product.Name, Action: "deleted"})
	return nil
}

// reload fetches the joined view (category name, owner email) after a write.
func (s *CatalogService) reload(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	fresh, err := s.products.GetByID(ctx, product.ID)
	if err != nil {
		return nil, productError(err, product.ID)
	}
	return fresh, nil
}

func (s *CatalogService) publish(ctx context.Context, actor *domain.User, eventType events.EventType, payload events.ResourcePayload) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{Type: eventType, Payload: payload}
	if actor != nil {
		event.SubjectID = actor.ID
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event handler failed", zap.String("event_type", string(eventType)), zap.Error(err))
	}
}

func applyProductInput(product *domain.Product, input ProductInput) {
	if input.Name != nil {
		product.Name = strings.TrimSpace(*input.Name)
	}
	if input.Description != nil {
		product.Description = strings.TrimSpace(*input.Description)
	}
	if input.PriceCents != nil {
		product.PriceCents = *input.PriceCents
	}
	if input.InStock != nil {
		product.InStock = *input.InStock
	}
	if input.CategoryID != nil {
		product.CategoryID = strings.TrimSpace(*input.CategoryID)
	}
}

func validateProduct(product *domain.Product) error {
	details := map[string]any{}
	if product.Name == "" {
		details["name"] = "required"
	}
	if product.PriceCents < 0 {
		details["price_cents"] = "must not be negative"
	}
	if product.CategoryID == "" {
		details["category_id"] = "required"
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid product", details)
	}
	return nil
}

func requireAdmin(actor *domain.User) error {
	if actor == nil {
		return auth.ErrMissingToken
	}
	if !actor.IsAdmin {
		return auth.ErrAuthorizationDenied
	}
	return nil
}

func categoryError(err error, id string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("category", map[string]any{"id": id})
	case errors.Is(err, repository.ErrDuplicate):
		return apperrors.NewConflict("category name already exists", nil)
	case errors.Is(err, repository.ErrInUse):
		return apperrors.NewConflict("category still has products", map[string]any{"id": id})
	default:
		return err
	}
}

func productError(err error, id string) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperrors.NewNotFound("product", map[string]any{"id": id})
	case errors.Is(err, repository.ErrReferenceMissing):
		return apperrors.NewValidationError("invalid product", map[string]any{"category_id": "unknown category"})
	default:
		return err
	}
}
