package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/shop-service/internal/auth"
	"github.com/spec-kit/shop-service/internal/domain"
	"github.com/spec-kit/shop-service/internal/events"
	"github.com/spec-kit/shop-service/internal/repository"
	apperrors "github.com/spec-kit/shop-service/pkg/util/errorutil"
)

type catalogFixture struct {
	svc   *CatalogService
	admin *domain.User
	alice *domain.User
	bob   *domain.User
	rec   *recorder
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	store := repository.NewMemoryStore()
	users := store.Users()
	ctx := context.Background()

	mk := func(email string, admin bool) *domain.User {
		u := &domain.User{Email: email, PasswordHash: "x"}
		require.NoError(t, users.Create(ctx, u))
		if admin {
			u.IsAdmin = true
			require.NoError(t, users.Update(ctx, u))
		}
		return u
	}

	rec := &recorder{}
	dispatcher := events.NewInMemoryDispatcher()
	for _, eventType := range events.AllEventTypes {
		dispatcher.Subscribe(eventType, rec.handle)
	}
	return &catalogFixture{
		svc: NewCatalogService(CatalogDependencies{
			CategoryRepo: store.Categories(),
			ProductRepo:  store.Products(),
			Dispatcher:   dispatcher,
		}),
		admin: mk("admin@x.com", true),
		alice: mk("alice@x.com", false),
		bob:   mk("bob@x.com", false),
		rec:   rec,
	}
}

func ptr[T any](v T) *T { return &v }

func errorCode(err error) string {
	if de := apperrors.ToDomainError(err); de != nil {
		return de.Code
	}
	return ""
}

func TestCategoryAdminOnly(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateCategory(ctx, f.alice, "Books")
	assert.ErrorIs(t, err, auth.ErrAuthorizationDenied)
	_, err = f.svc.CreateCategory(ctx, nil, "Books")
	assert.ErrorIs(t, err, auth.ErrMissingToken)

	category, err := f.svc.CreateCategory(ctx, f.admin, " Books ")
	require.NoError(t, err)
	assert.Equal(t, "Books", category.Name)

	_, err = f.svc.CreateCategory(ctx, f.admin, "books")
	assert.Equal(t, apperrors.CodeConflict, errorCode(err))

	renamed, err := f.svc.RenameCategory(ctx, f.admin, category.ID, "Novels")
	require.NoError(t, err)
	assert.Equal(t, "Novels", renamed.Name)

	_, err = f.svc.RenameCategory(ctx, f.admin, "missing", "X")
	assert.Equal(t, apperrors.CodeNotFound, errorCode(err))

	list, err := f.svc.ListCategories(ctx, 0, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestDeleteCategoryInUse(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	category, err := f.svc.CreateCategory(ctx, f.admin, "Books")
	require.NoError(t, err)
	product, err := f.svc.CreateProduct(ctx, f.alice, ProductInput{
		Name: ptr("Go book"), PriceCents: ptr(int64(2500)), CategoryID: ptr(category.ID),
	})
	require.NoError(t, err)

	err = f.svc.DeleteCategory(ctx, f.admin, category.ID)
	assert.Equal(t, apperrors.CodeConflict, errorCode(err))

	require.NoError(t, f.svc.DeleteProduct(ctx, f.alice, product.ID))
	require.NoError(t, f.svc.DeleteCategory(ctx, f.admin, category.ID))

	_, err = f.svc.GetCategory(ctx, category.ID)
	assert.Equal(t, apperrors.CodeNotFound, errorCode(err))
}

func TestCreateProductValidation(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	category, err := f.svc.CreateCategory(ctx, f.admin, "Books")
	require.NoError(t, err)

	_, err = f.svc.CreateProduct(ctx, f.alice, ProductInput{Name: ptr("x")})
	assert.Equal(t, apperrors.CodeValidationFailed, errorCode(err))

	_, err = f.svc.CreateProduct(ctx, f.alice, ProductInput{
		Name: ptr("x"), PriceCents: ptr(int64(-1)), CategoryID: ptr(category.ID),
	})
	assert.Equal(t, apperrors.CodeValidationFailed, errorCode(err))

	_, err = f.svc.CreateProduct(ctx, f.alice, ProductInput{
		Name: ptr("x"), PriceCents: ptr(int64(1)), CategoryID: ptr("no-such-category"),
	})
	de := apperrors.ToDomainError(err)
	require.NotNil(t, de)
	assert.Equal(t, apperrors.CodeValidationFailed, de.Code)
	assert.Equal(t, "unknown category", de.Details["category_id"])

	product, err := f.svc.CreateProduct(ctx, f.alice, ProductInput{
		Name: ptr("Go book"), PriceCents: ptr(int64(0)), CategoryID: ptr(category.ID),
	})
	require.NoError(t, err)
	assert.True(t, product.InStock)
	assert.Equal(t, "Books", product.CategoryName)
	assert.Equal(t, "alice@x.com", product.OwnerEmail)
}

func TestProductOwnershipRules(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	category, err := f.svc.CreateCategory(ctx, f.admin, "Books")
	require.NoError(t, err)
	product, err := f.svc.CreateProduct(ctx, f.alice, ProductInput{
		Name: ptr("Go book"), PriceCents: ptr(int64(2500)), CategoryID: ptr(category.ID),
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateProduct(ctx, f.bob, product.ID, ProductInput{PriceCents: ptr(int64(1))})
	assert.ErrorIs(t, err, auth.ErrAuthorizationDenied)
	assert.ErrorIs(t, f.svc.DeleteProduct(ctx, f.bob, product.ID), auth.ErrAuthorizationDenied)

	updated, err := f.svc.UpdateProduct(ctx, f.alice, product.ID, ProductInput{InStock: ptr(false)})
	require.NoError(t, err)
	assert.False(t, updated.InStock)
	assert.Equal(t, "Go book", updated.Name)

	updated, err = f.svc.UpdateProduct(ctx, f.admin, product.ID, ProductInput{PriceCents: ptr(int64(1999))})
	require.NoError(t, err)
	assert.Equal(t, int64(1999), updated.PriceCents)

	require.NoError(t, f.svc.DeleteProduct(ctx, f.admin, product.ID))
	_, err = f.svc.GetProduct(ctx, product.ID)
	assert.Equal(t, apperrors.CodeNotFound, errorCode(err))

	assert.Contains(t, f.rec.types(), events.EventProductDeleted)
}

func TestListProductsFilters(t *testing.T) {
	f := newCatalogFixture(t)
	ctx := context.Background()
	books, err := f.svc.CreateCategory(ctx, f.admin, "Books")
	require.NoError(t, err)
	games, err := f.svc.CreateCategory(ctx, f.admin, "Games")
	require.NoError(t, err)

	create := func(actor *domain.User, name, categoryID string) {
		_, err := f.svc.CreateProduct(ctx, actor, ProductInput{
			Name: ptr(name), PriceCents: ptr(int64(100)), CategoryID: ptr(categoryID),
		})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}
	create(f.alice, "Go book", books.ID)
	create(f.bob, "Rust book", books.ID)
	create(f.alice, "Chess", games.ID)

	all, err := f.svc.ListProducts(ctx, ProductListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Chess", all[0].Name)

	byCategory, err := f.svc.ListProducts(ctx, ProductListFilter{CategoryID: ptr(books.ID)})
	require.NoError(t, err)
	assert.Len(t, byCategory, 2)

	byOwner, err := f.svc.ListProducts(ctx, ProductListFilter{OwnerID: ptr(f.alice.ID)})
	require.NoError(t, err)
	assert.Len(t, byOwner, 2)

	search, err := f.svc.ListProducts(ctx, ProductListFilter{SearchTerm: ptr("BOOK")})
	require.NoError(t, err)
	assert.Len(t, search, 2)

	page, err := f.svc.ListProducts(ctx, ProductListFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "Rust book", page[0].Name)
}
