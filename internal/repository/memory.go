package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/shop-service/internal/domain"
)

// MemoryStore keeps users, categories and products in process memory. It backs the service
// when no Postgres DSN is configured and in tests. All writes happen under one lock, so
// email and category-name uniqueness hold under concurrent requests.
type MemoryStore struct {
	mu         sync.RWMutex
	now        func() time.Time
	users      map[string]domain.User
	emails     map[string]string
	categories map[string]domain.Category
	catNames   map[string]string
	products   map[string]domain.Product
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:        time.Now,
		users:      make(map[string]domain.User),
		emails:     make(map[string]string),
		categories: make(map[string]domain.Category),
		catNames:   make(map[string]string),
		products:   make(map[string]domain.Product),
	}
}

// Users returns a UserRepository view of the store.
func (s *MemoryStore) Users() UserRepository { return memoryUsers{s} }

// Categories returns a CategoryRepository view of the store.
func (s *MemoryStore) Categories() CategoryRepository { return memoryCategories{s} }

// Products returns a ProductRepository view of the store.
func (s *MemoryStore) Products() ProductRepository { return memoryProducts{s} }

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	email := domain.NormalizeEmail(user.Email)
	if _, taken := r.s.emails[email]; taken {
		return ErrDuplicate
	}
	now := r.s.now()
	user.ID = uuid.NewString()
	user.Email = email
	user.CreatedAt = now
	user.UpdatedAt = now
	r.s.users[user.ID] = *user
	r.s.emails[email] = user.ID
	return nil
}

func (r memoryUsers) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.users[user.ID]
	if !ok {
		return ErrNotFound
	}
	current.Name = user.Name
	current.PasswordHash = user.PasswordHash
	current.IsAdmin = user.IsAdmin
	current.UpdatedAt = r.s.now()
	r.s.users[user.ID] = current
	user.UpdatedAt = current.UpdatedAt
	return nil
}

func (r memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	user, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r memoryUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	id, ok := r.s.emails[domain.NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	user := r.s.users[id]
	return &user, nil
}

type memoryCategories struct{ s *MemoryStore }

func (r memoryCategories) Create(_ context.Context, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := strings.ToLower(category.Name)
	if _, taken := r.s.catNames[key]; taken {
		return ErrDuplicate
	}
	now := r.s.now()
	category.ID = uuid.NewString()
	category.CreatedAt = now
	category.UpdatedAt = now
	r.s.categories[category.ID] = *category
	r.s.catNames[key] = category.ID
	return nil
}

func (r memoryCategories) Update(_ context.Context, category *domain.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.categories[category.ID]
	if !ok {
		return ErrNotFound
	}
	key := strings.ToLower(category.Name)
	if owner, taken := r.s.catNames[key]; taken && owner != category.ID {
		return ErrDuplicate
	}
	delete(r.s.catNames, strings.ToLower(current.Name))
	current.Name = category.Name
	current.UpdatedAt = r.s.now()
	r.s.categories[category.ID] = current
	r.s.catNames[key] = category.ID
	*category = current
	return nil
}

func (r memoryCategories) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.categories[id]
	if !ok {
		return ErrNotFound
	}
	for _, product := range r.s.products {
		if product.CategoryID == id {
			return ErrInUse
		}
	}
	delete(r.s.categories, id)
	delete(r.s.catNames, strings.ToLower(current.Name))
	return nil
}

func (r memoryCategories) GetByID(_ context.Context, id string) (*domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	category, ok := r.s.categories[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &category, nil
}

func (r memoryCategories) List(_ context.Context, limit, offset int) ([]domain.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	result := make([]domain.Category, 0, len(r.s.categories))
	for _, category := range r.s.categories {
		result = append(result, category)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return paginate(result, limit, offset), nil
}

type memoryProducts struct{ s *MemoryStore }

func (r memoryProducts) Create(_ context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if err := r.checkRefs(product); err != nil {
		return err
	}
	now := r.s.now()
	product.ID = uuid.NewString()
	product.CreatedAt = now
	product.UpdatedAt = now
	r.s.products[product.ID] = *product
	return nil
}

func (r memoryProducts) Update(_ context.Context, product *domain.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	current, ok := r.s.products[product.ID]
	if !ok {
		return ErrNotFound
	}
	if err := r.checkRefs(product); err != nil {
		return err
	}
	current.Name = product.Name
	current.Description = product.Description
	current.PriceCents = product.PriceCents
	current.InStock = product.InStock
	current.CategoryID = product.CategoryID
	current.UpdatedAt = r.s.now()
	r.s.products[product.ID] = current
	product.UpdatedAt = current.UpdatedAt
	return nil
}

func (r memoryProducts) checkRefs(product *domain.Product) error {
	if _, ok := r.s.categories[product.CategoryID]; !ok {
		return ErrReferenceMissing
	}
	if _, ok := r.s.users[product.OwnerID]; !ok {
		return ErrReferenceMissing
	}
	return nil
}

func (r memoryProducts) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r memoryProducts) GetByID(_ context.Context, id string) (*domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	product, ok := r.s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	r.join(&product)
	return &product, nil
}

func (r memoryProducts) List(_ context.Context, filter ProductFilter) ([]domain.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	search := ""
	if filter.SearchTerm != nil {
		search = strings.ToLower(strings.TrimSpace(*filter.SearchTerm))
	}

	result := make([]domain.Product, 0)
	for _, product := range r.s.products {
		if filter.CategoryID != nil && product.CategoryID != *filter.CategoryID {
			continue
		}
		if filter.OwnerID != nil && product.OwnerID != *filter.OwnerID {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(product.Name), search) &&
			!strings.Contains(strings.ToLower(product.Description), search) {
			continue
		}
		r.join(&product)
		result = append(result, product)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return paginate(result, filter.Limit, filter.Offset), nil
}

func (r memoryProducts) join(product *domain.Product) {
	product.CategoryName = r.s.categories[product.CategoryID].Name
	product.OwnerEmail = r.s.users[product.OwnerID].Email
}

func paginate[T any](items []T, limit, offset int) []T {
	limit, offset = normalizePage(limit, offset)
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
