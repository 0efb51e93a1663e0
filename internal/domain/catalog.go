package domain

import "time"

// Category groups products.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Product is a catalog item owned by the user who created it.
type Product struct {
	ID           string
	Name         string
	Description  string
	PriceCents   int64
	InStock      bool
	CategoryID   string
	CategoryName string
	OwnerID      string
	OwnerEmail   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanBeModifiedBy reports whether the user may update or delete the product.
func (p *Product) CanBeModifiedBy(user *User) bool {
	if user == nil {
		return false
	}
	return user.IsAdmin || p.OwnerID == user.ID
}
