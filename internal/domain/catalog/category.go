package catalog

import "context"

// Category groups products for browsing.
type Category struct {
	ID          string
	Name        string
	Description string
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	List(ctx context.Context) ([]Category, error)
	GetByID(ctx context.Context, id string) (*Category, error)
}
