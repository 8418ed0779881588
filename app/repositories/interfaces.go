package repositories

import (
	"context"

	"simpleboard/app/models"
)

// PostRepository defines the interface for board post data access
type PostRepository interface {
	// Save inserts a new post or overwrites every column of an existing one.
	Save(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id int64) (*models.Post, error)
	// DeleteByID is a no-op for ids that do not exist.
	DeleteByID(ctx context.Context, id int64) error
	FindAllPaged(ctx context.Context, req models.PageRequest) (models.Page[*models.Post], error)
}
