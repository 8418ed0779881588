package services

import (
	"context"
	"time"

	"simpleboard/app/models"
	"simpleboard/app/repositories"

	"github.com/pkg/errors"
)

var (
	// ErrPasswordMismatch means the supplied password does not match the post's.
	ErrPasswordMismatch = errors.New("password does not match")
	// ErrPostHasID means a create was attempted with an already assigned id.
	ErrPostHasID = errors.New("new post must not carry an id")
)

// PostService handles business logic for board posts
type PostService struct {
	postRepo repositories.PostRepository
	now      func() time.Time
}

// NewPostService creates a new PostService
func NewPostService(postRepo repositories.PostRepository) *PostService {
	return &PostService{
		postRepo: postRepo,
		now:      defaultNow,
	}
}

// defaultNow is UTC with microsecond precision, the finest every backend stores.
func defaultNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// SetClock replaces the time source used for timestamps.
func (s *PostService) SetClock(now func() time.Time) {
	s.now = now
}

// ListPosts retrieves one page of posts, newest first
func (s *PostService) ListPosts(ctx context.Context, page, size int) (models.Page[*models.Post], error) {
	return s.ListPostsRequest(ctx, models.PageRequest{Number: page, Size: size})
}

// ListPostsRequest retrieves the requested page. The board always lists newest
// first, so any sort carried by req is replaced with id descending. Paging
// bounds are left to the repository.
func (s *PostService) ListPostsRequest(ctx context.Context, req models.PageRequest) (models.Page[*models.Post], error) {
	req.Sort = models.SortByIDDesc
	return s.postRepo.FindAllPaged(ctx, req)
}

// CreatePost validates a new post, hashes its password and stamps both timestamps
func (s *PostService) CreatePost(ctx context.Context, post *models.Post) error {
	if !post.IsNew() {
		return ErrPostHasID
	}
	if err := post.ValidateForCreate(); err != nil {
		return err
	}
	if err := post.SetPassword(post.Password); err != nil {
		return errors.Wrap(err, "failed to hash password")
	}

	post.BeforeCreate(s.now())
	return s.postRepo.Save(ctx, post)
}

// UpdatePost applies the editable fields of post to the stored row. The
// creation time and password hash are kept; UpdatedAt moves forward.
func (s *PostService) UpdatePost(ctx context.Context, post *models.Post) error {
	if err := post.ValidateForUpdate(); err != nil {
		return err
	}

	existing, err := s.postRepo.FindByID(ctx, post.ID)
	if err != nil {
		return err
	}

	existing.Name = post.Name
	existing.Title = post.Title
	existing.Content = post.Content
	existing.BeforeUpdate(s.now())

	if err := s.postRepo.Save(ctx, existing); err != nil {
		return err
	}
	*post = *existing
	return nil
}

// CreateOrUpdate is the single save entrypoint: posts without an id are
// created, the rest are updated.
func (s *PostService) CreateOrUpdate(ctx context.Context, post *models.Post) error {
	if post.IsNew() {
		return s.CreatePost(ctx, post)
	}
	return s.UpdatePost(ctx, post)
}

// GetPost retrieves a post by ID
func (s *PostService) GetPost(ctx context.Context, id int64) (*models.Post, error) {
	return s.postRepo.FindByID(ctx, id)
}

// DeletePost deletes a post without any password check
func (s *PostService) DeletePost(ctx context.Context, id int64) error {
	return s.postRepo.DeleteByID(ctx, id)
}

// DeletePostWithPassword deletes the post only when password matches. On
// mismatch the post is left untouched and ErrPasswordMismatch is returned.
func (s *PostService) DeletePostWithPassword(ctx context.Context, id int64, password string) error {
	post, err := s.postRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !post.CheckPassword(password) {
		return ErrPasswordMismatch
	}
	return s.postRepo.DeleteByID(ctx, id)
}
