package mock

import (
	"context"
	"sort"
	"strings"
	"sync"

	"simpleboard/app/models"
	"simpleboard/app/repositories"
)

type PostRepository struct {
	posts  map[int64]models.Post
	nextID int64
	mutex  sync.RWMutex

	// Err, when set, is returned by every call.
	Err error
	// LastPageRequest is the request FindAllPaged last received.
	LastPageRequest models.PageRequest
}

func NewPostRepository() *PostRepository {
	return &PostRepository{
		posts:  make(map[int64]models.Post),
		nextID: 1,
	}
}

func (m *PostRepository) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.posts = make(map[int64]models.Post)
	m.nextID = 1
}

// Len returns the number of stored posts.
func (m *PostRepository) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.posts)
}

func (m *PostRepository) Save(ctx context.Context, post *models.Post) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	if post.IsNew() {
		post.ID = m.nextID
		m.nextID++
	} else if _, exists := m.posts[post.ID]; !exists {
		return repositories.ErrNotFound
	}
	m.posts[post.ID] = *post
	return nil
}

func (m *PostRepository) FindByID(ctx context.Context, id int64) (*models.Post, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	post, exists := m.posts[id]
	if !exists {
		return nil, repositories.ErrNotFound
	}
	return &post, nil
}

func (m *PostRepository) DeleteByID(ctx context.Context, id int64) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if m.Err != nil {
		return m.Err
	}

	delete(m.posts, id)
	return nil
}

func (m *PostRepository) FindAllPaged(ctx context.Context, req models.PageRequest) (models.Page[*models.Post], error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.LastPageRequest = req
	if m.Err != nil {
		return models.Page[*models.Post]{}, m.Err
	}

	req = req.Normalize()
	posts := make([]*models.Post, 0, len(m.posts))
	for _, p := range m.posts {
		p := p
		posts = append(posts, &p)
	}
	sort.Slice(posts, func(i, j int) bool {
		if req.Sort.Desc {
			return lessBy(req.Sort.Field, posts[j], posts[i])
		}
		return lessBy(req.Sort.Field, posts[i], posts[j])
	})

	start := req.Offset()
	if start > len(posts) {
		start = len(posts)
	}
	end := start + req.Size
	if end > len(posts) {
		end = len(posts)
	}
	return models.NewPage(posts[start:end], req, int64(len(posts))), nil
}

func lessBy(field string, a, b *models.Post) bool {
	switch field {
	case "created_at":
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
	case "updated_at":
		if !a.UpdatedAt.Equal(b.UpdatedAt) {
			return a.UpdatedAt.Before(b.UpdatedAt)
		}
	case "title":
		if c := strings.Compare(a.Title, b.Title); c != 0 {
			return c < 0
		}
	}
	return a.ID < b.ID
}
