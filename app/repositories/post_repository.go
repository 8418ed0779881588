package repositories

import (
	"context"
	"database/sql"

	"simpleboard/app/models"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// SQLPostRepository implements PostRepository on the board table
type SQLPostRepository struct {
	db         *sqlx.DB
	readOnlyTx bool
}

// NewSQLPostRepository creates a new SQLPostRepository
func NewSQLPostRepository(db *sqlx.DB) *SQLPostRepository {
	return &SQLPostRepository{
		db: db,
		// SQLite has no read-only transaction mode to request.
		readOnlyTx: db.DriverName() == DriverPostgres,
	}
}

// view runs fn inside a read-only transaction.
func (r *SQLPostRepository) view(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: r.readOnlyTx})
	if err != nil {
		return errors.Wrap(err, "failed to begin read transaction")
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Save inserts the post when it has no id and overwrites the stored row otherwise
func (r *SQLPostRepository) Save(ctx context.Context, post *models.Post) error {
	if post.IsNew() {
		return r.insert(ctx, post)
	}
	return r.update(ctx, post)
}

func (r *SQLPostRepository) insert(ctx context.Context, post *models.Post) error {
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(insertPostSQL),
		post.Name, post.Title, post.PasswordHash, post.Content, post.CreatedAt, post.UpdatedAt,
	).Scan(&post.ID)
	if err != nil {
		return errors.Wrap(err, "failed to insert post")
	}
	return nil
}

func (r *SQLPostRepository) update(ctx context.Context, post *models.Post) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(updatePostSQL),
		post.Name, post.Title, post.PasswordHash, post.Content, post.CreatedAt, post.UpdatedAt, post.ID,
	)
	if err != nil {
		return errors.Wrapf(err, "failed to update post %d", post.ID)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to read affected rows")
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// FindByID retrieves a post by ID
func (r *SQLPostRepository) FindByID(ctx context.Context, id int64) (*models.Post, error) {
	var post models.Post
	err := r.view(ctx, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, &post, tx.Rebind(selectPostByIDSQL), id)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return errors.Wrapf(err, "failed to get post %d", id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	normalizeTimes(&post)
	return &post, nil
}

// DeleteByID deletes a post by ID
func (r *SQLPostRepository) DeleteByID(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(deletePostSQL), id); err != nil {
		return errors.Wrapf(err, "failed to delete post %d", id)
	}
	return nil
}

// FindAllPaged retrieves one page of posts and the total row count
func (r *SQLPostRepository) FindAllPaged(ctx context.Context, req models.PageRequest) (models.Page[*models.Post], error) {
	req = req.Normalize()

	var (
		posts []*models.Post
		total int64
	)
	err := r.view(ctx, func(tx *sqlx.Tx) error {
		if err := tx.GetContext(ctx, &total, countPostsSQL); err != nil {
			return errors.Wrap(err, "failed to count posts")
		}
		query := `SELECT ` + postColumns + ` FROM board ORDER BY ` + orderClause(req.Sort) + ` LIMIT ? OFFSET ?`
		if err := tx.SelectContext(ctx, &posts, tx.Rebind(query), req.Size, req.Offset()); err != nil {
			return errors.Wrap(err, "failed to list posts")
		}
		return nil
	})
	if err != nil {
		return models.Page[*models.Post]{}, err
	}

	for _, p := range posts {
		normalizeTimes(p)
	}
	return models.NewPage(posts, req, total), nil
}
